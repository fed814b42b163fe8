package storage

import (
	"github.com/helix-engine/helix/types"
)

// EntityManager issues and recycles entity ids. An index freed by Destroy is
// handed out again by a later NewEntity with a strictly greater generation,
// so two live entities never share an index and stale handles are detectable.
//
// Mutation only happens while structural changes are being applied; concurrent
// liveness reads against a quiescent manager are fine.
type EntityManager struct {
	generations []uint32
	alive       []bool
	free        []uint32
}

// NewEntityManager creates an empty entity manager.
func NewEntityManager() *EntityManager {
	return &EntityManager{
		generations: make([]uint32, 0, 256),
		alive:       make([]bool, 0, 256),
	}
}

// NewEntity allocates a fresh entity id, reusing a freed index if one is
// available.
func (em *EntityManager) NewEntity() types.EntityID {
	if n := len(em.free); n > 0 {
		index := em.free[n-1]
		em.free = em.free[:n-1]
		em.alive[index] = true
		return types.NewEntityID(index, em.generations[index])
	}
	index := uint32(len(em.generations))
	em.generations = append(em.generations, 0)
	em.alive = append(em.alive, true)
	return types.NewEntityID(index, 0)
}

// Destroy frees the entity id. The index becomes available for reuse with a
// bumped generation.
func (em *EntityManager) Destroy(id types.EntityID) error {
	if !em.IsLive(id) {
		return ErrEntityNotFound
	}
	index := id.Index()
	em.alive[index] = false
	em.generations[index]++
	em.free = append(em.free, index)
	return nil
}

// IsLive reports whether the handle still refers to a live entity.
func (em *EntityManager) IsLive(id types.EntityID) bool {
	index := id.Index()
	if index >= uint32(len(em.generations)) {
		return false
	}
	return em.alive[index] && em.generations[index] == id.Generation()
}

// NumLive returns the number of live entities.
func (em *EntityManager) NumLive() int {
	return len(em.generations) - len(em.free)
}

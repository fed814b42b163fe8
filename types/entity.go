package types

import "fmt"

// EntityID is the unique identifier of an entity. The low 32 bits hold the
// storage index and the high 32 bits hold the generation. Indices are recycled
// after a despawn with the generation bumped, so a stale handle never matches
// a live entity.
type EntityID uint64

// NewEntityID packs an index and a generation into a single EntityID.
func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Index returns the storage index portion of the id.
func (id EntityID) Index() uint32 {
	return uint32(id)
}

// Generation returns the generation portion of the id.
func (id EntityID) Generation() uint32 {
	return uint32(id >> 32)
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d", id.Index(), id.Generation())
}

package search

import (
	"github.com/helix-engine/helix/types"
)

// HasEntitiesForArchetype hands out the entity list of an archetype's table.
type HasEntitiesForArchetype interface {
	GetEntitiesForArchID(archID types.ArchetypeID) ([]types.EntityID, error)
}

// EntityIterator walks the entity lists of a fixed set of archetypes.
type EntityIterator struct {
	current      int
	archAccessor HasEntitiesForArchetype
	indices      []types.ArchetypeID
}

// NewEntityIterator returns an iterator over the entities of the given
// archetypes.
func NewEntityIterator(current int, archAccessor HasEntitiesForArchetype, indices []types.ArchetypeID) EntityIterator {
	return EntityIterator{
		current:      current,
		archAccessor: archAccessor,
		indices:      indices,
	}
}

// HasNext returns true if there are more entity lists to iterate over.
func (it *EntityIterator) HasNext() bool {
	return it.current < len(it.indices)
}

// Next returns the next entity list.
func (it *EntityIterator) Next() ([]types.EntityID, error) {
	archetypeID := it.indices[it.current]
	it.current++
	return it.archAccessor.GetEntitiesForArchID(archetypeID)
}

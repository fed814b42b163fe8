package storage

import (
	"github.com/helix-engine/helix/filter"
	"github.com/helix-engine/helix/types"
)

// Index matches archetypes against component filters. Layouts are appended in
// archetype-creation order and never removed, so a search can resume from a
// high-water mark when new archetypes appear.
type Index struct {
	layouts [][]types.Component
}

// NewArchetypeComponentIndex creates a new search index.
func NewArchetypeComponentIndex() *Index {
	return &Index{
		layouts: [][]types.Component{},
	}
}

// Push adds an archetype's component layout to the index.
func (idx *Index) Push(layout []types.Component) {
	idx.layouts = append(idx.layouts, layout)
}

// SearchFrom returns an iterator over the archetypes at or after start whose
// layout matches the filter.
func (idx *Index) SearchFrom(f filter.ComponentFilter, start int) *ArchetypeIterator {
	it := &ArchetypeIterator{}
	for i := start; i < len(idx.layouts); i++ {
		if f.MatchesComponents(idx.layouts[i]) {
			it.values = append(it.values, types.ArchetypeID(i))
		}
	}
	return it
}

// Search returns an iterator over all archetypes matching the filter.
func (idx *Index) Search(f filter.ComponentFilter) *ArchetypeIterator {
	return idx.SearchFrom(f, 0)
}

// ArchetypeIterator walks a fixed list of matched archetype ids.
type ArchetypeIterator struct {
	current int
	values  []types.ArchetypeID
}

// HasNext returns true if there are more archetype ids to iterate over.
func (it *ArchetypeIterator) HasNext() bool {
	return it.current < len(it.values)
}

// Next returns the next archetype id.
func (it *ArchetypeIterator) Next() types.ArchetypeID {
	archID := it.values[it.current]
	it.current++
	return archID
}

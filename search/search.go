// Package search selects the entities a query is interested in. Archetype
// matching is cached and extended incrementally as new archetypes appear;
// per-entity predicates (sparse membership, change filters) run on top of the
// archetype-level match.
package search

import (
	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/filter"
	"github.com/helix-engine/helix/storage"
	"github.com/helix-engine/helix/types"
)

// BadID represents an invalid entity id returned by First when nothing
// matches.
const BadID = types.EntityID(^uint64(0))

// ErrNoMatch is returned by First when no entity matches the search.
var ErrNoMatch = eris.New("no entity matches the search")

// CallbackFn is called once per matching entity. Returning false stops the
// iteration early.
type CallbackFn func(types.EntityID) bool

// EntityPredicate is an optional per-entity check evaluated after archetype
// matching, e.g. sparse-component membership or change-tick filters.
type EntityPredicate func(types.EntityID) (bool, error)

// Reader is the storage surface a search consumes.
type Reader interface {
	HasEntitiesForArchetype
	SearchFrom(f filter.ComponentFilter, start int) *storage.ArchetypeIterator
	ArchetypeCount() int
}

type cache struct {
	archetypes []types.ArchetypeID
	seen       int
}

// Search iterates entities matching a component filter. It caches the set of
// matching archetypes, so reuse a Search instead of recreating it for the
// same filter; archetypes created since the last evaluation are picked up
// automatically because archetypes are never destroyed.
type Search struct {
	archMatches *cache
	filter      filter.ComponentFilter
	reader      Reader
	pred        EntityPredicate
}

// New creates a search over the given reader. The predicate may be nil.
func New(reader Reader, f filter.ComponentFilter, pred EntityPredicate) *Search {
	return &Search{
		archMatches: &cache{},
		filter:      f,
		reader:      reader,
		pred:        pred,
	}
}

// Each calls the callback for every matching entity: matched archetypes in
// creation order, rows within each table in storage order. Every matching
// entity is visited exactly once; no other ordering may be relied on. Return
// false from the callback to stop early. A fresh call restarts from the
// beginning.
func (s *Search) Each(callback CallbackFn) error {
	iter := NewEntityIterator(0, s.reader, s.evaluateSearch())
	for iter.HasNext() {
		entities, err := iter.Next()
		if err != nil {
			return err
		}
		for _, id := range entities {
			ok, err := s.matches(id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if !callback(id) {
				return nil
			}
		}
	}
	return nil
}

// Count returns the number of entities that match the search.
func (s *Search) Count() (int, error) {
	ret := 0
	err := s.Each(func(types.EntityID) bool {
		ret++
		return true
	})
	return ret, err
}

// First returns the first entity that matches the search.
func (s *Search) First() (types.EntityID, error) {
	found := BadID
	err := s.Each(func(id types.EntityID) bool {
		found = id
		return false
	})
	if err != nil {
		return BadID, err
	}
	if found == BadID {
		return BadID, ErrNoMatch
	}
	return found, nil
}

// MustFirst returns the first matching entity and panics when there is none.
func (s *Search) MustFirst() types.EntityID {
	id, err := s.First()
	if err != nil {
		panic("no entity matches the search")
	}
	return id
}

// Collect returns all matching entities.
func (s *Search) Collect() ([]types.EntityID, error) {
	var ids []types.EntityID
	err := s.Each(func(id types.EntityID) bool {
		ids = append(ids, id)
		return true
	})
	return ids, err
}

func (s *Search) matches(id types.EntityID) (bool, error) {
	if s.pred == nil {
		return true, nil
	}
	return s.pred(id)
}

// evaluateSearch extends the archetype cache past its high-water mark and
// returns all matched archetype ids.
func (s *Search) evaluateSearch() []types.ArchetypeID {
	cache := s.archMatches
	for it := s.reader.SearchFrom(s.filter, cache.seen); it.HasNext(); {
		cache.archetypes = append(cache.archetypes, it.Next())
	}
	cache.seen = s.reader.ArchetypeCount()
	return cache.archetypes
}

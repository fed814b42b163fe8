package storage

import (
	"github.com/helix-engine/helix/types"
)

// SparseSet stores one sparse-family component type, keyed by entity index.
// Insert and remove are O(1) and never move the entity between archetypes;
// the cost is that iteration is per-entity membership checks instead of a
// dense column scan.
type SparseSet struct {
	dense  []uint32
	values []any
	ticks  []types.ComponentTicks
	sparse []int
}

// NewSparseSet creates an empty sparse set.
func NewSparseSet() *SparseSet {
	return &SparseSet{}
}

// Len returns the number of stored components.
func (s *SparseSet) Len() int {
	return len(s.dense)
}

// Has reports whether the entity index has a component in this set.
func (s *SparseSet) Has(index uint32) bool {
	if int(index) >= len(s.sparse) {
		return false
	}
	i := s.sparse[index]
	return i >= 0 && i < len(s.dense) && s.dense[i] == index
}

// Get returns the component value for the entity index.
func (s *SparseSet) Get(index uint32) (any, bool) {
	if !s.Has(index) {
		return nil, false
	}
	return s.values[s.sparse[index]], true
}

// GetTicks returns the change-detection stamps for the entity index.
func (s *SparseSet) GetTicks(index uint32) (types.ComponentTicks, bool) {
	if !s.Has(index) {
		return types.ComponentTicks{}, false
	}
	return s.ticks[s.sparse[index]], true
}

// Set inserts or overwrites the component for the entity index. A fresh
// insert stamps both ticks; an overwrite only stamps changed.
func (s *SparseSet) Set(index uint32, value any, tick types.Tick) {
	for int(index) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(index) {
		i := s.sparse[index]
		s.values[i] = value
		s.ticks[i].Changed = tick
		return
	}
	s.dense = append(s.dense, index)
	s.values = append(s.values, value)
	s.ticks = append(s.ticks, types.NewComponentTicks(tick))
	s.sparse[index] = len(s.dense) - 1
}

// Remove deletes the component for the entity index, returning the previous
// value if one was present.
func (s *SparseSet) Remove(index uint32) (any, bool) {
	if !s.Has(index) {
		return nil, false
	}
	i := s.sparse[index]
	last := len(s.dense) - 1
	lastIndex := s.dense[last]
	value := s.values[i]

	s.dense[i] = lastIndex
	s.values[i] = s.values[last]
	s.ticks[i] = s.ticks[last]
	s.sparse[lastIndex] = i

	s.dense = s.dense[:last]
	s.values[last] = nil
	s.values = s.values[:last]
	s.ticks = s.ticks[:last]
	s.sparse[index] = -1
	return value, true
}

// CheckTicks clamps all stored ticks against the current tick.
func (s *SparseSet) CheckTicks(current types.Tick) {
	for i := range s.ticks {
		s.ticks[i].CheckTicks(current)
	}
}

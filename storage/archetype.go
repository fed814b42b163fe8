package storage

import (
	"slices"
	"strconv"
	"strings"

	"github.com/helix-engine/helix/types"
)

// Archetype is the set of table-family components that co-occur on some set
// of entities, plus the table that owns their data. The component set is
// immutable once the archetype exists, and archetypes live for the life of
// the world: entity sets frequently re-enter old layouts.
type Archetype struct {
	id           types.ArchetypeID
	componentIDs []types.ComponentID
	table        *Table
}

func newArchetype(id types.ArchetypeID, componentIDs []types.ComponentID) *Archetype {
	return &Archetype{
		id:           id,
		componentIDs: componentIDs,
		table:        NewTable(componentIDs),
	}
}

// ID returns the archetype id.
func (a *Archetype) ID() types.ArchetypeID {
	return a.id
}

// Components returns the sorted component ids of this archetype. Callers must
// not mutate the returned slice.
func (a *Archetype) Components() []types.ComponentID {
	return a.componentIDs
}

// Table returns the table owning this archetype's component data.
func (a *Archetype) Table() *Table {
	return a.table
}

// Contains reports whether the archetype includes the given component.
func (a *Archetype) Contains(cid types.ComponentID) bool {
	_, found := slices.BinarySearch(a.componentIDs, cid)
	return found
}

// canonicalComponentSet sorts and dedupes component ids so the same set
// produces the same key in any insertion order.
func canonicalComponentSet(componentIDs []types.ComponentID) []types.ComponentID {
	ids := slices.Clone(componentIDs)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// archetypeKey builds the canonical registry key for a sorted component set.
func archetypeKey(sortedIDs []types.ComponentID) string {
	var sb strings.Builder
	for i, id := range sortedIDs {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.Itoa(int(id)))
	}
	return sb.String()
}

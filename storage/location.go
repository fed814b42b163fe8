package storage

import (
	"github.com/helix-engine/helix/types"
)

// Location is the authoritative pointer to where an entity's table row lives.
// It is updated on every structural change.
type Location struct {
	ArchID types.ArchetypeID
	Row    int
	Valid  bool
}

// LocationMap stores entity locations indexed by entity index.
type LocationMap struct {
	locations []Location
	count     int
}

// NewLocationMap creates an empty location map.
func NewLocationMap() *LocationMap {
	return &LocationMap{
		locations: make([]Location, 0, 256),
	}
}

// Len returns the number of valid locations.
func (lm *LocationMap) Len() int {
	return lm.count
}

// Insert sets the location for the given entity index.
func (lm *LocationMap) Insert(index uint32, archID types.ArchetypeID, row int) {
	for int(index) >= len(lm.locations) {
		lm.locations = append(lm.locations, Location{})
	}
	loc := &lm.locations[index]
	if !loc.Valid {
		lm.count++
	}
	loc.ArchID = archID
	loc.Row = row
	loc.Valid = true
}

// SetRow patches the row of an already valid location. Used when a swap
// remove relocates the last row of a table.
func (lm *LocationMap) SetRow(index uint32, row int) {
	lm.locations[index].Row = row
}

// Remove invalidates the location for the given entity index.
func (lm *LocationMap) Remove(index uint32) {
	if int(index) < len(lm.locations) && lm.locations[index].Valid {
		lm.locations[index].Valid = false
		lm.count--
	}
}

// Location returns the location of the given entity index.
func (lm *LocationMap) Location(index uint32) (Location, bool) {
	if int(index) >= len(lm.locations) || !lm.locations[index].Valid {
		return Location{}, false
	}
	return lm.locations[index], true
}

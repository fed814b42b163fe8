package storage

import (
	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/types"
)

// RowValue is a single component value plus its change-detection stamps.
// Archetype moves carry RowValues so an entity's ticks survive relocation.
type RowValue struct {
	Value any
	Ticks types.ComponentTicks
}

// column is the dense storage for one component type within a table. The
// value and tick slices are always the same length as the table itself.
type column struct {
	values []any
	ticks  []types.ComponentTicks
}

// Table stores one archetype's component data in dense, index-aligned
// columns, plus a parallel array of owning entity ids. Row i across all
// columns belongs to entities[i].
type Table struct {
	componentIDs []types.ComponentID
	columns      map[types.ComponentID]*column
	entities     []types.EntityID
}

// NewTable creates an empty table with one column per component id.
func NewTable(componentIDs []types.ComponentID) *Table {
	columns := make(map[types.ComponentID]*column, len(componentIDs))
	for _, id := range componentIDs {
		columns[id] = &column{}
	}
	return &Table{
		componentIDs: componentIDs,
		columns:      columns,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.entities)
}

// Entities returns the owner-entity column. Callers must not mutate it.
func (t *Table) Entities() []types.EntityID {
	return t.entities
}

// Has reports whether the table has a column for the given component.
func (t *Table) Has(cid types.ComponentID) bool {
	_, ok := t.columns[cid]
	return ok
}

// PushRow appends a row owned by the given entity. values must contain an
// entry for every column; all columns stay equal length.
func (t *Table) PushRow(owner types.EntityID, values map[types.ComponentID]RowValue) (int, error) {
	if len(values) != len(t.componentIDs) {
		return 0, eris.Errorf("expected %d component values, got %d", len(t.componentIDs), len(values))
	}
	for _, cid := range t.componentIDs {
		rv, ok := values[cid]
		if !ok {
			return 0, eris.Errorf("missing value for component %d", cid)
		}
		col := t.columns[cid]
		col.values = append(col.values, rv.Value)
		col.ticks = append(col.ticks, rv.Ticks)
	}
	t.entities = append(t.entities, owner)
	return len(t.entities) - 1, nil
}

// TakeRow copies out every component value and its ticks for the given row.
func (t *Table) TakeRow(row int) (map[types.ComponentID]RowValue, error) {
	if row < 0 || row >= len(t.entities) {
		return nil, eris.Errorf("row %d out of range (table has %d rows)", row, len(t.entities))
	}
	values := make(map[types.ComponentID]RowValue, len(t.componentIDs))
	for _, cid := range t.componentIDs {
		col := t.columns[cid]
		values[cid] = RowValue{Value: col.values[row], Ticks: col.ticks[row]}
	}
	return values, nil
}

// SwapRemove removes the row by moving the last row into its place. It
// returns the entity that was relocated so the caller can patch its location.
// hasMoved is false when the removed row was the last one.
func (t *Table) SwapRemove(row int) (moved types.EntityID, hasMoved bool, err error) {
	last := len(t.entities) - 1
	if row < 0 || row > last {
		return 0, false, eris.Errorf("row %d out of range (table has %d rows)", row, last+1)
	}
	for _, cid := range t.componentIDs {
		col := t.columns[cid]
		col.values[row] = col.values[last]
		col.values[last] = nil
		col.values = col.values[:last]
		col.ticks[row] = col.ticks[last]
		col.ticks = col.ticks[:last]
	}
	moved = t.entities[last]
	t.entities[row] = moved
	t.entities = t.entities[:last]
	return moved, row != last, nil
}

// Get returns the component value at the given row.
func (t *Table) Get(row int, cid types.ComponentID) (any, error) {
	col, ok := t.columns[cid]
	if !ok {
		return nil, ErrComponentNotOnEntity
	}
	return col.values[row], nil
}

// GetTicks returns the change-detection stamps at the given row.
func (t *Table) GetTicks(row int, cid types.ComponentID) (types.ComponentTicks, error) {
	col, ok := t.columns[cid]
	if !ok {
		return types.ComponentTicks{}, ErrComponentNotOnEntity
	}
	return col.ticks[row], nil
}

// Set overwrites the component value at the given row and stamps its changed
// tick.
func (t *Table) Set(row int, cid types.ComponentID, value any, tick types.Tick) error {
	col, ok := t.columns[cid]
	if !ok {
		return ErrComponentNotOnEntity
	}
	col.values[row] = value
	col.ticks[row].Changed = tick
	return nil
}

// CheckTicks clamps all stored ticks against the current tick.
func (t *Table) CheckTicks(current types.Tick) {
	for _, col := range t.columns {
		for i := range col.ticks {
			col.ticks[i].CheckTicks(current)
		}
	}
}

// Package storage owns all component data. Entities live in archetype tables
// (dense columns) or sparse sets, addressed through a location map; nothing
// here holds a back-pointer, every relationship is an index.
package storage

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/filter"
	"github.com/helix-engine/helix/types"
)

// Storage is the in-memory store for all entities, components and archetypes
// of a single world. It is not safe for concurrent structural mutation; the
// scheduler guarantees exclusivity when structural changes are applied.
type Storage struct {
	compMetas  []types.ComponentMetadata
	compByName map[string]types.ComponentMetadata

	entities  *EntityManager
	locations *LocationMap

	archetypes []*Archetype
	archByKey  map[string]types.ArchetypeID
	index      *Index

	sparseSets map[types.ComponentID]*SparseSet
}

// NewStorage creates an empty storage. The empty archetype (no table
// components) is created eagerly; entities that only carry sparse components
// live there.
func NewStorage() *Storage {
	s := &Storage{
		compByName: make(map[string]types.ComponentMetadata),
		entities:   NewEntityManager(),
		locations:  NewLocationMap(),
		archByKey:  make(map[string]types.ArchetypeID),
		index:      NewArchetypeComponentIndex(),
		sparseSets: make(map[types.ComponentID]*SparseSet),
	}
	s.getOrCreateArchetype(nil)
	return s
}

// RegisterComponent assigns the next dense component id to the given
// metadata. Component ids are stable for the life of the world.
// Re-registering a name with an identical schema and storage family returns
// the existing id; any divergence fails.
func (s *Storage) RegisterComponent(meta types.ComponentMetadata) (types.ComponentID, error) {
	if existing, ok := s.compByName[meta.Name()]; ok {
		same, err := types.IsSchemaValid(existing.GetSchema(), meta.GetSchema())
		if err != nil {
			return 0, err
		}
		if !same || existing.StorageFamily() != meta.StorageFamily() {
			return 0, eris.Wrap(ErrComponentSchemaMismatch, meta.Name())
		}
		return existing.ID(), nil
	}
	id := types.ComponentID(len(s.compMetas))
	if err := meta.SetID(id); err != nil {
		return 0, err
	}
	s.compMetas = append(s.compMetas, meta)
	s.compByName[meta.Name()] = meta
	if meta.StorageFamily() == types.SparseSetStorage {
		s.sparseSets[id] = NewSparseSet()
	}
	return id, nil
}

// ComponentMetadata returns the metadata for a registered component id.
func (s *Storage) ComponentMetadata(cid types.ComponentID) (types.ComponentMetadata, error) {
	if int(cid) < 0 || int(cid) >= len(s.compMetas) {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "id %d", cid)
	}
	return s.compMetas[cid], nil
}

// ComponentMetadataByName returns the metadata for a registered component
// name.
func (s *Storage) ComponentMetadataByName(name string) (types.ComponentMetadata, error) {
	meta, ok := s.compByName[name]
	if !ok {
		return nil, eris.Wrap(ErrComponentNotRegistered, name)
	}
	return meta, nil
}

// RegisteredComponents returns all registered component metadata in id order.
func (s *Storage) RegisteredComponents() []types.ComponentMetadata {
	return s.compMetas
}

// IsLive reports whether the handle refers to a live entity.
func (s *Storage) IsLive(id types.EntityID) bool {
	return s.entities.IsLive(id)
}

// NumLive returns the number of live entities.
func (s *Storage) NumLive() int {
	return s.entities.NumLive()
}

// Location returns the archetype and table row of a live entity.
func (s *Storage) Location(id types.EntityID) (types.ArchetypeID, int, error) {
	loc, err := s.validate(id)
	if err != nil {
		return 0, 0, err
	}
	return loc.ArchID, loc.Row, nil
}

// validate revalidates the entity generation and returns its location.
func (s *Storage) validate(id types.EntityID) (Location, error) {
	if !s.entities.IsLive(id) {
		return Location{}, eris.Wrap(ErrEntityNotFound, id.String())
	}
	loc, ok := s.locations.Location(id.Index())
	if !ok {
		return Location{}, eris.Wrap(ErrEntityNotFound, id.String())
	}
	return loc, nil
}

// GetOrCreateArchetype returns the archetype id for the given set of
// table-family component ids, creating archetype and table on first use.
// The result is identical for any insertion order of the same set.
func (s *Storage) GetOrCreateArchetype(componentIDs []types.ComponentID) (types.ArchetypeID, error) {
	for _, cid := range componentIDs {
		meta, err := s.ComponentMetadata(cid)
		if err != nil {
			return 0, err
		}
		if meta.StorageFamily() != types.TableStorage {
			return 0, eris.Wrap(ErrNotTableComponent, meta.Name())
		}
	}
	return s.getOrCreateArchetype(componentIDs), nil
}

func (s *Storage) getOrCreateArchetype(componentIDs []types.ComponentID) types.ArchetypeID {
	ids := canonicalComponentSet(componentIDs)
	key := archetypeKey(ids)
	if archID, ok := s.archByKey[key]; ok {
		return archID
	}
	archID := types.ArchetypeID(len(s.archetypes))
	arch := newArchetype(archID, ids)
	s.archetypes = append(s.archetypes, arch)
	s.archByKey[key] = archID

	layout := make([]types.Component, len(ids))
	for i, cid := range ids {
		layout[i] = s.compMetas[cid]
	}
	s.index.Push(layout)
	return archID
}

// Archetype returns the archetype for the given id.
func (s *Storage) Archetype(archID types.ArchetypeID) *Archetype {
	return s.archetypes[archID]
}

// ArchetypeCount returns the number of archetypes created so far.
func (s *Storage) ArchetypeCount() int {
	return len(s.archetypes)
}

// GetEntitiesForArchID returns the owner entities of the archetype's table in
// storage order.
func (s *Storage) GetEntitiesForArchID(archID types.ArchetypeID) ([]types.EntityID, error) {
	if int(archID) < 0 || int(archID) >= len(s.archetypes) {
		return nil, eris.Errorf("archetype %d does not exist", archID)
	}
	return s.archetypes[archID].Table().Entities(), nil
}

// SearchFrom returns an iterator over archetypes at or after start that match
// the filter.
func (s *Storage) SearchFrom(f filter.ComponentFilter, start int) *ArchetypeIterator {
	return s.index.SearchFrom(f, start)
}

// resolve splits component values into table and sparse families, erroring on
// unregistered or duplicated components.
func (s *Storage) resolve(comps []types.Component) (table map[types.ComponentID]any, sparse map[types.ComponentID]any, err error) {
	table = make(map[types.ComponentID]any, len(comps))
	sparse = make(map[types.ComponentID]any)
	for _, comp := range comps {
		meta, err := s.ComponentMetadataByName(comp.Name())
		if err != nil {
			return nil, nil, err
		}
		cid := meta.ID()
		if _, ok := table[cid]; ok {
			return nil, nil, eris.Wrap(ErrComponentAlreadyOnEntity, comp.Name())
		}
		if _, ok := sparse[cid]; ok {
			return nil, nil, eris.Wrap(ErrComponentAlreadyOnEntity, comp.Name())
		}
		if meta.StorageFamily() == types.SparseSetStorage {
			sparse[cid] = comp
		} else {
			table[cid] = comp
		}
	}
	return table, sparse, nil
}

// CreateEntity allocates a new entity carrying the given components and
// places it in the matching archetype.
func (s *Storage) CreateEntity(tick types.Tick, comps ...types.Component) (types.EntityID, error) {
	tableVals, sparseVals, err := s.resolve(comps)
	if err != nil {
		return 0, err
	}

	tableIDs := make([]types.ComponentID, 0, len(tableVals))
	for cid := range tableVals {
		tableIDs = append(tableIDs, cid)
	}
	archID := s.getOrCreateArchetype(tableIDs)
	arch := s.archetypes[archID]

	id := s.entities.NewEntity()
	rowVals := make(map[types.ComponentID]RowValue, len(tableVals))
	for cid, v := range tableVals {
		rowVals[cid] = RowValue{Value: v, Ticks: types.NewComponentTicks(tick)}
	}
	row, err := arch.Table().PushRow(id, rowVals)
	if err != nil {
		return 0, err
	}
	s.locations.Insert(id.Index(), archID, row)

	for cid, v := range sparseVals {
		s.sparseSets[cid].Set(id.Index(), v, tick)
	}
	return id, nil
}

// InsertComponents adds (or overwrites) components on a live entity. All new
// table components are applied in a single archetype move, so inserting many
// components at once costs one relocation, not one per component.
func (s *Storage) InsertComponents(id types.EntityID, tick types.Tick, comps ...types.Component) error {
	loc, err := s.validate(id)
	if err != nil {
		return err
	}
	tableVals, sparseVals, err := s.resolve(comps)
	if err != nil {
		return err
	}

	for cid, v := range sparseVals {
		s.sparseSets[cid].Set(id.Index(), v, tick)
	}
	if len(tableVals) == 0 {
		return nil
	}

	arch := s.archetypes[loc.ArchID]
	newIDs := make([]types.ComponentID, 0, len(tableVals))
	for cid := range tableVals {
		if !arch.Contains(cid) {
			newIDs = append(newIDs, cid)
		}
	}

	if len(newIDs) == 0 {
		// Every component is already present: overwrite in place.
		for cid, v := range tableVals {
			if err := arch.Table().Set(loc.Row, cid, v, tick); err != nil {
				return err
			}
		}
		return nil
	}

	targetIDs := append(slices.Clone(arch.Components()), newIDs...)
	rowVals, err := arch.Table().TakeRow(loc.Row)
	if err != nil {
		return err
	}
	for cid, v := range tableVals {
		if rv, ok := rowVals[cid]; ok {
			// Present component overwritten as part of the move.
			rv.Value = v
			rv.Ticks.Changed = tick
			rowVals[cid] = rv
		} else {
			rowVals[cid] = RowValue{Value: v, Ticks: types.NewComponentTicks(tick)}
		}
	}
	return s.moveEntity(id, loc, targetIDs, rowVals)
}

// RemoveComponent removes a component from a live entity, returning the
// previous value. Removing an absent component is a no-op returning nil.
func (s *Storage) RemoveComponent(id types.EntityID, cid types.ComponentID) (any, error) {
	loc, err := s.validate(id)
	if err != nil {
		return nil, err
	}
	meta, err := s.ComponentMetadata(cid)
	if err != nil {
		return nil, err
	}

	if meta.StorageFamily() == types.SparseSetStorage {
		prev, _ := s.sparseSets[cid].Remove(id.Index())
		return prev, nil
	}

	arch := s.archetypes[loc.ArchID]
	if !arch.Contains(cid) {
		return nil, nil
	}
	rowVals, err := arch.Table().TakeRow(loc.Row)
	if err != nil {
		return nil, err
	}
	prev := rowVals[cid].Value
	delete(rowVals, cid)

	targetIDs := make([]types.ComponentID, 0, len(arch.Components())-1)
	for _, existing := range arch.Components() {
		if existing != cid {
			targetIDs = append(targetIDs, existing)
		}
	}
	if err := s.moveEntity(id, loc, targetIDs, rowVals); err != nil {
		return nil, err
	}
	return prev, nil
}

// moveEntity relocates an entity's table row to the archetype with the given
// component set, patching the location of whichever entity filled the vacated
// row.
func (s *Storage) moveEntity(
	id types.EntityID,
	loc Location,
	targetIDs []types.ComponentID,
	rowVals map[types.ComponentID]RowValue,
) error {
	srcTable := s.archetypes[loc.ArchID].Table()
	moved, hasMoved, err := srcTable.SwapRemove(loc.Row)
	if err != nil {
		return err
	}
	if hasMoved {
		s.locations.SetRow(moved.Index(), loc.Row)
	}

	dstID := s.getOrCreateArchetype(targetIDs)
	row, err := s.archetypes[dstID].Table().PushRow(id, rowVals)
	if err != nil {
		return err
	}
	s.locations.Insert(id.Index(), dstID, row)
	return nil
}

// Despawn removes the entity's row (and sparse components) and frees its id.
func (s *Storage) Despawn(id types.EntityID) error {
	loc, err := s.validate(id)
	if err != nil {
		return err
	}
	table := s.archetypes[loc.ArchID].Table()
	moved, hasMoved, err := table.SwapRemove(loc.Row)
	if err != nil {
		return err
	}
	if hasMoved {
		s.locations.SetRow(moved.Index(), loc.Row)
	}
	for _, set := range s.sparseSets {
		set.Remove(id.Index())
	}
	s.locations.Remove(id.Index())
	return s.entities.Destroy(id)
}

// GetComponent returns the component value for a live entity without
// stamping any ticks.
func (s *Storage) GetComponent(id types.EntityID, cid types.ComponentID) (any, error) {
	loc, err := s.validate(id)
	if err != nil {
		return nil, err
	}
	meta, err := s.ComponentMetadata(cid)
	if err != nil {
		return nil, err
	}
	if meta.StorageFamily() == types.SparseSetStorage {
		v, ok := s.sparseSets[cid].Get(id.Index())
		if !ok {
			return nil, eris.Wrap(ErrComponentNotOnEntity, meta.Name())
		}
		return v, nil
	}
	table := s.archetypes[loc.ArchID].Table()
	if !table.Has(cid) {
		return nil, eris.Wrap(ErrComponentNotOnEntity, meta.Name())
	}
	return table.Get(loc.Row, cid)
}

// SetComponent overwrites an existing component value and stamps its changed
// tick. It is the write half of every mutable component access.
func (s *Storage) SetComponent(id types.EntityID, cid types.ComponentID, value any, tick types.Tick) error {
	loc, err := s.validate(id)
	if err != nil {
		return err
	}
	meta, err := s.ComponentMetadata(cid)
	if err != nil {
		return err
	}
	if meta.StorageFamily() == types.SparseSetStorage {
		set := s.sparseSets[cid]
		if !set.Has(id.Index()) {
			return eris.Wrap(ErrComponentNotOnEntity, meta.Name())
		}
		set.Set(id.Index(), value, tick)
		return nil
	}
	table := s.archetypes[loc.ArchID].Table()
	if !table.Has(cid) {
		return eris.Wrap(ErrComponentNotOnEntity, meta.Name())
	}
	return table.Set(loc.Row, cid, value, tick)
}

// GetComponentTicks returns the change-detection stamps of a component on a
// live entity.
func (s *Storage) GetComponentTicks(id types.EntityID, cid types.ComponentID) (types.ComponentTicks, error) {
	loc, err := s.validate(id)
	if err != nil {
		return types.ComponentTicks{}, err
	}
	meta, err := s.ComponentMetadata(cid)
	if err != nil {
		return types.ComponentTicks{}, err
	}
	if meta.StorageFamily() == types.SparseSetStorage {
		ticks, ok := s.sparseSets[cid].GetTicks(id.Index())
		if !ok {
			return types.ComponentTicks{}, eris.Wrap(ErrComponentNotOnEntity, meta.Name())
		}
		return ticks, nil
	}
	table := s.archetypes[loc.ArchID].Table()
	if !table.Has(cid) {
		return types.ComponentTicks{}, eris.Wrap(ErrComponentNotOnEntity, meta.Name())
	}
	return table.GetTicks(loc.Row, cid)
}

// ContainsComponent reports whether a live entity carries the component.
func (s *Storage) ContainsComponent(id types.EntityID, cid types.ComponentID) (bool, error) {
	loc, err := s.validate(id)
	if err != nil {
		return false, err
	}
	meta, err := s.ComponentMetadata(cid)
	if err != nil {
		return false, err
	}
	if meta.StorageFamily() == types.SparseSetStorage {
		return s.sparseSets[cid].Has(id.Index()), nil
	}
	return s.archetypes[loc.ArchID].Contains(cid), nil
}

// ComponentsOnEntity returns the metadata of every component on a live
// entity, table and sparse alike.
func (s *Storage) ComponentsOnEntity(id types.EntityID) ([]types.ComponentMetadata, error) {
	loc, err := s.validate(id)
	if err != nil {
		return nil, err
	}
	var metas []types.ComponentMetadata
	for _, cid := range s.archetypes[loc.ArchID].Components() {
		metas = append(metas, s.compMetas[cid])
	}
	for cid, set := range s.sparseSets {
		if set.Has(id.Index()) {
			metas = append(metas, s.compMetas[cid])
		}
	}
	return metas, nil
}

// CheckTicks clamps every stored tick against the current tick so that tick
// age never exceeds the comparable window. The world calls this periodically,
// always before the oldest stored tick could pass MaxChangeAge.
func (s *Storage) CheckTicks(current types.Tick) {
	for _, arch := range s.archetypes {
		arch.Table().CheckTicks(current)
	}
	for _, set := range s.sparseSets {
		set.CheckTicks(current)
	}
}

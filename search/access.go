package search

import (
	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/types"
)

var (
	// ErrConflictingAccess is returned when a query or system requests the
	// same component as both read-only and mutable.
	ErrConflictingAccess = eris.New("component requested as both read-only and mutable")

	// ErrRequiredAndExcluded is returned when a query requires and excludes
	// the same component.
	ErrRequiredAndExcluded = eris.New("component requested as both required and excluded")
)

type idSet map[types.ComponentID]struct{}

func (s idSet) add(cid types.ComponentID) {
	s[cid] = struct{}{}
}

func (s idSet) has(cid types.ComponentID) bool {
	_, ok := s[cid]
	return ok
}

func (s idSet) intersects(other idSet) bool {
	for cid := range s {
		if other.has(cid) {
			return true
		}
	}
	return false
}

type nameSet map[string]struct{}

func (s nameSet) add(name string) {
	s[name] = struct{}{}
}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s nameSet) intersects(other nameSet) bool {
	for name := range s {
		if other.has(name) {
			return true
		}
	}
	return false
}

// FilteredAccess is the compiled access descriptor of one query or one
// system: which components it reads and writes, which must be present or
// absent, and which resources it touches. It is computed once at
// registration and immutable afterwards; the scheduler's conflict analysis
// and the runtime aliasing guard both consume it.
type FilteredAccess struct {
	reads    idSet
	writes   idSet
	required idSet
	excluded idSet
	optional idSet
	added    idSet
	changed  idSet

	resourceReads  nameSet
	resourceWrites nameSet

	exclusive bool
}

// NewFilteredAccess creates an empty access descriptor.
func NewFilteredAccess() *FilteredAccess {
	return &FilteredAccess{
		reads:          idSet{},
		writes:         idSet{},
		required:       idSet{},
		excluded:       idSet{},
		optional:       idSet{},
		added:          idSet{},
		changed:        idSet{},
		resourceReads:  nameSet{},
		resourceWrites: nameSet{},
	}
}

func (a *FilteredAccess) AddRead(cid types.ComponentID) {
	a.reads.add(cid)
	a.required.add(cid)
}

func (a *FilteredAccess) AddWrite(cid types.ComponentID) {
	a.writes.add(cid)
	a.required.add(cid)
}

func (a *FilteredAccess) AddOptionalRead(cid types.ComponentID) {
	a.reads.add(cid)
	a.optional.add(cid)
}

func (a *FilteredAccess) AddRequired(cid types.ComponentID) {
	a.required.add(cid)
}

func (a *FilteredAccess) AddExcluded(cid types.ComponentID) {
	a.excluded.add(cid)
}

// AddAddedFilter marks the query as filtering on the component's added tick.
// Evaluating the filter reads the component's ticks, so it counts as a read
// for cross-system conflict analysis, but it may be combined with a write
// term on the same component within one query.
func (a *FilteredAccess) AddAddedFilter(cid types.ComponentID) {
	a.added.add(cid)
	a.required.add(cid)
}

// AddChangedFilter marks the query as filtering on the component's changed
// tick. Like AddAddedFilter this counts as a read for conflict analysis.
func (a *FilteredAccess) AddChangedFilter(cid types.ComponentID) {
	a.changed.add(cid)
	a.required.add(cid)
}

func (a *FilteredAccess) AddResourceRead(name string) {
	a.resourceReads.add(name)
}

func (a *FilteredAccess) AddResourceWrite(name string) {
	a.resourceWrites.add(name)
}

// SetExclusive marks the access as full, unrestricted world access. An
// exclusive access conflicts with every other access.
func (a *FilteredAccess) SetExclusive() {
	a.exclusive = true
}

func (a *FilteredAccess) IsExclusive() bool {
	return a.exclusive
}

// CanRead reports whether the access grants read access to the component.
// Added/Changed filters observe the component's ticks, so they grant
// read-level access too.
func (a *FilteredAccess) CanRead(cid types.ComponentID) bool {
	return a.exclusive || a.reads.has(cid) || a.writes.has(cid) ||
		a.added.has(cid) || a.changed.has(cid)
}

// CanWrite reports whether the access grants write access to the component.
func (a *FilteredAccess) CanWrite(cid types.ComponentID) bool {
	return a.exclusive || a.writes.has(cid)
}

// CanReadResource reports whether the access grants read access to the named
// resource.
func (a *FilteredAccess) CanReadResource(name string) bool {
	return a.exclusive || a.resourceReads.has(name) || a.resourceWrites.has(name)
}

// CanWriteResource reports whether the access grants write access to the
// named resource.
func (a *FilteredAccess) CanWriteResource(name string) bool {
	return a.exclusive || a.resourceWrites.has(name)
}

// Required returns the components that must be present, excluding optional
// terms.
func (a *FilteredAccess) Required() []types.ComponentID {
	ids := make([]types.ComponentID, 0, len(a.required))
	for cid := range a.required {
		if !a.optional.has(cid) {
			ids = append(ids, cid)
		}
	}
	return ids
}

// Excluded returns the components that must be absent.
func (a *FilteredAccess) Excluded() []types.ComponentID {
	ids := make([]types.ComponentID, 0, len(a.excluded))
	for cid := range a.excluded {
		ids = append(ids, cid)
	}
	return ids
}

// AddedFilters returns the components carrying an added-tick filter.
func (a *FilteredAccess) AddedFilters() []types.ComponentID {
	ids := make([]types.ComponentID, 0, len(a.added))
	for cid := range a.added {
		ids = append(ids, cid)
	}
	return ids
}

// ChangedFilters returns the components carrying a changed-tick filter.
func (a *FilteredAccess) ChangedFilters() []types.ComponentID {
	ids := make([]types.ComponentID, 0, len(a.changed))
	for cid := range a.changed {
		ids = append(ids, cid)
	}
	return ids
}

// ComponentReads returns every component the access observes without
// writing: plain reads plus tick filters.
func (a *FilteredAccess) ComponentReads() []types.ComponentID {
	t := a.touched()
	ids := make([]types.ComponentID, 0, len(t))
	for cid := range t {
		if !a.writes.has(cid) {
			ids = append(ids, cid)
		}
	}
	return ids
}

// ComponentWrites returns every component the access writes.
func (a *FilteredAccess) ComponentWrites() []types.ComponentID {
	ids := make([]types.ComponentID, 0, len(a.writes))
	for cid := range a.writes {
		ids = append(ids, cid)
	}
	return ids
}

// ResourceReads returns the names of resources read but not written.
func (a *FilteredAccess) ResourceReads() []string {
	names := make([]string, 0, len(a.resourceReads))
	for name := range a.resourceReads {
		if !a.resourceWrites.has(name) {
			names = append(names, name)
		}
	}
	return names
}

// ResourceWrites returns the names of resources written.
func (a *FilteredAccess) ResourceWrites() []string {
	names := make([]string, 0, len(a.resourceWrites))
	for name := range a.resourceWrites {
		names = append(names, name)
	}
	return names
}

// Validate checks the descriptor for contradictory terms. It runs once at
// registration time so a bad query can never surface mid-schedule.
func (a *FilteredAccess) Validate() error {
	for cid := range a.writes {
		if a.reads.has(cid) {
			return eris.Wrapf(ErrConflictingAccess, "component %d", cid)
		}
	}
	for cid := range a.required {
		if a.excluded.has(cid) {
			return eris.Wrapf(ErrRequiredAndExcluded, "component %d", cid)
		}
	}
	return nil
}

// Merge folds other into a. Used when a system declares several queries.
func (a *FilteredAccess) Merge(other *FilteredAccess) {
	for cid := range other.reads {
		a.reads.add(cid)
	}
	for cid := range other.writes {
		a.writes.add(cid)
	}
	for cid := range other.added {
		a.added.add(cid)
	}
	for cid := range other.changed {
		a.changed.add(cid)
	}
	for name := range other.resourceReads {
		a.resourceReads.add(name)
	}
	for name := range other.resourceWrites {
		a.resourceWrites.add(name)
	}
	if other.exclusive {
		a.exclusive = true
	}
}

// touched returns every component the access observes: reads, writes and
// tick filters.
func (a *FilteredAccess) touched() idSet {
	t := idSet{}
	for cid := range a.reads {
		t.add(cid)
	}
	for cid := range a.writes {
		t.add(cid)
	}
	for cid := range a.added {
		t.add(cid)
	}
	for cid := range a.changed {
		t.add(cid)
	}
	return t
}

// ConflictsWith reports whether two accesses cannot run concurrently: at
// least one side writes something the other touches. Two read-only accesses
// never conflict.
func (a *FilteredAccess) ConflictsWith(other *FilteredAccess) bool {
	if a.exclusive || other.exclusive {
		return true
	}
	if a.writes.intersects(other.touched()) ||
		other.writes.intersects(a.touched()) {
		return true
	}
	if a.resourceWrites.intersects(other.resourceWrites) ||
		a.resourceWrites.intersects(other.resourceReads) ||
		other.resourceWrites.intersects(a.resourceReads) {
		return true
	}
	return false
}

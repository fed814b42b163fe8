package helix

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/filter"
	"github.com/helix-engine/helix/search"
	"github.com/helix-engine/helix/storage"
	"github.com/helix-engine/helix/types"
)

type termKind int8

const (
	termRead termKind = iota
	termWrite
	termWith
	termWithout
	termOptional
	termAdded
	termChanged
	termResourceRead
	termResourceWrite
)

// QueryTerm is one clause of a query or of a system's access declaration.
// Build them with the generic constructors below.
type QueryTerm struct {
	kind     termKind
	comp     types.Component
	resource string
}

// Read grants read access to component T and requires its presence.
func Read[T types.Component]() QueryTerm {
	var t T
	return QueryTerm{kind: termRead, comp: t}
}

// Write grants write access to component T and requires its presence.
func Write[T types.Component]() QueryTerm {
	var t T
	return QueryTerm{kind: termWrite, comp: t}
}

// With requires the presence of component T without granting data access.
func With[T types.Component]() QueryTerm {
	var t T
	return QueryTerm{kind: termWith, comp: t}
}

// Without excludes entities carrying component T.
func Without[T types.Component]() QueryTerm {
	var t T
	return QueryTerm{kind: termWithout, comp: t}
}

// Optional grants read access to component T without requiring its
// presence.
func Optional[T types.Component]() QueryTerm {
	var t T
	return QueryTerm{kind: termOptional, comp: t}
}

// Added matches only entities whose component T was added since the running
// system's previous run, and requires its presence.
func Added[T types.Component]() QueryTerm {
	var t T
	return QueryTerm{kind: termAdded, comp: t}
}

// Changed matches only entities whose component T was added or mutated since
// the running system's previous run, and requires its presence.
func Changed[T types.Component]() QueryTerm {
	var t T
	return QueryTerm{kind: termChanged, comp: t}
}

// ReadsResource grants read access to the resource of type T.
func ReadsResource[T any]() QueryTerm {
	return QueryTerm{kind: termResourceRead, resource: typeName[T]()}
}

// WritesResource grants write access to the resource of type T.
func WritesResource[T any]() QueryTerm {
	return QueryTerm{kind: termResourceWrite, resource: typeName[T]()}
}

// compileAccess resolves a term list against the registered components and
// folds it into a validated access descriptor.
func compileAccess(store *storage.Storage, terms []QueryTerm) (*search.FilteredAccess, error) {
	access := search.NewFilteredAccess()
	for _, term := range terms {
		if term.kind == termResourceRead {
			access.AddResourceRead(term.resource)
			continue
		}
		if term.kind == termResourceWrite {
			access.AddResourceWrite(term.resource)
			continue
		}
		meta, err := store.ComponentMetadataByName(term.comp.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "query term references %q", term.comp.Name())
		}
		cid := meta.ID()
		switch term.kind {
		case termRead:
			access.AddRead(cid)
		case termWrite:
			access.AddWrite(cid)
		case termWith:
			access.AddRequired(cid)
		case termWithout:
			access.AddExcluded(cid)
		case termOptional:
			access.AddOptionalRead(cid)
		case termAdded:
			access.AddAddedFilter(cid)
		case termChanged:
			access.AddChangedFilter(cid)
		}
	}
	if err := access.Validate(); err != nil {
		return nil, err
	}
	return access, nil
}

// Query is a compiled, cached entity query. The archetype match set is
// extended incrementally as new archetypes appear, so constructing a query
// once and reusing it across runs is the cheap path. A Query is not safe for
// concurrent use; give each system its own.
type Query struct {
	world  *World
	access *search.FilteredAccess
	search *search.Search

	sparseRequired []types.ComponentID
	sparseExcluded []types.ComponentID
	added          []types.ComponentID
	changed        []types.ComponentID

	// Tick window of the in-flight iteration, set by each call from the
	// context it receives.
	curLastRun types.Tick
	curThisRun types.Tick
}

// NewQuery compiles the terms into a query. Every named component must be
// registered; contradictory terms (read+write of the same component, with+
// without of the same component) fail here rather than at iteration time.
func (w *World) NewQuery(terms ...QueryTerm) (*Query, error) {
	access, err := compileAccess(w.store, terms)
	if err != nil {
		return nil, err
	}

	q := &Query{
		world:   w,
		access:  access,
		added:   access.AddedFilters(),
		changed: access.ChangedFilters(),
	}

	var tableRequired []types.ComponentMetadata
	for _, cid := range access.Required() {
		meta, err := w.store.ComponentMetadata(cid)
		if err != nil {
			return nil, err
		}
		if meta.StorageFamily() == types.SparseSetStorage {
			q.sparseRequired = append(q.sparseRequired, cid)
			continue
		}
		tableRequired = append(tableRequired, meta)
	}

	filters := make([]filter.ComponentFilter, 0, 1)
	if len(tableRequired) > 0 {
		filters = append(filters,
			filter.ContainsComponents(types.ConvertComponentMetadatasToComponents(tableRequired)...))
	} else {
		filters = append(filters, filter.All())
	}
	for _, cid := range access.Excluded() {
		meta, err := w.store.ComponentMetadata(cid)
		if err != nil {
			return nil, err
		}
		if meta.StorageFamily() == types.SparseSetStorage {
			q.sparseExcluded = append(q.sparseExcluded, cid)
			continue
		}
		filters = append(filters, filter.Not(filter.ContainsComponents(meta)))
	}

	q.search = search.New(w.store, filter.And(filters...), q.matches)
	return q, nil
}

// Access returns the compiled access descriptor of the query.
func (q *Query) Access() *search.FilteredAccess {
	return q.access
}

// Each iterates every matching entity, calling cb until it returns false or
// entities run out. The context's declared access must cover the query's.
func (q *Query) Each(ctx WorldContext, cb func(types.EntityID) bool) error {
	q.bind(ctx)
	return q.search.Each(search.CallbackFn(cb))
}

// Count returns the number of matching entities.
func (q *Query) Count(ctx WorldContext) (int, error) {
	q.bind(ctx)
	return q.search.Count()
}

// First returns the first matching entity, or ErrNoMatch.
func (q *Query) First(ctx WorldContext) (types.EntityID, error) {
	q.bind(ctx)
	return q.search.First()
}

// Collect returns all matching entities.
func (q *Query) Collect(ctx WorldContext) ([]types.EntityID, error) {
	q.bind(ctx)
	return q.search.Collect()
}

func (q *Query) bind(ctx WorldContext) {
	q.ensureGranted(ctx)
	q.curLastRun = ctx.LastRunTick()
	q.curThisRun = ctx.CurrentTick()
}

// ensureGranted panics when a query demands data access that the running
// system never declared.
func (q *Query) ensureGranted(ctx WorldContext) {
	if ctx.access == nil {
		return
	}
	for _, cid := range q.access.ComponentWrites() {
		if !ctx.access.CanWrite(cid) {
			panic(fmt.Sprintf(
				"system %s iterates a query writing component id %d without declaring it", ctx.system, cid))
		}
	}
	for _, cid := range q.access.ComponentReads() {
		if !ctx.access.CanRead(cid) {
			panic(fmt.Sprintf(
				"system %s iterates a query reading component id %d without declaring it", ctx.system, cid))
		}
	}
}

// matches is the per-entity tail of the query: sparse membership and change
// windows, checked after archetype-level filtering.
func (q *Query) matches(id types.EntityID) (bool, error) {
	store := q.world.store
	for _, cid := range q.sparseRequired {
		ok, err := store.ContainsComponent(id, cid)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	for _, cid := range q.sparseExcluded {
		ok, err := store.ContainsComponent(id, cid)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}
	for _, cid := range q.added {
		ticks, err := store.GetComponentTicks(id, cid)
		if err != nil {
			if eris.Is(err, storage.ErrComponentNotOnEntity) {
				return false, nil
			}
			return false, err
		}
		if !ticks.IsAdded(q.curLastRun, q.curThisRun) {
			return false, nil
		}
	}
	for _, cid := range q.changed {
		ticks, err := store.GetComponentTicks(id, cid)
		if err != nil {
			if eris.Is(err, storage.ErrComponentNotOnEntity) {
				return false, nil
			}
			return false, err
		}
		if !ticks.IsChanged(q.curLastRun, q.curThisRun) {
			return false, nil
		}
	}
	return true, nil
}

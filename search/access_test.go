package search_test

import (
	"testing"

	"github.com/helix-engine/helix/assert"
	"github.com/helix-engine/helix/search"
	"github.com/helix-engine/helix/types"
)

const (
	compA types.ComponentID = iota
	compB
	compC
)

func TestValidateRejectsReadAndWriteOfSameComponent(t *testing.T) {
	access := search.NewFilteredAccess()
	access.AddRead(compA)
	access.AddWrite(compA)
	assert.ErrorIs(t, access.Validate(), search.ErrConflictingAccess)
}

func TestValidateRejectsRequiredAndExcluded(t *testing.T) {
	access := search.NewFilteredAccess()
	access.AddRequired(compA)
	access.AddExcluded(compA)
	assert.ErrorIs(t, access.Validate(), search.ErrRequiredAndExcluded)
}

func TestWriteMayCombineWithChangedFilterOfSameComponent(t *testing.T) {
	access := search.NewFilteredAccess()
	access.AddWrite(compA)
	access.AddChangedFilter(compA)
	assert.NilError(t, access.Validate())
}

func TestConflictsWith(t *testing.T) {
	newAccess := func(build func(a *search.FilteredAccess)) *search.FilteredAccess {
		a := search.NewFilteredAccess()
		build(a)
		return a
	}

	readA := newAccess(func(a *search.FilteredAccess) { a.AddRead(compA) })
	writeA := newAccess(func(a *search.FilteredAccess) { a.AddWrite(compA) })
	writeB := newAccess(func(a *search.FilteredAccess) { a.AddWrite(compB) })
	changedA := newAccess(func(a *search.FilteredAccess) { a.AddChangedFilter(compA) })
	exclusive := newAccess(func(a *search.FilteredAccess) { a.SetExclusive() })
	readResX := newAccess(func(a *search.FilteredAccess) { a.AddResourceRead("x") })
	writeResX := newAccess(func(a *search.FilteredAccess) { a.AddResourceWrite("x") })

	// Two readers never conflict.
	assert.False(t, readA.ConflictsWith(readA))
	// A writer conflicts with readers and writers of the same component.
	assert.True(t, writeA.ConflictsWith(readA))
	assert.True(t, readA.ConflictsWith(writeA))
	assert.True(t, writeA.ConflictsWith(writeA))
	// Disjoint writes are fine.
	assert.False(t, writeA.ConflictsWith(writeB))
	// A change filter observes ticks the writer stamps.
	assert.True(t, changedA.ConflictsWith(writeA))
	assert.True(t, writeA.ConflictsWith(changedA))
	assert.False(t, changedA.ConflictsWith(writeB))
	// Exclusive access conflicts with everything, even another exclusive.
	assert.True(t, exclusive.ConflictsWith(readA))
	assert.True(t, readA.ConflictsWith(exclusive))
	assert.True(t, exclusive.ConflictsWith(exclusive))
	// Resources follow the same reader/writer rules.
	assert.False(t, readResX.ConflictsWith(readResX))
	assert.True(t, readResX.ConflictsWith(writeResX))
	assert.True(t, writeResX.ConflictsWith(writeResX))
	assert.False(t, readA.ConflictsWith(writeResX))
}

func TestCanReadAndWrite(t *testing.T) {
	access := search.NewFilteredAccess()
	access.AddWrite(compA)
	access.AddRead(compB)

	assert.True(t, access.CanRead(compA))
	assert.True(t, access.CanWrite(compA))
	assert.True(t, access.CanRead(compB))
	assert.False(t, access.CanWrite(compB))
	assert.False(t, access.CanRead(compC))

	exclusive := search.NewFilteredAccess()
	exclusive.SetExclusive()
	assert.True(t, exclusive.CanRead(compC))
	assert.True(t, exclusive.CanWrite(compC))
	assert.True(t, exclusive.CanWriteResource("anything"))
}

func TestTickFiltersGrantReadAccess(t *testing.T) {
	// A system declaring only Added/Changed terms reads the component's
	// ticks, so its access must cover a query carrying the same filter.
	added := search.NewFilteredAccess()
	added.AddAddedFilter(compA)
	assert.True(t, added.CanRead(compA))
	assert.False(t, added.CanWrite(compA))
	assert.False(t, added.CanRead(compB))

	changed := search.NewFilteredAccess()
	changed.AddChangedFilter(compB)
	assert.True(t, changed.CanRead(compB))
	assert.False(t, changed.CanWrite(compB))
}

func TestMergeCombinesAccess(t *testing.T) {
	a := search.NewFilteredAccess()
	a.AddRead(compA)
	b := search.NewFilteredAccess()
	b.AddWrite(compB)
	b.AddResourceRead("x")

	a.Merge(b)
	assert.True(t, a.CanRead(compA))
	assert.True(t, a.CanWrite(compB))
	assert.True(t, a.CanReadResource("x"))
	assert.False(t, a.CanWriteResource("x"))
}

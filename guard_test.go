package helix

import (
	"testing"

	"github.com/helix-engine/helix/assert"
	"github.com/helix-engine/helix/search"
)

func TestGuardAllowsConcurrentReaders(t *testing.T) {
	g := newAccessGuard()
	access := search.NewFilteredAccess()
	access.AddRead(0)

	release1 := g.acquire("r1", access)
	release2 := g.acquire("r2", access)
	release1()
	release2()
}

func TestGuardPanicsOnWriteOverlap(t *testing.T) {
	g := newAccessGuard()
	write := search.NewFilteredAccess()
	write.AddWrite(0)
	read := search.NewFilteredAccess()
	read.AddRead(0)

	release := g.acquire("writer", write)
	assert.Panics(t, func() { g.acquire("reader", read) })
	assert.Panics(t, func() { g.acquire("writer2", write) })
	release()

	// After release the component is free again.
	g.acquire("reader", read)()
}

func TestGuardPanicsOnResourceOverlap(t *testing.T) {
	g := newAccessGuard()
	write := search.NewFilteredAccess()
	write.AddResourceWrite("clock")
	read := search.NewFilteredAccess()
	read.AddResourceRead("clock")

	release := g.acquire("reader", read)
	assert.Panics(t, func() { g.acquire("writer", write) })
	release()
	g.acquire("writer", write)()
}

func TestGuardExclusiveExcludesEverything(t *testing.T) {
	g := newAccessGuard()
	read := search.NewFilteredAccess()
	read.AddRead(0)

	release := g.acquire("exclusive", nil)
	assert.Panics(t, func() { g.acquire("reader", read) })
	release()

	releaseRead := g.acquire("reader", read)
	assert.Panics(t, func() { g.acquire("exclusive", nil) })
	releaseRead()
}

func TestUnrestrictedContextAllowsEverything(t *testing.T) {
	world, err := NewWorld()
	assert.NilError(t, err)
	ctx := world.Context()
	ctx.checkRead(0, "anything")
	ctx.checkWrite(0, "anything")
	ctx.checkReadResource("anything")
	ctx.checkWriteResource("anything")
}

func TestRestrictedContextPanicsOnUndeclaredAccess(t *testing.T) {
	world, err := NewWorld()
	assert.NilError(t, err)

	access := search.NewFilteredAccess()
	access.AddRead(0)
	ctx := WorldContext{world: world, access: access, system: "bad"}

	ctx.checkRead(0, "granted")
	assert.Panics(t, func() { ctx.checkWrite(0, "granted-read-only") })
	assert.Panics(t, func() { ctx.checkRead(1, "undeclared") })
	assert.Panics(t, func() { ctx.checkReadResource("undeclared") })
}

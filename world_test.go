package helix_test

import (
	"context"
	"testing"

	"github.com/helix-engine/helix"
	"github.com/helix-engine/helix/assert"
	"github.com/helix-engine/helix/component"
	"github.com/helix-engine/helix/search"
	"github.com/helix-engine/helix/storage"
	"github.com/helix-engine/helix/types"
	"github.com/helix-engine/helix/worldstage"
)

type Position struct {
	X float64
	Y float64
}

func (Position) Name() string { return "position" }

type Velocity struct {
	X float64
	Y float64
}

func (Velocity) Name() string { return "velocity" }

type Frozen struct{}

func (Frozen) Name() string { return "frozen" }

type GameSettings struct {
	Difficulty int
}

func newTestWorld(t *testing.T) *helix.World {
	t.Helper()
	world, err := helix.NewWorld()
	assert.NilError(t, err)
	assert.NilError(t, helix.RegisterComponent[Position](world))
	assert.NilError(t, helix.RegisterComponent[Velocity](world))
	assert.NilError(t, helix.RegisterComponent[Frozen](world, component.WithSparseSetStorage[Frozen]()))
	return world
}

func TestSpawnAndQuery(t *testing.T) {
	world := newTestWorld(t)
	ctx := world.Context()

	moving, err := helix.Create(ctx, Position{X: 1}, Velocity{X: 2})
	assert.NilError(t, err)
	still, err := helix.Create(ctx, Position{X: 3})
	assert.NilError(t, err)
	assert.Equal(t, 2, ctx.NumLive())

	all, err := world.NewQuery(helix.Read[Position]())
	assert.NilError(t, err)
	ids, err := all.Collect(ctx)
	assert.NilError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, moving)
	assert.Contains(t, ids, still)

	both, err := world.NewQuery(helix.Read[Position](), helix.Read[Velocity]())
	assert.NilError(t, err)
	ids, err = both.Collect(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.EntityID{moving}, ids)

	without, err := world.NewQuery(helix.Read[Position](), helix.Without[Velocity]())
	assert.NilError(t, err)
	ids, err = without.Collect(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.EntityID{still}, ids)
}

func TestQueryValidation(t *testing.T) {
	world := newTestWorld(t)

	_, err := world.NewQuery(helix.Read[Position](), helix.Write[Position]())
	assert.ErrorIs(t, err, search.ErrConflictingAccess)

	_, err = world.NewQuery(helix.With[Position](), helix.Without[Position]())
	assert.ErrorIs(t, err, search.ErrRequiredAndExcluded)

	_, err = world.NewQuery(helix.Read[unregistered]())
	assert.ErrorIs(t, err, storage.ErrComponentNotRegistered)
}

type unregistered struct{}

func (unregistered) Name() string { return "unregistered" }

func TestSparseComponentQueries(t *testing.T) {
	world := newTestWorld(t)
	ctx := world.Context()

	frozen, err := helix.Create(ctx, Position{}, Frozen{})
	assert.NilError(t, err)
	free, err := helix.Create(ctx, Position{})
	assert.NilError(t, err)

	// Adding and removing a sparse component never moves the entity.
	beforeArch, _, err := world.Store().Location(frozen)
	assert.NilError(t, err)
	assert.NilError(t, helix.RemoveComponentFrom[Frozen](ctx, frozen))
	assert.NilError(t, helix.AddComponentTo[Frozen](ctx, frozen))
	afterArch, _, err := world.Store().Location(frozen)
	assert.NilError(t, err)
	assert.Equal(t, beforeArch, afterArch)

	withFrozen, err := world.NewQuery(helix.Read[Position](), helix.With[Frozen]())
	assert.NilError(t, err)
	ids, err := withFrozen.Collect(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.EntityID{frozen}, ids)

	withoutFrozen, err := world.NewQuery(helix.Read[Position](), helix.Without[Frozen]())
	assert.NilError(t, err)
	ids, err = withoutFrozen.Collect(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.EntityID{free}, ids)
}

func TestComponentHelpers(t *testing.T) {
	world := newTestWorld(t)
	ctx := world.Context()

	id, err := helix.Create(ctx, Position{X: 1, Y: 2})
	assert.NilError(t, err)

	pos, err := helix.GetComponent[Position](ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, Position{X: 1, Y: 2}, *pos)

	// The returned value is a copy; writing back requires SetComponent.
	pos.X = 50
	again, err := helix.GetComponent[Position](ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, 1.0, again.X)

	assert.NilError(t, helix.SetComponent(ctx, id, pos))
	again, err = helix.GetComponent[Position](ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, 50.0, again.X)

	assert.NilError(t, helix.UpdateComponent(ctx, id, func(p *Position) *Position {
		p.Y++
		return p
	}))
	again, err = helix.GetComponent[Position](ctx, id)
	assert.NilError(t, err)
	assert.Equal(t, 3.0, again.Y)

	has, err := helix.HasComponent[Velocity](ctx, id)
	assert.NilError(t, err)
	assert.False(t, has)
	_, err = helix.GetComponent[Velocity](ctx, id)
	assert.ErrorIs(t, err, storage.ErrComponentNotOnEntity)
}

func TestStaleHandlesAreRejected(t *testing.T) {
	world := newTestWorld(t)
	ctx := world.Context()

	id, err := helix.Create(ctx, Position{})
	assert.NilError(t, err)
	assert.NilError(t, helix.Remove(ctx, id))

	recycled, err := helix.Create(ctx, Position{})
	assert.NilError(t, err)
	assert.Equal(t, id.Index(), recycled.Index())

	assert.False(t, ctx.IsLive(id))
	_, err = helix.GetComponent[Position](ctx, id)
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
	assert.ErrorIs(t, helix.Remove(ctx, id), storage.ErrEntityNotFound)
}

func TestResources(t *testing.T) {
	world := newTestWorld(t)

	assert.ErrorIs(t, world.InsertResource(GameSettings{}), helix.ErrResourceMustBePointer)

	assert.NilError(t, world.InsertResource(&GameSettings{Difficulty: 2}))
	settings, err := helix.GetResource[GameSettings](world)
	assert.NilError(t, err)
	assert.Equal(t, 2, settings.Difficulty)

	// Re-inserting replaces the singleton.
	assert.NilError(t, world.InsertResource(&GameSettings{Difficulty: 5}))
	settings, err = helix.GetResource[GameSettings](world)
	assert.NilError(t, err)
	assert.Equal(t, 5, settings.Difficulty)

	_, err = helix.GetResource[Position](world)
	assert.ErrorIs(t, err, helix.ErrResourceNotFound)
}

func TestRegistrationClosesWhenRunning(t *testing.T) {
	world := newTestWorld(t)
	schedule := helix.NewSchedule(world)
	assert.NilError(t, schedule.AddSystem(func(ctx helix.WorldContext) error { return nil },
		helix.WithSystemName("noop")))

	assert.NilError(t, schedule.Run(context.Background()))
	assert.Equal(t, worldstage.Running, world.Stage().Current())
	assert.ErrorIs(t, helix.RegisterComponent[unregistered](world), helix.ErrWorldRunning)
}

func TestShutdown(t *testing.T) {
	world := newTestWorld(t)
	schedule := helix.NewSchedule(world)

	world.Shutdown()
	assert.Equal(t, worldstage.ShutDown, world.Stage().Current())
	assert.ErrorIs(t, schedule.Run(context.Background()), helix.ErrWorldShutDown)
	assert.ErrorIs(t, schedule.AddSystems(func(ctx helix.WorldContext) error { return nil }),
		helix.ErrWorldShutDown)
}

func TestRestrictedContextRejectsStructuralChanges(t *testing.T) {
	world := newTestWorld(t)
	schedule := helix.NewSchedule(world)

	var createErr, removeErr error
	assert.NilError(t, schedule.AddSystem(func(ctx helix.WorldContext) error {
		_, createErr = helix.Create(ctx, Position{})
		removeErr = helix.Remove(ctx, types.NewEntityID(0, 0))
		return nil
	}, helix.WithSystemName("structural")))

	assert.NilError(t, schedule.Run(context.Background()))
	assert.ErrorIs(t, createErr, helix.ErrRestrictedContext)
	assert.ErrorIs(t, removeErr, helix.ErrRestrictedContext)
}

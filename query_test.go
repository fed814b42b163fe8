package helix_test

import (
	"context"
	"testing"

	"github.com/helix-engine/helix"
	"github.com/helix-engine/helix/assert"
	"github.com/helix-engine/helix/search"
	"github.com/helix-engine/helix/types"
)

func TestAddedFilterSeesEachEntityOnce(t *testing.T) {
	world := newTestWorld(t)
	schedule := helix.NewSchedule(world)

	assert.NilError(t, schedule.AddInitSystems(func(ctx helix.WorldContext) error {
		_, err := helix.Create(ctx, Position{X: 1})
		return err
	}))

	added, err := world.NewQuery(helix.Added[Position]())
	assert.NilError(t, err)
	var seen []int
	assert.NilError(t, schedule.AddSystem(func(ctx helix.WorldContext) error {
		count, err := added.Count(ctx)
		if err != nil {
			return err
		}
		seen = append(seen, count)
		return nil
	}, helix.WithSystemName("observeAdded"), helix.WithAccess(helix.Added[Position]())))

	ctx := context.Background()
	assert.NilError(t, schedule.Run(ctx))
	assert.NilError(t, schedule.Run(ctx))
	assert.NilError(t, schedule.Run(ctx))

	// The insertion is visible exactly on the run it happened, never again.
	assert.DeepEqual(t, []int{1, 0, 0}, seen)
}

func TestChangedFilterTracksWrites(t *testing.T) {
	world := newTestWorld(t)
	schedule := helix.NewSchedule(world)

	assert.NilError(t, schedule.AddInitSystems(func(ctx helix.WorldContext) error {
		_, err := helix.Create(ctx, Position{})
		return err
	}))

	all, err := world.NewQuery(helix.Write[Position]())
	assert.NilError(t, err)
	var run int
	assert.NilError(t, schedule.AddSystem(func(ctx helix.WorldContext) error {
		run++
		if run != 2 {
			return nil
		}
		return all.Each(ctx, func(id types.EntityID) bool {
			return helix.UpdateComponent(ctx, id, func(p *Position) *Position {
				p.X++
				return p
			}) == nil
		})
	}, helix.WithSystemName("mutator"), helix.WithAccess(helix.Write[Position]())))

	changed, err := world.NewQuery(helix.Changed[Position]())
	assert.NilError(t, err)
	var seen []int
	assert.NilError(t, schedule.AddSystem(func(ctx helix.WorldContext) error {
		count, err := changed.Count(ctx)
		if err != nil {
			return err
		}
		seen = append(seen, count)
		return nil
	},
		helix.WithSystemName("observeChanged"),
		helix.WithAccess(helix.Changed[Position]()),
		helix.RunAfter("mutator"),
	))

	ctx := context.Background()
	assert.NilError(t, schedule.Run(ctx)) // insertion counts as a change
	assert.NilError(t, schedule.Run(ctx)) // the mutation happens this run
	assert.NilError(t, schedule.Run(ctx)) // quiet again

	assert.DeepEqual(t, []int{1, 1, 0}, seen)
}

func TestReadsNeverMarkChanged(t *testing.T) {
	world := newTestWorld(t)
	schedule := helix.NewSchedule(world)

	assert.NilError(t, schedule.AddInitSystems(func(ctx helix.WorldContext) error {
		_, err := helix.Create(ctx, Position{})
		return err
	}))

	all, err := world.NewQuery(helix.Read[Position]())
	assert.NilError(t, err)
	assert.NilError(t, schedule.AddSystem(func(ctx helix.WorldContext) error {
		return all.Each(ctx, func(id types.EntityID) bool {
			_, err := helix.GetComponent[Position](ctx, id)
			return err == nil
		})
	}, helix.WithSystemName("reader"), helix.WithAccess(helix.Read[Position]())))

	changed, err := world.NewQuery(helix.Changed[Position]())
	assert.NilError(t, err)
	var seen []int
	assert.NilError(t, schedule.AddSystem(func(ctx helix.WorldContext) error {
		count, err := changed.Count(ctx)
		if err != nil {
			return err
		}
		seen = append(seen, count)
		return nil
	},
		helix.WithSystemName("observeChanged"),
		helix.WithAccess(helix.Changed[Position]()),
		helix.RunAfter("reader"),
	))

	ctx := context.Background()
	assert.NilError(t, schedule.Run(ctx))
	assert.NilError(t, schedule.Run(ctx))
	assert.DeepEqual(t, []int{1, 0}, seen)
}

func TestOptionalTermDoesNotFilter(t *testing.T) {
	world := newTestWorld(t)
	ctx := world.Context()

	moving, err := helix.Create(ctx, Position{}, Velocity{X: 1})
	assert.NilError(t, err)
	still, err := helix.Create(ctx, Position{})
	assert.NilError(t, err)

	q, err := world.NewQuery(helix.Read[Position](), helix.Optional[Velocity]())
	assert.NilError(t, err)
	ids, err := q.Collect(ctx)
	assert.NilError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, moving)
	assert.Contains(t, ids, still)
}

func TestQueryFirstAndCount(t *testing.T) {
	world := newTestWorld(t)
	ctx := world.Context()

	q, err := world.NewQuery(helix.Read[Velocity]())
	assert.NilError(t, err)

	_, err = q.First(ctx)
	assert.ErrorIs(t, err, search.ErrNoMatch)

	id, err := helix.Create(ctx, Position{}, Velocity{})
	assert.NilError(t, err)

	// The cached archetype match set extends to archetypes created after the
	// query was built.
	first, err := q.First(ctx)
	assert.NilError(t, err)
	assert.Equal(t, id, first)
	count, err := q.Count(ctx)
	assert.NilError(t, err)
	assert.Equal(t, 1, count)
}

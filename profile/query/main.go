// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"context"

	"github.com/pkg/profile"

	"github.com/helix-engine/helix"
	"github.com/helix-engine/helix/types"
)

type position struct {
	X float64
	Y float64
}

func (position) Name() string { return "position" }

type velocity struct {
	X float64
	Y float64
}

func (velocity) Name() string { return "velocity" }

var moveQuery *helix.Query

func moveSystem(ctx helix.WorldContext) error {
	return moveQuery.Each(ctx, func(id types.EntityID) bool {
		pos, err := helix.GetComponent[position](ctx, id)
		if err != nil {
			return false
		}
		vel, err := helix.GetComponent[velocity](ctx, id)
		if err != nil {
			return false
		}
		pos.X += vel.X
		pos.Y += vel.Y
		return helix.SetComponent(ctx, id, pos) == nil
	})
}

func main() {
	ticks := 10000
	entities := 1000

	world, err := helix.NewWorld()
	if err != nil {
		panic(err)
	}
	must(helix.RegisterComponent[position](world))
	must(helix.RegisterComponent[velocity](world))

	_, err = helix.CreateMany(world.Context(), entities, position{}, velocity{X: 1, Y: 1})
	must(err)

	moveQuery, err = world.NewQuery(
		helix.Write[position](),
		helix.Read[velocity](),
	)
	must(err)

	schedule := helix.NewSchedule(world)
	must(schedule.AddSystem(moveSystem, helix.WithAccess(
		helix.Write[position](),
		helix.Read[velocity](),
	)))

	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	for i := 0; i < ticks; i++ {
		must(schedule.Run(context.Background()))
	}
	p.Stop()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/helix-engine/helix"
)

type comp1 struct {
	V int64
	W int64
}

func (comp1) Name() string { return "comp1" }

type comp2 struct {
	V int64
	W int64
}

func (comp2) Name() string { return "comp2" }

func main() {
	rounds := 50
	iters := 1000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for r := 0; r < rounds; r++ {
		world, err := helix.NewWorld()
		if err != nil {
			panic(err)
		}
		must(helix.RegisterComponent[comp1](world))
		must(helix.RegisterComponent[comp2](world))
		ctx := world.Context()

		for i := 0; i < iters; i++ {
			ids, err := helix.CreateMany(ctx, numEntities, comp1{}, comp2{V: 1, W: 1})
			if err != nil {
				panic(err)
			}
			for _, id := range ids {
				must(helix.Remove(ctx, id))
			}
		}
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

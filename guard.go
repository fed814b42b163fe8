package helix

import (
	"fmt"
	"sync"

	"github.com/helix-engine/helix/search"
	"github.com/helix-engine/helix/types"
)

// accessGuard is the runtime backstop behind the scheduler's static conflict
// analysis. Every system acquires its declared access before running and
// releases it after; two overlapping acquisitions mean the planner let a
// data race through, which is unrecoverable, so the guard panics instead of
// blocking.
type accessGuard struct {
	mu          sync.Mutex
	active      int
	exclusive   int
	compReaders map[types.ComponentID]int
	compWriters map[types.ComponentID]int
	resReaders  map[string]int
	resWriters  map[string]int
}

func newAccessGuard() *accessGuard {
	return &accessGuard{
		compReaders: map[types.ComponentID]int{},
		compWriters: map[types.ComponentID]int{},
		resReaders:  map[string]int{},
		resWriters:  map[string]int{},
	}
}

// acquire registers the access as held and returns its release. A nil access
// is exclusive.
func (g *accessGuard) acquire(system string, access *search.FilteredAccess) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if access == nil || access.IsExclusive() {
		if g.active > 0 {
			panic(fmt.Sprintf(
				"exclusive system %s dispatched while %d systems hold world access", system, g.active))
		}
		g.active++
		g.exclusive++
		return func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.active--
			g.exclusive--
		}
	}

	if g.exclusive > 0 {
		panic(fmt.Sprintf(
			"system %s dispatched while an exclusive system holds the world", system))
	}
	reads := access.ComponentReads()
	writes := access.ComponentWrites()
	resReads := access.ResourceReads()
	resWrites := access.ResourceWrites()
	for _, cid := range writes {
		if g.compReaders[cid] > 0 || g.compWriters[cid] > 0 {
			panic(fmt.Sprintf(
				"system %s writes component id %d concurrently with another system touching it", system, cid))
		}
	}
	for _, cid := range reads {
		if g.compWriters[cid] > 0 {
			panic(fmt.Sprintf(
				"system %s reads component id %d concurrently with a writer", system, cid))
		}
	}
	for _, name := range resWrites {
		if g.resReaders[name] > 0 || g.resWriters[name] > 0 {
			panic(fmt.Sprintf(
				"system %s writes resource %s concurrently with another system touching it", system, name))
		}
	}
	for _, name := range resReads {
		if g.resWriters[name] > 0 {
			panic(fmt.Sprintf(
				"system %s reads resource %s concurrently with a writer", system, name))
		}
	}

	g.active++
	for _, cid := range reads {
		g.compReaders[cid]++
	}
	for _, cid := range writes {
		g.compWriters[cid]++
	}
	for _, name := range resReads {
		g.resReaders[name]++
	}
	for _, name := range resWrites {
		g.resWriters[name]++
	}
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.active--
		for _, cid := range reads {
			g.compReaders[cid]--
		}
		for _, cid := range writes {
			g.compWriters[cid]--
		}
		for _, name := range resReads {
			g.resReaders[name]--
		}
		for _, name := range resWrites {
			g.resWriters[name]--
		}
	}
}

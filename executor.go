package helix

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/helix-engine/helix/log"
	"github.com/helix-engine/helix/statsd"
	"github.com/helix-engine/helix/types"
	"github.com/helix-engine/helix/worldstage"
)

// Run executes one full pass of the schedule: advance the world tick, run
// init systems if this is the first pass, then dispatch each wave across the
// worker pool and drain the wave's command buffers at the sync point before
// the next wave starts. Command buffers are drained in system registration
// order, so structural changes apply deterministically regardless of how the
// wave's systems interleaved.
//
// System errors are handled per the schedule's policy; either way the
// returned error joins every failure observed during the pass.
func (s *Schedule) Run(ctx context.Context) error {
	switch s.world.stage.Current() {
	case worldstage.ShuttingDown, worldstage.ShutDown:
		return eris.Wrap(ErrWorldShutDown, "run schedule")
	}
	if !s.built {
		buildStart := time.Now()
		if err := s.Build(); err != nil {
			return err
		}
		statsd.EmitTickStat(buildStart, "schedule_build")
	}
	s.world.stage.CompareAndSwap(worldstage.Ready, worldstage.Running)

	runStart := time.Now()
	tick, checked := s.world.advanceTick()
	if checked {
		for _, sys := range s.systems {
			sys.lastRun.CheckTick(tick)
		}
	}

	var failures []error
	if !s.initDone {
		s.initDone = true
		log.World(s.world.Logger, s.world, zerolog.InfoLevel)
		initStart := time.Now()
		for _, sys := range s.initSystems {
			if err := sys.fn(s.contextFor(sys, tick)); err != nil {
				err = eris.Wrapf(err, "init system %q failed", sys.name)
				if s.policy == AbortOnError {
					return err
				}
				failures = append(failures, err)
				s.world.Logger.Error().Err(err).Str("system", sys.name).Msg("init system failed")
			}
			sys.lastRun = tick
		}
		statsd.EmitTickStat(initStart, "init_systems")
	}

	aborted := false
	for _, wave := range s.waves {
		runnable := make([]*registeredSystem, 0, len(wave))
		for _, idx := range wave {
			sys := s.systems[idx]
			if sys.runIf != nil && !sys.runIf(s.world.Context()) {
				s.world.Logger.Debug().Str("system", sys.name).Msg("run condition false, skipping")
				continue
			}
			runnable = append(runnable, sys)
		}

		execStart := time.Now()
		var mu sync.Mutex
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(s.world.config.Workers)
		for _, sys := range runnable {
			sys := sys
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				release := s.world.guard.acquire(sys.name, sys.access)
				defer release()
				err := sys.fn(s.contextFor(sys, tick))
				sys.lastRun = tick
				if err != nil {
					mu.Lock()
					failures = append(failures, eris.Wrapf(err, "system %q failed", sys.name))
					mu.Unlock()
					s.world.Logger.Error().Err(err).Str("system", sys.name).Msg("system failed")
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			failures = append(failures, err)
			aborted = true
		}
		statsd.EmitTickStat(execStart, "system_exec")

		applyStart := time.Now()
		for _, idx := range wave {
			sys := s.systems[idx]
			if sys.buffer.Len() == 0 {
				continue
			}
			if err := sys.buffer.Apply(s.world, tick); err != nil {
				failures = append(failures, eris.Wrapf(err, "commands from system %q", sys.name))
			}
		}
		statsd.EmitTickStat(applyStart, "command_apply")

		if s.policy == AbortOnError && len(failures) > 0 {
			aborted = true
		}
		if aborted {
			break
		}
	}

	statsd.EmitTickStat(runStart, "schedule_run")
	return errors.Join(failures...)
}

// contextFor builds the execution context a system runs against. Exclusive
// systems get an unrestricted context and mutate the world directly; all
// others get their declared access and their command buffer.
func (s *Schedule) contextFor(sys *registeredSystem, tick types.Tick) WorldContext {
	logger := s.world.Logger.With().
		Str("schedule", s.name).
		Str("system", sys.name).
		Logger()
	wCtx := WorldContext{
		world:   s.world,
		logger:  &logger,
		system:  sys.name,
		lastRun: sys.lastRun,
		thisRun: tick,
	}
	if !sys.exclusive {
		wCtx.access = sys.access
		wCtx.cmds = sys.buffer
	}
	return wCtx
}

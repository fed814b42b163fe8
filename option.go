package helix

import (
	"github.com/rs/zerolog"
)

// WorldOption tweaks a world at construction time, before any component or
// system registration happens.
type WorldOption func(*World)

// WithLogger replaces the default stdout logger.
func WithLogger(logger *zerolog.Logger) WorldOption {
	return func(w *World) {
		w.Logger = logger
	}
}

// WithWorkers caps how many systems a schedule may run concurrently within
// one wave. Values below one are ignored.
func WithWorkers(n int) WorldOption {
	return func(w *World) {
		if n >= 1 {
			w.config.Workers = n
		}
	}
}

// WithWorldID overrides the world id used in log and metric tags.
func WithWorldID(id string) WorldOption {
	return func(w *World) {
		w.config.WorldID = id
	}
}

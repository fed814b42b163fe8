// Package worldstage tracks the lifecycle stage of a world. Registration of
// components and systems is only legal before the world starts running;
// stage transitions are compare-and-swap so misuse is detected, not raced.
package worldstage

import (
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // The default stage; registration is open
	Ready        Stage = "Ready"        // Schedules are built, registration is closed
	Running      Stage = "Running"      // Ticking has started
	ShuttingDown Stage = "ShuttingDown" // A shutdown was requested
	ShutDown     Stage = "ShutDown"     // The world has released its storage
)

type Manager struct {
	current *atomic.Value
}

func NewManager() *Manager {
	m := &Manager{
		current: &atomic.Value{},
	}
	m.Store(Init)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	return m.current.CompareAndSwap(oldStage, newStage)
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
}

func (m *Manager) Swap(newStage Stage) (oldStage Stage) {
	return m.current.Swap(newStage).(Stage)
}

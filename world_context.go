package helix

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helix-engine/helix/command"
	"github.com/helix-engine/helix/search"
	"github.com/helix-engine/helix/types"
)

// WorldContext is the view of the world a system executes against. A
// restricted context carries the access the system declared at registration;
// component and resource helpers check every touch against it and panic on a
// violation, since an undeclared access from a concurrently running system is
// a memory-safety bug, not a recoverable condition.
//
// A context with a nil access is unrestricted: world setup code, init
// systems and exclusive systems get one, and structural changes are legal on
// it directly.
type WorldContext struct {
	world   *World
	access  *search.FilteredAccess
	cmds    *command.Buffer
	logger  *zerolog.Logger
	system  string
	lastRun types.Tick
	thisRun types.Tick
}

// Logger returns the context logger, tagged with the system name when the
// context belongs to one.
func (ctx WorldContext) Logger() *zerolog.Logger {
	return ctx.logger
}

// CurrentTick returns the tick this schedule run executes under.
func (ctx WorldContext) CurrentTick() types.Tick {
	if ctx.access == nil {
		return ctx.world.CurrentTick()
	}
	return ctx.thisRun
}

// LastRunTick returns the tick of this system's previous completed run.
// Added and Changed filters compare against it.
func (ctx WorldContext) LastRunTick() types.Tick {
	return ctx.lastRun
}

// Commands returns the system's command buffer. Nil on unrestricted
// contexts, which mutate the world directly instead.
func (ctx WorldContext) Commands() *command.Buffer {
	return ctx.cmds
}

// IsLive reports whether the entity id refers to a live entity.
func (ctx WorldContext) IsLive(id types.EntityID) bool {
	return ctx.world.store.IsLive(id)
}

// NumLive returns the number of live entities in the world.
func (ctx WorldContext) NumLive() int {
	return ctx.world.store.NumLive()
}

func (ctx WorldContext) isRestricted() bool {
	return ctx.access != nil
}

func (ctx WorldContext) checkRead(cid types.ComponentID, name string) {
	if ctx.access == nil || ctx.access.CanRead(cid) {
		return
	}
	panic(fmt.Sprintf(
		"system %s read component %s without declaring access to it", ctx.system, name))
}

func (ctx WorldContext) checkWrite(cid types.ComponentID, name string) {
	if ctx.access == nil || ctx.access.CanWrite(cid) {
		return
	}
	panic(fmt.Sprintf(
		"system %s wrote component %s without declaring write access to it", ctx.system, name))
}

func (ctx WorldContext) checkReadResource(name string) {
	if ctx.access == nil || ctx.access.CanReadResource(name) {
		return
	}
	panic(fmt.Sprintf(
		"system %s read resource %s without declaring access to it", ctx.system, name))
}

func (ctx WorldContext) checkWriteResource(name string) {
	if ctx.access == nil || ctx.access.CanWriteResource(name) {
		return
	}
	panic(fmt.Sprintf(
		"system %s wrote resource %s without declaring write access to it", ctx.system, name))
}

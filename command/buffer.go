// Package command implements deferred structural world mutations. Systems
// run under read/write-restricted access and may not reshape storage
// directly; instead they queue commands that the executor drains at sync
// points, when it holds exclusive access to the world.
package command

import (
	"errors"

	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/types"
)

// Applier is the exclusive-access surface commands are drained into. The
// world implements it.
type Applier interface {
	CreateEntity(tick types.Tick, comps ...types.Component) (types.EntityID, error)
	InsertComponents(id types.EntityID, tick types.Tick, comps ...types.Component) error
	RemoveComponentByName(id types.EntityID, name string) error
	Despawn(id types.EntityID) error
	InsertResource(value any) error
}

type opKind int8

const (
	opSpawn opKind = iota
	opDespawn
	opInsert
	opRemove
	opInsertResource
)

func (k opKind) String() string {
	switch k {
	case opSpawn:
		return "spawn"
	case opDespawn:
		return "despawn"
	case opInsert:
		return "insert"
	case opRemove:
		return "remove"
	case opInsertResource:
		return "insert_resource"
	}
	return "unknown"
}

// record references entities and components by id and name only, so it stays
// valid however the world mutates between enqueue and apply.
type record struct {
	kind          opKind
	entity        types.EntityID
	components    []types.Component
	componentName string
	resource      any
}

// Buffer accumulates structural-change records during a system's execution
// window. A buffer is exclusively owned by the system that fills it until the
// executor drains it, so it needs no locking. Records are applied in enqueue
// order.
type Buffer struct {
	queue []record
}

// NewBuffer creates an empty command buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Len returns the number of queued commands.
func (b *Buffer) Len() int {
	return len(b.queue)
}

// Spawn queues the creation of an entity carrying the given components.
func (b *Buffer) Spawn(comps ...types.Component) {
	b.queue = append(b.queue, record{kind: opSpawn, components: comps})
}

// Despawn queues the removal of an entity.
func (b *Buffer) Despawn(id types.EntityID) {
	b.queue = append(b.queue, record{kind: opDespawn, entity: id})
}

// Insert queues the insertion (or overwrite) of components on an entity.
func (b *Buffer) Insert(id types.EntityID, comps ...types.Component) {
	b.queue = append(b.queue, record{kind: opInsert, entity: id, components: comps})
}

// Remove queues the removal of the component with the same name as comp from
// an entity.
func (b *Buffer) Remove(id types.EntityID, comp types.Component) {
	b.queue = append(b.queue, record{kind: opRemove, entity: id, componentName: comp.Name()})
}

// InsertResource queues the insertion of a world resource.
func (b *Buffer) InsertResource(value any) {
	b.queue = append(b.queue, record{kind: opInsertResource, resource: value})
}

// Apply drains the buffer into the applier in enqueue order. A failing
// command (say, a despawn of an already-dead entity) is reported but does not
// abort the rest of the batch; all failures are joined into the returned
// error. Applied commands are never rolled back.
func (b *Buffer) Apply(a Applier, tick types.Tick) error {
	var errs []error
	for _, rec := range b.queue {
		var err error
		switch rec.kind {
		case opSpawn:
			_, err = a.CreateEntity(tick, rec.components...)
		case opDespawn:
			err = a.Despawn(rec.entity)
		case opInsert:
			err = a.InsertComponents(rec.entity, tick, rec.components...)
		case opRemove:
			err = a.RemoveComponentByName(rec.entity, rec.componentName)
		case opInsertResource:
			err = a.InsertResource(rec.resource)
		}
		if err != nil {
			errs = append(errs, eris.Wrapf(err, "%s command failed", rec.kind))
		}
	}
	b.queue = b.queue[:0]
	return errors.Join(errs...)
}

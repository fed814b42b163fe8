package helix

import (
	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/types"
)

// Create creates a single entity with the given components. It requires an
// unrestricted context; systems queue ctx.Commands().Spawn(...) instead.
func Create(ctx WorldContext, comps ...types.Component) (types.EntityID, error) {
	if ctx.isRestricted() {
		return 0, eris.Wrap(ErrRestrictedContext, "create entity")
	}
	return ctx.world.CreateEntity(ctx.CurrentTick(), comps...)
}

// CreateMany creates num entities all carrying the given components.
func CreateMany(ctx WorldContext, num int, comps ...types.Component) ([]types.EntityID, error) {
	if ctx.isRestricted() {
		return nil, eris.Wrap(ErrRestrictedContext, "create entities")
	}
	ids := make([]types.EntityID, 0, num)
	for i := 0; i < num; i++ {
		id, err := ctx.world.CreateEntity(ctx.CurrentTick(), comps...)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Remove despawns the entity. It requires an unrestricted context; systems
// queue ctx.Commands().Despawn(id) instead.
func Remove(ctx WorldContext, id types.EntityID) error {
	if ctx.isRestricted() {
		return eris.Wrap(ErrRestrictedContext, "despawn entity")
	}
	return ctx.world.Despawn(id)
}

// AddComponentTo adds component type T (zero-valued) to the entity.
func AddComponentTo[T types.Component](ctx WorldContext, id types.EntityID) error {
	if ctx.isRestricted() {
		return eris.Wrap(ErrRestrictedContext, "add component")
	}
	var t T
	return ctx.world.InsertComponents(id, ctx.CurrentTick(), t)
}

// RemoveComponentFrom removes component type T from the entity.
func RemoveComponentFrom[T types.Component](ctx WorldContext, id types.EntityID) error {
	if ctx.isRestricted() {
		var t T
		return eris.Wrapf(ErrRestrictedContext, "remove component %s", t.Name())
	}
	var t T
	return ctx.world.RemoveComponentByName(id, t.Name())
}

// GetComponent returns a copy of component T on the entity. On a restricted
// context the component must be covered by a declared read or write.
func GetComponent[T types.Component](ctx WorldContext, id types.EntityID) (*T, error) {
	var t T
	meta, err := ctx.world.store.ComponentMetadataByName(t.Name())
	if err != nil {
		return nil, err
	}
	ctx.checkRead(meta.ID(), meta.Name())
	value, err := ctx.world.store.GetComponent(id, meta.ID())
	if err != nil {
		return nil, err
	}
	comp, ok := value.(T)
	if !ok {
		return nil, eris.Errorf("component %s has unexpected concrete type %T", meta.Name(), value)
	}
	return &comp, nil
}

// SetComponent overwrites component T on the entity and stamps it changed at
// the current tick. Requires declared write access on restricted contexts.
func SetComponent[T types.Component](ctx WorldContext, id types.EntityID, comp *T) error {
	var t T
	meta, err := ctx.world.store.ComponentMetadataByName(t.Name())
	if err != nil {
		return err
	}
	ctx.checkWrite(meta.ID(), meta.Name())
	if err := ctx.world.store.SetComponent(id, meta.ID(), *comp, ctx.CurrentTick()); err != nil {
		return err
	}
	ctx.logger.Debug().
		Str("entity_id", id.String()).
		Str("component_name", meta.Name()).
		Int("component_id", int(meta.ID())).
		Msg("component updated")
	return nil
}

// UpdateComponent reads component T, passes it through fn and writes the
// result back.
func UpdateComponent[T types.Component](ctx WorldContext, id types.EntityID, fn func(*T) *T) error {
	val, err := GetComponent[T](ctx, id)
	if err != nil {
		return err
	}
	return SetComponent(ctx, id, fn(val))
}

// HasComponent reports whether the entity currently carries component T.
func HasComponent[T types.Component](ctx WorldContext, id types.EntityID) (bool, error) {
	var t T
	meta, err := ctx.world.store.ComponentMetadataByName(t.Name())
	if err != nil {
		return false, err
	}
	return ctx.world.store.ContainsComponent(id, meta.ID())
}

// IsAdded reports whether component T was added to the entity since this
// system's previous run.
func IsAdded[T types.Component](ctx WorldContext, id types.EntityID) (bool, error) {
	ticks, err := componentTicks[T](ctx, id)
	if err != nil {
		return false, err
	}
	return ticks.IsAdded(ctx.LastRunTick(), ctx.CurrentTick()), nil
}

// IsChanged reports whether component T was added or mutated on the entity
// since this system's previous run.
func IsChanged[T types.Component](ctx WorldContext, id types.EntityID) (bool, error) {
	ticks, err := componentTicks[T](ctx, id)
	if err != nil {
		return false, err
	}
	return ticks.IsChanged(ctx.LastRunTick(), ctx.CurrentTick()), nil
}

func componentTicks[T types.Component](ctx WorldContext, id types.EntityID) (types.ComponentTicks, error) {
	var t T
	meta, err := ctx.world.store.ComponentMetadataByName(t.Name())
	if err != nil {
		return types.ComponentTicks{}, err
	}
	ctx.checkRead(meta.ID(), meta.Name())
	return ctx.world.store.GetComponentTicks(id, meta.ID())
}

// GetResourceFrom fetches the resource of type T through a context,
// enforcing declared resource access. The returned pointer aliases the live
// resource; only declare-write systems may mutate through it.
func GetResourceFrom[T any](ctx WorldContext) (*T, error) {
	ctx.checkReadResource(typeName[T]())
	return GetResource[T](ctx.world)
}

// MutateResourceFrom fetches the resource of type T for mutation, enforcing
// declared write access.
func MutateResourceFrom[T any](ctx WorldContext) (*T, error) {
	ctx.checkWriteResource(typeName[T]())
	return GetResource[T](ctx.world)
}

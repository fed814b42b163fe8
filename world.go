package helix

import (
	"os"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/helix-engine/helix/command"
	"github.com/helix-engine/helix/component"
	"github.com/helix-engine/helix/log"
	"github.com/helix-engine/helix/statsd"
	"github.com/helix-engine/helix/storage"
	"github.com/helix-engine/helix/types"
	"github.com/helix-engine/helix/worldstage"
)

// World owns the entity storage, the registered components, the resource
// singletons and the tick counters. Systems never touch a World directly;
// they go through the WorldContext handed to them by a Schedule, which
// enforces their declared access.
type World struct {
	id        uuid.UUID
	config    WorldConfig
	Logger    *zerolog.Logger
	stage     *worldstage.Manager
	store     *storage.Storage
	guard     *accessGuard
	resources map[string]any

	// tickMu protects the tick counters; only schedules advance them, and a
	// world runs at most one schedule at a time.
	tickMu        sync.Mutex
	tick          types.Tick
	lastCheckTick types.Tick

	nameMu      sync.Mutex
	systemNames []string
}

var (
	_ command.Applier = &World{}
	_ log.Loggable    = &World{}
)

// NewWorld creates a world from the environment config plus any options.
func NewWorld(opts ...WorldOption) (*World, error) {
	config := GetWorldConfig()
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid log level %q", config.LogLevel)
	}
	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("world_id", config.WorldID).
		Logger()

	w := &World{
		id:        uuid.New(),
		config:    config,
		Logger:    &logger,
		stage:     worldstage.NewManager(),
		store:     storage.NewStorage(),
		guard:     newAccessGuard(),
		resources: map[string]any{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.config.StatsdAddress != "" {
		if err := statsd.Init(w.config.StatsdAddress, statsdTags(w.config)); err != nil {
			w.Logger.Warn().Err(err).Msg("statsd init failed; metrics are disabled")
		}
	}
	return w, nil
}

// ID returns the unique id generated for this world instance.
func (w *World) ID() uuid.UUID {
	return w.id
}

// Stage returns the lifecycle stage manager of the world.
func (w *World) Stage() *worldstage.Manager {
	return w.stage
}

// CurrentTick returns the tick of the schedule run in progress, or of the
// last completed run if no schedule is running.
func (w *World) CurrentTick() types.Tick {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	return w.tick
}

// RegisterComponent registers the component type T on the world. It fails
// once the world is running.
func RegisterComponent[T types.Component](w *World, opts ...component.Option[T]) error {
	stage := w.stage.Current()
	if stage != worldstage.Init && stage != worldstage.Ready {
		return eris.Wrapf(ErrWorldRunning, "cannot register component in stage %s", stage)
	}
	meta, err := component.NewComponentMetadata[T](opts...)
	if err != nil {
		return err
	}
	cid, err := w.store.RegisterComponent(meta)
	if err != nil {
		return err
	}
	w.Logger.Debug().
		Str("component_name", meta.Name()).
		Int("component_id", int(cid)).
		Str("storage", meta.StorageFamily().String()).
		Msg("registered component")
	return nil
}

// Context returns an unrestricted context over the world. It is meant for
// setup and test code running outside any schedule; inside systems, use the
// context the schedule hands you.
func (w *World) Context() WorldContext {
	return WorldContext{
		world:   w,
		logger:  w.Logger,
		lastRun: 0,
	}
}

// Spawn creates an entity with the given components, stamped at the current
// tick. Direct structural access; illegal while a schedule wave is running.
func (w *World) Spawn(comps ...types.Component) (types.EntityID, error) {
	return w.CreateEntity(w.CurrentTick(), comps...)
}

// Insert adds (or overwrites) components on a live entity at the current
// tick.
func (w *World) Insert(id types.EntityID, comps ...types.Component) error {
	return w.InsertComponents(id, w.CurrentTick(), comps...)
}

// CreateEntity implements command.Applier.
func (w *World) CreateEntity(tick types.Tick, comps ...types.Component) (types.EntityID, error) {
	id, err := w.store.CreateEntity(tick, comps...)
	if err != nil {
		return id, err
	}
	if w.Logger.GetLevel() <= zerolog.DebugLevel {
		w.logEntity(id)
	}
	return id, nil
}

// InsertComponents implements command.Applier.
func (w *World) InsertComponents(id types.EntityID, tick types.Tick, comps ...types.Component) error {
	return w.store.InsertComponents(id, tick, comps...)
}

// RemoveComponentByName implements command.Applier.
func (w *World) RemoveComponentByName(id types.EntityID, name string) error {
	meta, err := w.store.ComponentMetadataByName(name)
	if err != nil {
		return err
	}
	_, err = w.store.RemoveComponent(id, meta.ID())
	return err
}

// Despawn implements command.Applier.
func (w *World) Despawn(id types.EntityID) error {
	return w.store.Despawn(id)
}

// InsertResource implements command.Applier. The value must be a pointer;
// inserting a resource of an already-present type replaces it.
func (w *World) InsertResource(value any) error {
	name, err := resourceName(value)
	if err != nil {
		return err
	}
	w.resources[name] = value
	return nil
}

// Store exposes the storage engine. Test helpers and profiling harnesses
// use it; systems should not.
func (w *World) Store() *storage.Storage {
	return w.store
}

// Shutdown transitions the world to ShutDown and drops its storage. Further
// use of the world fails.
func (w *World) Shutdown() {
	ok := w.stage.CompareAndSwap(worldstage.Running, worldstage.ShuttingDown) ||
		w.stage.CompareAndSwap(worldstage.Ready, worldstage.ShuttingDown) ||
		w.stage.CompareAndSwap(worldstage.Init, worldstage.ShuttingDown)
	if !ok {
		return
	}
	w.store = nil
	w.resources = nil
	w.stage.Store(worldstage.ShutDown)
	w.Logger.Info().Msg("world shut down")
}

// GetRegisteredComponents implements log.Loggable.
func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.store.RegisteredComponents()
}

// GetRegisteredSystems implements log.Loggable.
func (w *World) GetRegisteredSystems() []string {
	w.nameMu.Lock()
	defer w.nameMu.Unlock()
	names := make([]string, len(w.systemNames))
	copy(names, w.systemNames)
	return names
}

func (w *World) addSystemName(name string) {
	w.nameMu.Lock()
	defer w.nameMu.Unlock()
	w.systemNames = append(w.systemNames, name)
}

// advanceTick bumps the world tick for a new schedule run and reports
// whether the periodic change-tick maintenance ran at this boundary.
func (w *World) advanceTick() (types.Tick, bool) {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	w.tick++
	if w.tick.RelativeTo(w.lastCheckTick) < types.CheckTickThreshold {
		return w.tick, false
	}
	w.store.CheckTicks(w.tick)
	w.lastCheckTick = w.tick
	return w.tick, true
}

func (w *World) logEntity(id types.EntityID) {
	archID, _, err := w.store.Location(id)
	if err != nil {
		return
	}
	comps, err := w.store.ComponentsOnEntity(id)
	if err != nil {
		return
	}
	log.Entity(w.Logger, zerolog.DebugLevel, id, archID, comps)
}

// GetResource fetches the resource of type T from the world, outside any
// access discipline. Systems must use the WorldContext variant instead.
func GetResource[T any](w *World) (*T, error) {
	value, ok := w.resources[typeName[T]()]
	if !ok {
		return nil, eris.Wrapf(ErrResourceNotFound, "no resource of type %s", typeName[T]())
	}
	res, ok := value.(*T)
	if !ok {
		return nil, eris.Errorf("resource %s has unexpected type %T", typeName[T](), value)
	}
	return res, nil
}

func resourceName(value any) (string, error) {
	t := reflect.TypeOf(value)
	if t == nil || t.Kind() != reflect.Ptr {
		return "", eris.Wrapf(ErrResourceMustBePointer, "got %T", value)
	}
	return t.Elem().String(), nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

func statsdTags(config WorldConfig) []string {
	tags := []string{"world_id:" + config.WorldID}
	if config.StatsdTags != "" {
		tags = append(tags, config.StatsdTags)
	}
	return tags
}

package helix

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/command"
	"github.com/helix-engine/helix/worldstage"
)

// Policy selects how a schedule run reacts to a failing system.
type Policy int8

const (
	// SkipAndContinue logs the failure, keeps running the rest of the
	// schedule and reports all failures joined at the end of the run.
	SkipAndContinue Policy = iota
	// AbortOnError lets the in-flight wave finish, drains its command
	// buffers, then abandons the remaining waves.
	AbortOnError
)

// ScheduleOption configures a schedule at construction.
type ScheduleOption func(*Schedule)

// WithPolicy sets the error policy of the schedule.
func WithPolicy(p Policy) ScheduleOption {
	return func(s *Schedule) { s.policy = p }
}

// WithScheduleName names the schedule for logs and metrics.
func WithScheduleName(name string) ScheduleOption {
	return func(s *Schedule) { s.name = name }
}

type setConfig struct {
	before []string
	after  []string
}

// Schedule owns an ordered collection of systems and executes them against
// its world in waves: groups of systems whose declared accesses do not
// conflict and which have no ordering constraint between them. Registration
// reopens the schedule; the execution plan is rebuilt lazily on the next
// run.
//
// A Schedule is not safe for concurrent use, and a world must not run two
// schedules at once.
type Schedule struct {
	world  *World
	name   string
	policy Policy

	systems []*registeredSystem
	byName  map[string]int
	sets    map[string]*setConfig

	initSystems []*registeredSystem
	initDone    bool

	built bool
	waves [][]int
}

// NewSchedule creates an empty schedule bound to the world.
func NewSchedule(w *World, opts ...ScheduleOption) *Schedule {
	s := &Schedule{
		world:  w,
		name:   "main",
		policy: SkipAndContinue,
		byName: map[string]int{},
		sets:   map[string]*setConfig{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the schedule's name.
func (s *Schedule) Name() string {
	return s.name
}

// AddSystems registers systems with default options, named after their
// function symbols.
func (s *Schedule) AddSystems(fns ...System) error {
	for _, fn := range fns {
		if err := s.AddSystem(fn); err != nil {
			return err
		}
	}
	return nil
}

// AddSystem registers one system. The system's access terms are resolved
// against the registered components here, so components must be registered
// first.
func (s *Schedule) AddSystem(fn System, opts ...SystemOption) error {
	if s.world.stage.Current() == worldstage.ShutDown {
		return eris.Wrap(ErrWorldShutDown, "add system")
	}
	cfg := systemConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	name := cfg.name
	if name == "" {
		name = systemName(fn)
	}
	if _, ok := s.byName[name]; ok {
		return eris.Wrapf(ErrDuplicateSystem, "%q", name)
	}
	if _, ok := s.sets[name]; ok {
		return eris.Wrapf(ErrDuplicateSystem, "%q collides with a set name", name)
	}

	access, err := compileAccess(s.world.store, cfg.terms)
	if err != nil {
		return eris.Wrapf(err, "system %q", name)
	}
	if cfg.exclusive {
		access.SetExclusive()
	}

	s.byName[name] = len(s.systems)
	s.systems = append(s.systems, &registeredSystem{
		name:      name,
		fn:        fn,
		access:    access,
		runIf:     cfg.runIf,
		exclusive: cfg.exclusive,
		before:    cfg.before,
		after:     cfg.after,
		sets:      cfg.sets,
		buffer:    command.NewBuffer(),
	})
	s.built = false
	s.world.addSystemName(name)
	s.world.Logger.Debug().
		Str("schedule", s.name).
		Str("system", name).
		Bool("exclusive", cfg.exclusive).
		Msg("registered system")
	return nil
}

// AddInitSystems registers systems that run exactly once, sequentially and
// with exclusive access, before the first wave of the first run.
func (s *Schedule) AddInitSystems(fns ...System) error {
	if s.initDone {
		return eris.New("init systems already ran for this schedule")
	}
	for _, fn := range fns {
		name := systemName(fn)
		s.initSystems = append(s.initSystems, &registeredSystem{
			name:      name,
			fn:        fn,
			exclusive: true,
			buffer:    command.NewBuffer(),
		})
		s.world.addSystemName(name)
	}
	return nil
}

// ConfigureSet declares ordering constraints for a named set. Systems join
// a set with InSet; a constraint on the set applies to every member.
func (s *Schedule) ConfigureSet(name string, opts ...SystemOption) {
	cfg := systemConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	set, ok := s.sets[name]
	if !ok {
		set = &setConfig{}
		s.sets[name] = set
	}
	set.before = append(set.before, cfg.before...)
	set.after = append(set.after, cfg.after...)
	s.built = false
}

// Build compiles the execution plan: explicit constraint edges first, then a
// conflict edge for every still-unordered pair of systems whose accesses
// overlap, serialized in registration order. Systems are then layered into
// waves by longest path. Build is called lazily by Run whenever the system
// set changed.
func (s *Schedule) Build() error {
	n := len(s.systems)
	edges := make([]map[int]bool, n)
	for i := range edges {
		edges[i] = map[int]bool{}
	}
	addEdge := func(from, to int) {
		if from != to {
			edges[from][to] = true
		}
	}

	members := map[string][]int{}
	for i, sys := range s.systems {
		for _, set := range sys.sets {
			members[set] = append(members[set], i)
		}
	}
	// An ordering constraint may name a system or a set.
	expand := func(name string) ([]int, error) {
		if idx, ok := s.byName[name]; ok {
			return []int{idx}, nil
		}
		if _, ok := s.sets[name]; ok {
			return members[name], nil
		}
		if m, ok := members[name]; ok {
			return m, nil
		}
		return nil, eris.Wrapf(ErrUnknownSystem, "%q", name)
	}

	for i, sys := range s.systems {
		for _, name := range sys.before {
			targets, err := expand(name)
			if err != nil {
				return err
			}
			for _, t := range targets {
				addEdge(i, t)
			}
		}
		for _, name := range sys.after {
			targets, err := expand(name)
			if err != nil {
				return err
			}
			for _, t := range targets {
				addEdge(t, i)
			}
		}
	}
	for setName, cfg := range s.sets {
		for _, name := range cfg.before {
			targets, err := expand(name)
			if err != nil {
				return err
			}
			for _, m := range members[setName] {
				for _, t := range targets {
					addEdge(m, t)
				}
			}
		}
		for _, name := range cfg.after {
			targets, err := expand(name)
			if err != nil {
				return err
			}
			for _, m := range members[setName] {
				for _, t := range targets {
					addEdge(t, m)
				}
			}
		}
	}

	order, err := s.topoSort(edges)
	if err != nil {
		return err
	}

	// reach[i][j]: j runs after i on some constraint path.
	reach := make([][]bool, n)
	for i := range reach {
		reach[i] = make([]bool, n)
	}
	for k := n - 1; k >= 0; k-- {
		i := order[k]
		for j := range edges[i] {
			reach[i][j] = true
			for l := 0; l < n; l++ {
				if reach[j][l] {
					reach[i][l] = true
				}
			}
		}
	}
	connect := func(from, to int) {
		addEdge(from, to)
		for a := 0; a < n; a++ {
			if a != from && !reach[a][from] {
				continue
			}
			for b := 0; b < n; b++ {
				if b == to || reach[to][b] {
					reach[a][b] = true
				}
			}
		}
	}

	// Conflicting pairs the constraints leave unordered get serialized in
	// registration order, which keeps the plan deterministic.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if reach[i][j] || reach[j][i] {
				continue
			}
			if s.systems[i].access.ConflictsWith(s.systems[j].access) {
				connect(i, j)
			}
		}
	}

	order, err = s.topoSort(edges)
	if err != nil {
		return err
	}
	level := make([]int, n)
	maxLevel := 0
	for _, i := range order {
		for j := range edges[i] {
			if level[i]+1 > level[j] {
				level[j] = level[i] + 1
			}
		}
	}
	for _, l := range level {
		if l > maxLevel {
			maxLevel = l
		}
	}
	s.waves = make([][]int, maxLevel+1)
	if n == 0 {
		s.waves = nil
	}
	for i := 0; i < n; i++ {
		s.waves[level[i]] = append(s.waves[level[i]], i)
	}
	for _, wave := range s.waves {
		sort.Ints(wave)
	}

	s.built = true
	s.world.stage.CompareAndSwap(worldstage.Init, worldstage.Ready)
	s.world.Logger.Debug().
		Str("schedule", s.name).
		Int("systems", n).
		Int("waves", len(s.waves)).
		Msg("built schedule")
	return nil
}

// topoSort returns a topological order of the systems or an ErrScheduleCycle
// naming the systems stuck on the cycle.
func (s *Schedule) topoSort(edges []map[int]bool) ([]int, error) {
	n := len(s.systems)
	indegree := make([]int, n)
	for i := range edges {
		for j := range edges[i] {
			indegree[j]++
		}
	}
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for j := range edges[i] {
			indegree[j]--
			if indegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	if len(order) < n {
		var stuck []string
		for i := 0; i < n; i++ {
			if indegree[i] > 0 {
				stuck = append(stuck, s.systems[i].name)
			}
		}
		return nil, eris.Wrapf(ErrScheduleCycle, "involving systems [%s]", strings.Join(stuck, ", "))
	}
	return order, nil
}

// Waves exposes the planned wave layout as system names, for tests and
// debugging.
func (s *Schedule) Waves() [][]string {
	waves := make([][]string, len(s.waves))
	for i, wave := range s.waves {
		for _, idx := range wave {
			waves[i] = append(waves[i], s.systems[idx].name)
		}
	}
	return waves
}

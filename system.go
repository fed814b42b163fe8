package helix

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/helix-engine/helix/command"
	"github.com/helix-engine/helix/search"
	"github.com/helix-engine/helix/types"
)

// System is a unit of game logic. It runs against the context a schedule
// hands it, under the access it declared at registration.
type System func(ctx WorldContext) error

// ConditionFn gates whether a system runs at a particular schedule run. It
// is evaluated with an unrestricted read context immediately before
// dispatch; a skipped system keeps its previous LastRunTick.
type ConditionFn func(ctx WorldContext) bool

// SystemOption configures a system at registration.
type SystemOption func(*systemConfig)

type systemConfig struct {
	name      string
	terms     []QueryTerm
	before    []string
	after     []string
	sets      []string
	runIf     ConditionFn
	exclusive bool
}

// WithSystemName overrides the name derived from the function symbol.
// Ordering constraints refer to systems by name.
func WithSystemName(name string) SystemOption {
	return func(c *systemConfig) { c.name = name }
}

// WithAccess declares the components and resources the system touches.
// Undeclared touches at runtime panic.
func WithAccess(terms ...QueryTerm) SystemOption {
	return func(c *systemConfig) { c.terms = append(c.terms, terms...) }
}

// RunBefore orders the system before the named system or set.
func RunBefore(names ...string) SystemOption {
	return func(c *systemConfig) { c.before = append(c.before, names...) }
}

// RunAfter orders the system after the named system or set.
func RunAfter(names ...string) SystemOption {
	return func(c *systemConfig) { c.after = append(c.after, names...) }
}

// InSet places the system in a named set, inheriting the set's ordering
// constraints.
func InSet(names ...string) SystemOption {
	return func(c *systemConfig) { c.sets = append(c.sets, names...) }
}

// RunIf attaches a run condition to the system.
func RunIf(cond ConditionFn) SystemOption {
	return func(c *systemConfig) { c.runIf = cond }
}

// AsExclusive gives the system exclusive world access. It runs alone, on an
// unrestricted context, and may mutate structure directly.
func AsExclusive() SystemOption {
	return func(c *systemConfig) { c.exclusive = true }
}

// registeredSystem is the schedule-side record of a system: its executable,
// its compiled access, its ordering constraints and its per-system state
// (last-run tick and command buffer).
type registeredSystem struct {
	name      string
	fn        System
	access    *search.FilteredAccess
	runIf     ConditionFn
	exclusive bool
	before    []string
	after     []string
	sets      []string

	// lastRun is written only by the goroutine executing the system and read
	// only between waves; the wave barrier orders the accesses.
	lastRun types.Tick
	buffer  *command.Buffer
}

// systemName extracts a stable short name from the function symbol, e.g.
// "MoveSystem" out of "github.com/acme/game/sys.MoveSystem".
func systemName(fn System) string {
	full := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	name := full[strings.LastIndexByte(full, '.')+1:]
	return strings.TrimSuffix(name, "-fm")
}

package types

// Tick is a wrapping logical clock value. The world advances it once per
// schedule run and every component slot is stamped with the tick of its last
// insertion and its last mutation.
type Tick uint32

const (
	// CheckTickThreshold is the maximum number of ticks that may elapse
	// between scans that clamp stored ticks. At a (very generous) 6000 ticks
	// per second this is roughly one day of uptime.
	CheckTickThreshold Tick = 518_400_000

	// MaxChangeAge is the oldest age a stored tick is allowed to reach. As
	// long as a clamping scan runs at least once every CheckTickThreshold
	// ticks, the relative age of a stored tick never overflows the uint32
	// half-period and the "newer than" comparison below stays correct across
	// wraparound.
	MaxChangeAge = ^Tick(0) - (2*CheckTickThreshold - 1)
)

// RelativeTo returns the wrapping distance from other to t.
func (t Tick) RelativeTo(other Tick) Tick {
	return Tick(uint32(t) - uint32(other))
}

// IsNewerThan reports whether t occurred after lastRun. thisRun is the
// current world tick, used as the reference point so the comparison works
// across wraparound: both distances are measured from thisRun, which is never
// older than either operand, and stored ticks are clamped to MaxChangeAge so
// neither distance can overflow.
func (t Tick) IsNewerThan(lastRun Tick, thisRun Tick) bool {
	sinceChange := min(thisRun.RelativeTo(t), MaxChangeAge)
	sinceSystem := min(thisRun.RelativeTo(lastRun), MaxChangeAge)
	return sinceSystem > sinceChange
}

// CheckTick clamps t so its age relative to current never exceeds
// MaxChangeAge. It reports whether clamping happened.
func (t *Tick) CheckTick(current Tick) bool {
	if current.RelativeTo(*t) > MaxChangeAge {
		*t = current.RelativeTo(MaxChangeAge)
		return true
	}
	return false
}

// ComponentTicks holds the change-detection stamps for a single component
// slot: Added is written once on insertion, Changed on insertion and on every
// mutable access.
type ComponentTicks struct {
	Added   Tick
	Changed Tick
}

// NewComponentTicks returns stamps for a component inserted at tick t.
func NewComponentTicks(t Tick) ComponentTicks {
	return ComponentTicks{Added: t, Changed: t}
}

// IsAdded reports whether the component was inserted after lastRun.
func (c ComponentTicks) IsAdded(lastRun Tick, thisRun Tick) bool {
	return c.Added.IsNewerThan(lastRun, thisRun)
}

// IsChanged reports whether the component was mutated (or inserted) after
// lastRun.
func (c ComponentTicks) IsChanged(lastRun Tick, thisRun Tick) bool {
	return c.Changed.IsNewerThan(lastRun, thisRun)
}

// CheckTicks clamps both stamps against the current tick.
func (c *ComponentTicks) CheckTicks(current Tick) {
	c.Added.CheckTick(current)
	c.Changed.CheckTick(current)
}

// Package motion provides frame-driven animated values.
//
// A Scheduler owns a set of Clocks and delayed callbacks. It does not run a
// goroutine: the UI loop calls Advance with the current frame time and every
// clock completion and timer due in that window fires, in time order, on the
// caller's goroutine. Because events are replayed at their exact times, a
// clock's value at a given instant does not depend on the frame rate.
//
// Goroutine safety: none. A Scheduler belongs to exactly one bubbletea model
// and is only touched from Update.
package motion

import (
	"time"

	"github.com/charmbracelet/harmonica"
)

// DefaultFPS is the frame rate used for sampling and spring integration.
const DefaultFPS = 60

// SpringConfig parameterizes the spring driver (see Clock.Spring).
type SpringConfig struct {
	Frequency float64 // angular frequency; higher settles faster
	Damping   float64 // damping ratio; 1 = critically damped
}

// DefaultSpring settles an elevation-sized change in roughly 200ms with a
// slight overshoot.
var DefaultSpring = SpringConfig{Frequency: 14.0, Damping: 0.85}

// settleEpsilon is the distance and speed under which a spring is at rest.
const settleEpsilon = 0.01

// Scheduler drives Clocks and Timers from explicit frame times.
type Scheduler struct {
	now      time.Time
	clocks   []*Clock
	timers   []*Timer
	spring   SpringConfig
	disposed bool
}

// NewScheduler creates a scheduler whose clock starts at now.
func NewScheduler(now time.Time) *Scheduler {
	return &Scheduler{now: now, spring: DefaultSpring}
}

// SetSpring replaces the spring parameters used by subsequent Clock.Spring calls.
func (s *Scheduler) SetSpring(cfg SpringConfig) {
	s.spring = cfg
}

// Now returns the time of the most recently processed frame or event.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// NewClock registers a clock with the given initial value.
func (s *Scheduler) NewClock(name string, initial float64) *Clock {
	c := &Clock{s: s, name: name, value: initial}
	if !s.disposed {
		s.clocks = append(s.clocks, c)
	}
	return c
}

// After schedules fn to run d after the scheduler's current time. The
// returned Timer can be cancelled. After on a disposed scheduler returns a
// Timer that never fires.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	t := &Timer{due: s.now.Add(d), fn: fn}
	if s.disposed {
		t.done = true
		return t
	}
	s.timers = append(s.timers, t)
	return t
}

// Busy reports whether any clock is animating or any timer is pending.
// The UI loop keeps requesting frames while Busy is true.
func (s *Scheduler) Busy() bool {
	if s.disposed {
		return false
	}
	for _, c := range s.clocks {
		if c.mode != driverNone {
			return true
		}
	}
	for _, t := range s.timers {
		if !t.done {
			return true
		}
	}
	return false
}

// Dispose cancels every clock driver and pending timer. No completion
// callback or timer registered before Dispose will ever run, and later
// Animate/After calls are inert.
func (s *Scheduler) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for _, c := range s.clocks {
		c.cancel()
	}
	for _, t := range s.timers {
		t.done = true
		t.fn = nil
	}
	s.clocks = nil
	s.timers = nil
}

// Advance moves the scheduler to time to, firing every clock completion and
// timer due on the way in chronological order. Times earlier than Now are
// ignored.
func (s *Scheduler) Advance(to time.Time) {
	if s.disposed || to.Before(s.now) {
		return
	}
	for !s.disposed {
		at, ok := s.nextEvent(to)
		if !ok {
			break
		}
		s.sample(at)
		s.now = at
		s.fireDue(at)
	}
	if s.disposed {
		return
	}
	s.sample(to)
	s.now = to
	s.settleSprings()
	s.compact()
}

// nextEvent returns the earliest tween end or timer due time not after to.
func (s *Scheduler) nextEvent(to time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	consider := func(t time.Time) {
		if t.After(to) {
			return
		}
		if !found || t.Before(next) {
			next = t
			found = true
		}
	}
	for _, c := range s.clocks {
		if c.mode == driverTween {
			consider(c.start.Add(c.dur))
		}
	}
	for _, t := range s.timers {
		if !t.done {
			consider(t.due)
		}
	}
	return next, found
}

// fireDue runs tween completions first, then timers, for everything due at or
// before at. Callbacks may register new clocks, timers, or animations.
func (s *Scheduler) fireDue(at time.Time) {
	clocks := append([]*Clock(nil), s.clocks...)
	for _, c := range clocks {
		if s.disposed {
			return
		}
		if c.mode != driverTween || c.start.Add(c.dur).After(at) {
			continue
		}
		c.value = c.to
		c.finish()
	}

	timers := append([]*Timer(nil), s.timers...)
	for _, t := range timers {
		if s.disposed {
			return
		}
		if t.done || t.due.After(at) {
			continue
		}
		t.done = true
		fn := t.fn
		t.fn = nil
		if fn != nil {
			fn()
		}
	}
}

// sample updates every driven clock's value for time t.
func (s *Scheduler) sample(t time.Time) {
	for _, c := range s.clocks {
		switch c.mode {
		case driverTween:
			c.value = c.tweenValue(t)
		case driverSpring:
			c.stepSpring(t)
		}
	}
}

// settleSprings completes springs that have come to rest.
func (s *Scheduler) settleSprings() {
	clocks := append([]*Clock(nil), s.clocks...)
	for _, c := range clocks {
		if s.disposed {
			return
		}
		if c.mode != driverSpring {
			continue
		}
		if abs(c.value-c.to) < settleEpsilon && abs(c.velocity) < settleEpsilon {
			c.value = c.to
			c.velocity = 0
			c.finish()
		}
	}
}

// compact drops finished timers.
func (s *Scheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
}

// Timer is a delayed callback registered with Scheduler.After.
type Timer struct {
	due  time.Time
	fn   func()
	done bool
}

// Cancel prevents the timer from firing. Safe to call more than once.
func (t *Timer) Cancel() {
	if t == nil {
		return
	}
	t.done = true
	t.fn = nil
}

// Pending reports whether the timer has neither fired nor been cancelled.
func (t *Timer) Pending() bool {
	return t != nil && !t.done
}

// newSpring builds the harmonica integrator for the scheduler's config.
func (s *Scheduler) newSpring() harmonica.Spring {
	return harmonica.NewSpring(harmonica.FPS(DefaultFPS), s.spring.Frequency, s.spring.Damping)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

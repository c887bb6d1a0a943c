package motion

import (
	"time"

	"github.com/charmbracelet/harmonica"
)

type driverMode int

const (
	driverNone driverMode = iota
	driverTween
	driverSpring
)

// springStep is the fixed integration step of the spring driver.
const springStep = time.Second / DefaultFPS

// Clock is a single animated scalar. At most one driver (tween or spring)
// moves it at a time; starting a new one replaces the old driver and drops
// its completion callback.
type Clock struct {
	s     *Scheduler
	name  string
	value float64

	mode       driverMode
	from, to   float64
	start      time.Time
	dur        time.Duration
	easing     Easing
	onComplete func()

	spring   harmonica.Spring
	velocity float64
	lastStep time.Time
}

// Name returns the label given at creation (used in event logs).
func (c *Clock) Name() string { return c.name }

// Read returns the current value. It never allocates or blocks.
func (c *Clock) Read() float64 { return c.value }

// Target returns the value the active driver is heading to, or the current
// value when idle.
func (c *Clock) Target() float64 {
	if c.mode == driverNone {
		return c.value
	}
	return c.to
}

// Active reports whether a driver is currently moving the clock.
func (c *Clock) Active() bool { return c.mode != driverNone }

// Animate tweens the clock from its current value to `to` over d using
// easing, starting at the scheduler's current time. onComplete runs exactly
// once when the value reaches `to`; it does not run if the tween is replaced,
// stopped, or the scheduler is disposed. A non-positive d jumps immediately.
func (c *Clock) Animate(to float64, d time.Duration, easing Easing, onComplete func()) {
	if c.s.disposed {
		return
	}
	c.cancel()
	if d <= 0 {
		c.value = to
		if onComplete != nil {
			onComplete()
		}
		return
	}
	if easing == nil {
		easing = Linear
	}
	c.mode = driverTween
	c.from = c.value
	c.to = to
	c.start = c.s.now
	c.dur = d
	c.easing = easing
	c.onComplete = onComplete
}

// Spring moves the clock toward `to` with the scheduler's spring physics.
// onComplete runs once the spring is at rest on a frame boundary.
func (c *Clock) Spring(to float64, onComplete func()) {
	if c.s.disposed {
		return
	}
	c.cancel()
	c.mode = driverSpring
	c.to = to
	c.velocity = 0
	c.spring = c.s.newSpring()
	c.lastStep = c.s.now
	c.onComplete = onComplete
}

// Set stops any driver and jumps to v without a completion callback.
func (c *Clock) Set(v float64) {
	c.cancel()
	c.value = v
}

// Stop freezes the clock at its current value without a completion callback.
func (c *Clock) Stop() {
	c.cancel()
}

func (c *Clock) cancel() {
	c.mode = driverNone
	c.onComplete = nil
	c.easing = nil
	c.velocity = 0
}

// finish ends the driver and runs its callback.
func (c *Clock) finish() {
	cb := c.onComplete
	c.mode = driverNone
	c.onComplete = nil
	c.easing = nil
	if cb != nil {
		cb()
	}
}

func (c *Clock) tweenValue(t time.Time) float64 {
	elapsed := t.Sub(c.start)
	if elapsed <= 0 {
		return c.from
	}
	p := float64(elapsed) / float64(c.dur)
	if p >= 1 {
		return c.to
	}
	return c.from + (c.to-c.from)*c.easing(p)
}

func (c *Clock) stepSpring(t time.Time) {
	for !c.lastStep.Add(springStep).After(t) {
		c.value, c.velocity = c.spring.Update(c.value, c.velocity, c.to)
		c.lastStep = c.lastStep.Add(springStep)
	}
}

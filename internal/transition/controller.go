package transition

import (
	"errors"
	"fmt"

	"github.com/abelbrown/spotlight/internal/motion"
	"github.com/abelbrown/spotlight/internal/nav"
)

// Controller is the phase machine of one detail screen. It intercepts back
// intents, plays the reverse sequence, and raises the pop signal exactly
// once when the screen may leave. The pop signal has one writer (the
// Controller) and one reader (ConsumePop, called by the host's navigation
// observer).
type Controller struct {
	sched *motion.Scheduler
	seq   *Sequencer

	phase      Phase
	morph      bool
	goingBack  bool
	backQueued bool
	popSignal  bool
	popRaised  bool
	disposed   bool
	release    func()

	onPhase func(from, to Phase)
}

// Option configures a Controller.
type Option func(*Controller)

// WithPhaseHook registers fn to observe every phase change.
func WithPhaseHook(fn func(from, to Phase)) Option {
	return func(c *Controller) { c.onPhase = fn }
}

// NewController creates a controller in Idle with its own clocks on s.
func NewController(s *motion.Scheduler, t Timings, opts ...Option) *Controller {
	c := &Controller{
		sched: s,
		seq:   NewSequencer(s, NewClocks(s), t),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Clocks returns the clocks to render from.
func (c *Controller) Clocks() Clocks { return c.seq.Clocks() }

// HasMorph reports whether the forward sequence ran from a snapshot.
func (c *Controller) HasMorph() bool { return c.morph }

// Arm installs the before-leave interceptor on n. Call it while the
// controller's screen is on top of the stack.
func (c *Controller) Arm(n nav.Navigator) {
	if c.disposed || c.release != nil {
		return
	}
	c.release = n.OnBeforeLeave(c.intercept)
}

// Begin starts the forward sequence once the entity is loaded. With a
// snapshot the phase is Expanding until the content reveal completes;
// without one it is Expanded at once.
func (c *Controller) Begin(hasSnapshot bool) {
	if c.disposed || c.phase != Idle {
		return
	}
	c.morph = hasSnapshot
	if !hasSnapshot {
		c.setPhase(Expanded)
		c.seq.Reveal(nil)
		return
	}
	c.setPhase(Expanding)
	c.seq.Expand(c.expanded)
}

// Fail ends the screen from Idle after a failed or empty fetch. Nothing is
// animated and the interception is dropped, so a manual back leaves
// directly.
func (c *Controller) Fail() {
	if c.disposed || c.phase != Idle {
		return
	}
	c.setPhase(Gone)
	c.releaseInterception()
}

// RequestBack asks the screen to leave. It reports whether the request did
// anything: started the collapse, queued it behind Expanding, or ended an
// unloaded screen. Requests while Collapsing or Gone are no-ops.
func (c *Controller) RequestBack(src BackSource) bool {
	if c.disposed {
		return false
	}
	switch c.phase {
	case Idle:
		c.setPhase(Gone)
		c.releaseInterception()
		c.raisePop()
		return true
	case Expanding:
		if c.backQueued {
			return false
		}
		c.backQueued = true
		return true
	case Expanded:
		c.collapse()
		return true
	default:
		return false
	}
}

// HoldElevation drops the shadow while a state change waits for
// confirmation. ReleaseElevation restores it if the change is cancelled.
func (c *Controller) HoldElevation() {
	if c.disposed || c.phase != Expanded {
		return
	}
	c.seq.Lower()
}

// ReleaseElevation springs the shadow back after HoldElevation.
func (c *Controller) ReleaseElevation() {
	if c.disposed || c.phase != Expanded {
		return
	}
	c.seq.Raise()
}

// ConsumePop reports, once, that the screen should be popped now.
func (c *Controller) ConsumePop() bool {
	if !c.popSignal {
		return false
	}
	c.popSignal = false
	return true
}

// Dispose tears the controller down with its screen: every clock and timer
// is cancelled, no callback fires afterwards, and the interception is
// released. Safe to call more than once.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.popSignal = false
	c.sched.Dispose()
	c.releaseInterception()
}

// Disposed reports whether Dispose ran.
func (c *Controller) Disposed() bool { return c.disposed }

func (c *Controller) intercept(req nav.LeaveRequest) bool {
	switch c.phase {
	case Idle:
		// Nothing on screen to reverse yet: let the stack remove it.
		c.setPhase(Gone)
		c.releaseInterception()
		return false
	case Gone:
		return false
	}
	src := BackNative
	if req.Reason == nav.LeavePop {
		src = BackAffordance
	}
	c.RequestBack(src)
	return true
}

func (c *Controller) expanded() {
	c.setPhase(Expanded)
	if c.backQueued {
		c.backQueued = false
		c.collapse()
	}
}

func (c *Controller) collapse() {
	if c.goingBack {
		return
	}
	c.goingBack = true
	c.setPhase(Collapsing)
	c.seq.Collapse(c.morph, c.gone)
}

func (c *Controller) gone() {
	c.setPhase(Gone)
	c.releaseInterception()
	c.raisePop()
}

func (c *Controller) raisePop() {
	if c.popRaised {
		return
	}
	c.popRaised = true
	c.popSignal = true
}

func (c *Controller) releaseInterception() {
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

func (c *Controller) setPhase(p Phase) {
	if p == c.phase {
		return
	}
	from := c.phase
	c.phase = p
	if c.onPhase != nil {
		c.onPhase(from, p)
	}
}

// ErrPopFailed is returned by Pop when neither pop attempt removed the
// screen.
var ErrPopFailed = errors.New("transition: pop failed")

// Pop performs the navigation pop for a consumed pop signal: a regular Pop
// first, then one ForcePop if that fails. If both fail the screen stays
// (inert) and the joined error is returned for logging.
func Pop(n nav.Navigator) error {
	err := n.Pop()
	if err == nil {
		return nil
	}
	if ferr := n.ForcePop(); ferr != nil {
		return fmt.Errorf("%w: %w", ErrPopFailed, errors.Join(err, ferr))
	}
	return nil
}

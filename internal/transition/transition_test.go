package transition

import (
	"errors"
	"testing"
	"time"

	"github.com/abelbrown/spotlight/internal/motion"
	"github.com/abelbrown/spotlight/internal/nav"
)

var t0 = time.Date(2025, 1, 26, 9, 0, 0, 0, time.UTC)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

const frame = 16 * time.Millisecond

// countingNav is the real stack with Pop calls counted.
type countingNav struct {
	*nav.Stack[string]
	pops int
}

func (c *countingNav) Pop() error {
	c.pops++
	return c.Stack.Pop()
}

// harness plays the host: it advances the scheduler frame by frame and acts
// on the pop signal after every frame, as the detail screen does.
type harness struct {
	t       *testing.T
	now     time.Time
	sched   *motion.Scheduler
	ctrl    *Controller
	stack   *nav.Stack[string]
	nav     *countingNav
	removed int
	phases  []Phase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, now: t0}
	h.sched = motion.NewScheduler(t0)
	h.ctrl = NewController(h.sched, DefaultTimings, WithPhaseHook(func(_, to Phase) {
		h.phases = append(h.phases, to)
	}))
	h.stack = nav.NewStack(nav.Route{Name: nav.RouteTimeline}, "timeline", func(nav.Route, string) {
		h.removed++
	})
	h.stack.Push(nav.Route{Name: nav.RouteDetail}, "detail")
	h.nav = &countingNav{Stack: h.stack}
	h.ctrl.Arm(h.nav)
	return h
}

// runTo advances in frame steps until t0+d.
func (h *harness) runTo(d time.Duration) {
	target := t0.Add(d)
	for h.now.Before(target) {
		h.now = h.now.Add(frame)
		if h.now.After(target) {
			h.now = target
		}
		h.sched.Advance(h.now)
		if h.ctrl.ConsumePop() {
			if err := Pop(h.nav); err != nil {
				h.t.Fatalf("Pop: %v", err)
			}
		}
	}
}

func (h *harness) expanded(t *testing.T) {
	t.Helper()
	h.ctrl.Begin(true)
	h.runTo(ms(2500))
	if h.ctrl.Phase() != Expanded {
		t.Fatalf("phase = %v, want expanded", h.ctrl.Phase())
	}
}

func TestForwardSequenceWithSnapshot(t *testing.T) {
	h := newHarness(t)
	c := h.ctrl.Clocks()

	h.ctrl.Begin(true)
	if h.ctrl.Phase() != Expanding {
		t.Fatalf("phase = %v, want expanding", h.ctrl.Phase())
	}
	if c.Morph.Read() != 0 || !c.Morph.Active() || c.Morph.Target() != 1 {
		t.Fatalf("morph should start at 0 heading to 1")
	}

	h.runTo(ms(599))
	if c.Content.Active() || c.Content.Read() != 0 {
		t.Errorf("content started before 600ms")
	}

	h.runTo(ms(600))
	if !c.Content.Active() {
		t.Errorf("content not started at 600ms")
	}

	h.runTo(ms(700))
	if c.Morph.Read() != 1 || c.Morph.Active() {
		t.Errorf("morph = %v at 700ms, want 1 and idle", c.Morph.Read())
	}

	h.runTo(ms(999))
	if c.Elevation.Active() || c.Elevation.Read() != 0 {
		t.Errorf("elevation moved before content completed")
	}
	if h.ctrl.Phase() != Expanding {
		t.Errorf("phase = %v at 999ms, want expanding", h.ctrl.Phase())
	}

	h.runTo(ms(1000))
	if c.Content.Read() != 1 {
		t.Errorf("content = %v at 1000ms, want 1", c.Content.Read())
	}
	if h.ctrl.Phase() != Expanded {
		t.Errorf("phase = %v at 1000ms, want expanded", h.ctrl.Phase())
	}
	if !c.Elevation.Active() {
		t.Errorf("elevation ramp did not start at content completion")
	}

	h.runTo(ms(1100))
	if c.Elevation.Read() <= 0 {
		t.Errorf("elevation = %v at 1100ms, want rising", c.Elevation.Read())
	}

	h.runTo(ms(3000))
	if c.Elevation.Read() != DefaultTimings.RestingElevation {
		t.Errorf("elevation settled at %v, want %v", c.Elevation.Read(), DefaultTimings.RestingElevation)
	}
}

func TestForwardSequenceWithoutSnapshot(t *testing.T) {
	h := newHarness(t)
	c := h.ctrl.Clocks()

	h.ctrl.Begin(false)
	if h.ctrl.Phase() != Expanded {
		t.Fatalf("phase = %v, want expanded at once", h.ctrl.Phase())
	}
	if h.ctrl.HasMorph() || c.Morph.Active() {
		t.Fatal("no morph should run without a snapshot")
	}

	h.runTo(ms(199))
	if c.Content.Read() >= 1 {
		t.Errorf("content finished early: %v", c.Content.Read())
	}
	h.runTo(ms(200))
	if c.Content.Read() != 1 {
		t.Errorf("content = %v at 200ms, want 1", c.Content.Read())
	}
	if !c.Elevation.Active() {
		t.Error("elevation should ramp after the direct reveal")
	}
	if c.Morph.Read() != 0 {
		t.Errorf("morph moved: %v", c.Morph.Read())
	}
}

func TestBackCollapsesThenPops(t *testing.T) {
	h := newHarness(t)
	h.expanded(t)
	c := h.ctrl.Clocks()
	tb := ms(2500)

	if h.stack.Back() {
		t.Fatal("native back should be intercepted")
	}
	if h.ctrl.Phase() != Collapsing {
		t.Fatalf("phase = %v, want collapsing", h.ctrl.Phase())
	}
	if c.Elevation.Read() != 0 || c.Elevation.Active() {
		t.Errorf("elevation = %v, want 0 immediately", c.Elevation.Read())
	}
	if !c.Fade.Active() || c.Fade.Target() != 0 {
		t.Error("content fade-out should begin immediately")
	}
	if !c.Content.Active() || c.Content.Target() != 0 {
		t.Error("content collapse should begin immediately")
	}
	if c.Morph.Active() {
		t.Error("morph reverse started without the stagger")
	}

	h.runTo(tb + ms(99))
	if c.Morph.Active() || c.Morph.Read() != 1 {
		t.Errorf("morph reversing before the stagger: %v", c.Morph.Read())
	}
	h.runTo(tb + ms(100))
	if !c.Morph.Active() || c.Morph.Target() != 0 {
		t.Error("morph reverse should start 100ms after the fade")
	}

	h.runTo(tb + ms(799))
	if h.nav.pops != 0 || h.removed != 0 {
		t.Fatalf("popped before the morph reached 0 (morph=%v)", c.Morph.Read())
	}
	h.runTo(tb + ms(800))
	if c.Morph.Read() != 0 {
		t.Errorf("morph = %v, want 0", c.Morph.Read())
	}
	if h.ctrl.Phase() != Gone {
		t.Errorf("phase = %v, want gone", h.ctrl.Phase())
	}
	if h.nav.pops != 1 || h.removed != 1 {
		t.Errorf("pops=%d removed=%d, want 1 and 1", h.nav.pops, h.removed)
	}

	want := []Phase{Expanding, Expanded, Collapsing, Gone}
	if len(h.phases) != len(want) {
		t.Fatalf("phases = %v, want %v", h.phases, want)
	}
	for i := range want {
		if h.phases[i] != want[i] {
			t.Fatalf("phases = %v, want %v", h.phases, want)
		}
	}
}

func TestDoubleBackPopsOnce(t *testing.T) {
	h := newHarness(t)
	h.expanded(t)

	h.stack.Back()
	if h.ctrl.RequestBack(BackAffordance) {
		t.Error("second back request should be a no-op")
	}
	h.stack.Back()
	h.runTo(ms(5000))

	if h.nav.pops != 1 {
		t.Errorf("pop calls = %d, want 1", h.nav.pops)
	}
	if h.removed != 1 {
		t.Errorf("removed = %d, want 1", h.removed)
	}
	if h.stack.Depth() != 1 {
		t.Errorf("depth = %d, want 1", h.stack.Depth())
	}
}

func TestBackDuringExpandingIsQueued(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Begin(true)
	h.runTo(ms(300))

	if h.stack.Back() {
		t.Fatal("back while expanding should be intercepted")
	}
	if h.ctrl.Phase() != Expanding {
		t.Fatalf("phase = %v, want expanding", h.ctrl.Phase())
	}
	if h.ctrl.RequestBack(BackAffordance) {
		t.Error("a second queued back should be a no-op")
	}

	h.runTo(ms(1000))
	if h.ctrl.Phase() != Collapsing {
		t.Fatalf("phase = %v at 1000ms, want collapsing", h.ctrl.Phase())
	}
	h.runTo(ms(1799))
	if h.removed != 0 {
		t.Fatal("popped too early")
	}
	h.runTo(ms(1800))
	if h.removed != 1 || h.nav.pops != 1 {
		t.Errorf("removed=%d pops=%d, want 1 and 1", h.removed, h.nav.pops)
	}
}

func TestDisposeWhileExpandingSilencesCallbacks(t *testing.T) {
	h := newHarness(t)
	c := h.ctrl.Clocks()
	h.ctrl.Begin(true)
	h.runTo(ms(300))

	h.ctrl.Dispose()
	phases := len(h.phases)
	h.runTo(ms(3000))

	if len(h.phases) != phases {
		t.Errorf("phase changed after dispose: %v", h.phases)
	}
	if c.Content.Read() != 0 || c.Elevation.Read() != 0 {
		t.Errorf("clocks moved after dispose: content=%v elevation=%v", c.Content.Read(), c.Elevation.Read())
	}
	if !h.stack.Back() {
		t.Error("dispose should release the interception")
	}
	if h.ctrl.RequestBack(BackAffordance) {
		t.Error("disposed controller accepted a back request")
	}
	if h.ctrl.ConsumePop() {
		t.Error("disposed controller raised a pop")
	}
}

func TestFailGoesStraightToGone(t *testing.T) {
	h := newHarness(t)
	c := h.ctrl.Clocks()

	h.ctrl.Fail()
	if h.ctrl.Phase() != Gone {
		t.Fatalf("phase = %v, want gone", h.ctrl.Phase())
	}
	if len(h.phases) != 1 || h.phases[0] != Gone {
		t.Errorf("phases = %v, want [gone]", h.phases)
	}
	if c.Morph.Active() || c.Content.Active() {
		t.Error("failure should not animate")
	}
	if h.ctrl.ConsumePop() {
		t.Error("failure should wait for a manual back")
	}

	if !h.stack.Back() {
		t.Fatal("manual back should leave directly")
	}
	if h.removed != 1 {
		t.Errorf("removed = %d, want 1", h.removed)
	}
}

func TestNativeBackWhileLoadingLeaves(t *testing.T) {
	h := newHarness(t)
	if !h.stack.Back() {
		t.Fatal("back while loading should not be held")
	}
	if h.ctrl.Phase() != Gone || h.removed != 1 {
		t.Errorf("phase=%v removed=%d", h.ctrl.Phase(), h.removed)
	}
}

func TestRequestBackWhileIdleRaisesPopOnce(t *testing.T) {
	h := newHarness(t)
	if !h.ctrl.RequestBack(BackAffordance) {
		t.Fatal("back while idle should end the screen")
	}
	if !h.ctrl.ConsumePop() {
		t.Fatal("pop signal not raised")
	}
	if h.ctrl.ConsumePop() {
		t.Error("pop signal read twice")
	}
	h.ctrl.RequestBack(BackAffordance)
	if h.ctrl.ConsumePop() {
		t.Error("pop signal raised twice")
	}
}

func TestHoldAndReleaseElevation(t *testing.T) {
	h := newHarness(t)
	h.expanded(t)
	c := h.ctrl.Clocks()

	h.ctrl.HoldElevation()
	if c.Elevation.Read() != 0 {
		t.Errorf("elevation = %v, want 0 while held", c.Elevation.Read())
	}
	h.ctrl.ReleaseElevation()
	h.runTo(ms(5000))
	if c.Elevation.Read() != DefaultTimings.RestingElevation {
		t.Errorf("elevation = %v after release", c.Elevation.Read())
	}
	if h.ctrl.Phase() != Expanded {
		t.Errorf("phase = %v, want expanded", h.ctrl.Phase())
	}
}

type failingNav struct {
	popErr, forceErr error
	pops, forces     int
}

func (f *failingNav) Pop() error      { f.pops++; return f.popErr }
func (f *failingNav) ForcePop() error { f.forces++; return f.forceErr }
func (f *failingNav) OnBeforeLeave(nav.Interceptor) func() {
	return func() {}
}

func TestPopFallback(t *testing.T) {
	ok := &failingNav{}
	if err := Pop(ok); err != nil || ok.forces != 0 {
		t.Errorf("Pop err=%v forces=%d, want nil and 0", err, ok.forces)
	}

	fallback := &failingNav{popErr: nav.ErrEmptyStack}
	if err := Pop(fallback); err != nil {
		t.Errorf("fallback Pop: %v", err)
	}
	if fallback.forces != 1 {
		t.Errorf("ForcePop calls = %d, want 1", fallback.forces)
	}

	broken := &failingNav{popErr: nav.ErrEmptyStack, forceErr: nav.ErrEmptyStack}
	err := Pop(broken)
	if !errors.Is(err, ErrPopFailed) || !errors.Is(err, nav.ErrEmptyStack) {
		t.Errorf("err = %v, want ErrPopFailed wrapping ErrEmptyStack", err)
	}
	if broken.forces != 1 {
		t.Errorf("ForcePop calls = %d, want exactly 1", broken.forces)
	}
}

func TestTimingsValidate(t *testing.T) {
	if err := DefaultTimings.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Timings)
	}{
		{"negative morph", func(t *Timings) { t.MorphDuration = -1 }},
		{"negative stagger", func(t *Timings) { t.CollapseStagger = -ms(1) }},
		{"late reveal", func(t *Timings) { t.RevealDelay = ms(5000) }},
		{"negative elevation", func(t *Timings) { t.RestingElevation = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := DefaultTimings
			tt.mutate(&tm)
			if err := tm.Validate(); !errors.Is(err, ErrInvalidTimings) {
				t.Errorf("Validate = %v, want ErrInvalidTimings", err)
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	if Collapsing.String() != "collapsing" || Phase(42).String() != "unknown" {
		t.Error("unexpected phase names")
	}
}

func TestClocksValuesByName(t *testing.T) {
	c := NewClocks(motion.NewScheduler(t0))
	got := c.Values()
	want := map[string]any{"morph": 0.0, "content": 0.0, "fade": 1.0, "elevation": 0.0}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

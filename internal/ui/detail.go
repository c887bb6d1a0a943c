package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"

	"github.com/abelbrown/spotlight/internal/api"
	"github.com/abelbrown/spotlight/internal/auth"
	"github.com/abelbrown/spotlight/internal/geometry"
	"github.com/abelbrown/spotlight/internal/logging"
	"github.com/abelbrown/spotlight/internal/morph"
	"github.com/abelbrown/spotlight/internal/motion"
	"github.com/abelbrown/spotlight/internal/nav"
	"github.com/abelbrown/spotlight/internal/otel"
	"github.com/abelbrown/spotlight/internal/signal"
	"github.com/abelbrown/spotlight/internal/transition"
)

// respondTimeout bounds a respond mutation, which is not tied to the
// screen's lifetime.
const respondTimeout = 30 * time.Second

// DetailConfig is what a detail screen needs from the app.
type DetailConfig struct {
	Backend   SignalBackend
	Navigator nav.Navigator
	User      auth.User
	Timings   transition.Timings
	Spring    motion.SpringConfig
	FPS       int
	Events    *otel.Logger
	Now       func() time.Time
}

// DetailHost is the signal detail screen. It fetches the signal, runs the
// spotlight transition from the source card (if one was measured), and
// owns the respond flow.
//
// All clock and controller state is touched only from Update, on the UI
// loop. Fetches and mutations run as Cmds and come back as messages tagged
// with the host ID; messages for another ID or after Unmount are dropped.
type DetailHost struct {
	id     uint64
	params nav.Params
	cfg    DetailConfig
	log    *charmlog.Logger

	sched *motion.Scheduler
	ctrl  *transition.Controller

	ctx    context.Context
	cancel context.CancelFunc

	sig     *signal.Signal
	loading bool
	loadErr error // nil with a nil signal means not found

	spinner spinner.Model
	remark  textarea.Model
	confirm signal.Decision // pending confirmation, "" when none
	busy    bool
	alert   string

	ticking bool
	inert   bool
	frames  int // actor frames computed

	width  int
	height int
}

// NewDetailHost creates the detail screen for params. id must be unique
// per screen instance.
func NewDetailHost(id uint64, params nav.Params, cfg DetailConfig) *DetailHost {
	if cfg.Events == nil {
		cfg.Events = otel.NewNullLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	h := &DetailHost{
		id:     id,
		params: params,
		cfg:    cfg,
		log:    logging.WithPrefix("detail"),
	}
	// Bounds that cannot be morphed from open the screen without a transition.
	if src := params.Source; src != nil && !src.Valid() {
		h.log.Warn("dropping invalid snapshot", "signal", params.SignalID, "snapshot", *src)
		h.params.Source = nil
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())

	h.sched = motion.NewScheduler(cfg.Now())
	h.sched.SetSpring(cfg.Spring)
	h.ctrl = transition.NewController(h.sched, cfg.Timings, transition.WithPhaseHook(h.phaseChanged))

	h.spinner = spinner.New()
	h.spinner.Spinner = spinner.MiniDot
	h.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary))

	h.remark = textarea.New()
	h.remark.Placeholder = "Add a remark (optional)"
	h.remark.ShowLineNumbers = false
	h.remark.CharLimit = 280
	h.remark.SetHeight(2)
	return h
}

// ID returns the host's owner ID.
func (h *DetailHost) ID() uint64 { return h.id }

// Phase returns the transition phase (for testing and the debug overlay).
func (h *DetailHost) Phase() transition.Phase { return h.ctrl.Phase() }

// ActorFrames returns how many actor frames have been computed.
func (h *DetailHost) ActorFrames() int { return h.frames }

// Init arms the back interception and starts the fetch. Call it once the
// screen is on top of the stack.
func (h *DetailHost) Init() tea.Cmd {
	h.ctrl.Arm(h.cfg.Navigator)
	h.loading = true
	h.cfg.Events.Emit(otel.Event{Kind: otel.KindFetchStart, Level: otel.LevelDebug, Comp: "detail", Screen: h.id, SignalID: h.params.SignalID})
	return tea.Batch(h.spinner.Tick, h.fetch())
}

func (h *DetailHost) fetch() tea.Cmd {
	ctx, b, id, owner := h.ctx, h.cfg.Backend, h.params.SignalID, h.id
	return func() tea.Msg {
		sig, err := b.FetchSignal(ctx, id)
		return SignalLoaded{Owner: owner, Signal: sig, Err: err}
	}
}

// SetSize sets the screen area; it is also the viewport the actor expands
// to.
func (h *DetailHost) SetSize(width, height int) {
	h.width, h.height = width, height
	h.remark.SetWidth(max(width-8, 10))
}

// Capturing reports whether keys go to the remark field or the confirm
// dialog rather than to app navigation.
func (h *DetailHost) Capturing() bool {
	return h.remark.Focused() || h.confirm != ""
}

// Update handles messages.
func (h *DetailHost) Update(msg tea.Msg) tea.Cmd {
	if h.ctrl.Disposed() {
		return nil
	}
	switch msg := msg.(type) {
	case SignalLoaded:
		if msg.Owner != h.id {
			return nil
		}
		return h.loaded(msg)

	case Responded:
		if msg.Owner != h.id {
			return nil
		}
		return h.responded(msg)

	case motion.FrameMsg:
		if msg.Owner != h.id {
			return nil
		}
		return h.frame(msg.Time)

	case spinner.TickMsg:
		if !h.loading {
			return nil
		}
		var cmd tea.Cmd
		h.spinner, cmd = h.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return h.handleKey(msg)
	}

	if h.remark.Focused() {
		var cmd tea.Cmd
		h.remark, cmd = h.remark.Update(msg)
		return cmd
	}
	return nil
}

func (h *DetailHost) loaded(msg SignalLoaded) tea.Cmd {
	if !h.loading {
		return nil
	}
	h.loading = false
	if msg.Err != nil || msg.Signal == nil {
		h.loadErr = msg.Err
		err := msg.Err
		if err == nil {
			err = fmt.Errorf("%w: %s", api.ErrNotFound, h.params.SignalID)
		}
		h.log.Warn("signal unavailable", "signal", h.params.SignalID, "err", err)
		h.cfg.Events.Emit(otel.Event{Kind: otel.KindFetchError, Level: otel.LevelWarn, Comp: "detail", Screen: h.id, SignalID: h.params.SignalID, Err: err.Error()})
		h.ctrl.Fail()
		return nil
	}

	h.sig = msg.Signal
	h.cfg.Events.Emit(otel.Event{Kind: otel.KindFetchComplete, Level: otel.LevelDebug, Comp: "detail", Screen: h.id, SignalID: h.sig.ID})
	h.sched.Advance(h.cfg.Now())
	h.ctrl.Begin(h.params.Source != nil)
	h.cfg.Events.Emit(otel.Event{Kind: otel.KindAnimStart, Level: otel.LevelDebug, Comp: "detail", Screen: h.id, SignalID: h.sig.ID, Source: sourceName(h.params.Source)})
	return h.Wake()
}

func (h *DetailHost) responded(msg Responded) tea.Cmd {
	h.busy = false
	if msg.Err != nil {
		h.alert = fmt.Sprintf("Could not %s: %v", msg.Decision.Verb(), msg.Err)
		h.log.Error("respond failed", "signal", h.params.SignalID, "err", msg.Err)
		h.cfg.Events.Emit(otel.Event{Kind: otel.KindRespondError, Level: otel.LevelError, Comp: "detail", Screen: h.id, SignalID: h.params.SignalID, Err: msg.Err.Error()})
		h.sched.Advance(h.cfg.Now())
		h.ctrl.ReleaseElevation()
		return h.Wake()
	}

	h.cfg.Backend.Invalidate(api.KeySignals, api.SignalKey(h.params.SignalID))
	if msg.Signal != nil {
		h.sig = msg.Signal
	}
	h.remark.Reset()
	h.cfg.Events.Emit(otel.Event{Kind: otel.KindRespondComplete, Level: otel.LevelInfo, Comp: "detail", Screen: h.id, SignalID: h.params.SignalID, Msg: string(msg.Decision)})
	h.sched.Advance(h.cfg.Now())
	h.ctrl.RequestBack(transition.BackRespond)
	return h.Wake()
}

// frame advances the clocks to t, performs a raised pop, and asks for the
// next frame while anything is still animating.
func (h *DetailHost) frame(t time.Time) tea.Cmd {
	h.ticking = false
	h.sched.Advance(t)
	if otel.TraceEnabled() {
		h.cfg.Events.Emit(otel.Event{
			Kind: otel.KindAnimFrame, Level: otel.LevelDebug, Comp: "detail", Screen: h.id,
			Extra: h.ctrl.Clocks().Values(),
		})
	}
	return h.Wake()
}

// Sync brings the clocks up to the wall clock. The app calls it before it
// routes a native back intent, which may start the collapse.
func (h *DetailHost) Sync() {
	h.sched.Advance(h.cfg.Now())
}

// Wake performs a pending pop and makes sure frames are requested while
// the scheduler is busy. The app calls it after routing a back intent
// through the stack, since the interceptor may have started the collapse.
func (h *DetailHost) Wake() tea.Cmd {
	h.popIfRaised()
	if h.ticking || h.ctrl.Disposed() || !h.sched.Busy() {
		return nil
	}
	h.ticking = true
	return motion.FrameCmd(h.id, h.cfg.FPS)
}

// popIfRaised is the single reader of the controller's pop signal.
func (h *DetailHost) popIfRaised() {
	if !h.ctrl.ConsumePop() {
		return
	}
	if err := transition.Pop(h.cfg.Navigator); err != nil {
		h.inert = true
		h.log.Error("pop failed, screen left inert", "signal", h.params.SignalID, "err", err)
		h.cfg.Events.Emit(otel.Event{Kind: otel.KindNavPopFailed, Level: otel.LevelError, Comp: "detail", Screen: h.id, SignalID: h.params.SignalID, Err: err.Error()})
		return
	}
	h.cfg.Events.Emit(otel.Event{Kind: otel.KindNavPop, Level: otel.LevelDebug, Comp: "detail", Screen: h.id, SignalID: h.params.SignalID})
}

func (h *DetailHost) handleKey(msg tea.KeyMsg) tea.Cmd {
	if h.inert {
		return nil
	}
	if h.confirm != "" {
		return h.handleConfirmKey(msg)
	}
	if h.remark.Focused() {
		if key.Matches(msg, keys.Back) {
			h.remark.Blur()
			return nil
		}
		var cmd tea.Cmd
		h.remark, cmd = h.remark.Update(msg)
		return cmd
	}

	// Any key dismisses the alert banner.
	h.alert = ""

	switch {
	case key.Matches(msg, keys.Return):
		return h.backAffordance()
	case key.Matches(msg, keys.Accept):
		return h.ask(signal.DecisionAccepted)
	case key.Matches(msg, keys.Reject):
		return h.ask(signal.DecisionRejected)
	case key.Matches(msg, keys.Remark):
		if h.canRespond() {
			return h.remark.Focus()
		}
	}
	return nil
}

// backAffordance is the on-screen back control: a programmatic Pop that the
// interceptor turns into the collapse.
func (h *DetailHost) backAffordance() tea.Cmd {
	h.cfg.Events.Emit(otel.Event{Kind: otel.KindNavBack, Level: otel.LevelDebug, Comp: "detail", Screen: h.id, Source: transition.BackAffordance.String()})
	h.sched.Advance(h.cfg.Now())
	if err := h.cfg.Navigator.Pop(); err != nil && !errors.Is(err, nav.ErrIntercepted) {
		h.log.Warn("back failed", "err", err)
	}
	return h.Wake()
}

// ask opens the confirm dialog. The card drops its elevation while the
// dialog is up.
func (h *DetailHost) ask(d signal.Decision) tea.Cmd {
	if !h.canRespond() || h.busy {
		return nil
	}
	h.confirm = d
	h.sched.Advance(h.cfg.Now())
	h.ctrl.HoldElevation()
	return h.Wake()
}

func (h *DetailHost) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Confirm):
		d := h.confirm
		h.confirm = ""
		return h.respond(d)
	case key.Matches(msg, keys.Cancel):
		h.confirm = ""
		h.sched.Advance(h.cfg.Now())
		h.ctrl.ReleaseElevation()
		return h.Wake()
	}
	return nil
}

func (h *DetailHost) respond(d signal.Decision) tea.Cmd {
	if h.busy {
		return nil
	}
	h.busy = true
	h.cfg.Events.Emit(otel.Event{Kind: otel.KindRespondStart, Level: otel.LevelInfo, Comp: "detail", Screen: h.id, SignalID: h.params.SignalID, Msg: string(d)})
	// The mutation outlives the screen: leaving mid-request must not abort
	// a confirmed response.
	b, id, owner, remark := h.cfg.Backend, h.params.SignalID, h.id, h.remark.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), respondTimeout)
		defer cancel()
		sig, err := b.Respond(ctx, id, d, remark)
		return Responded{Owner: owner, SignalID: id, Decision: d, Signal: sig, Err: err}
	}
}

// canRespond reports whether the response section is active.
func (h *DetailHost) canRespond() bool {
	return h.sig != nil &&
		h.ctrl.Phase() == transition.Expanded &&
		h.sig.CanRespond(h.cfg.User.ID)
}

// Unmount tears the screen down when it leaves the stack: every clock and
// timer is cancelled, the interception is released and the detail fetch is
// abandoned. A respond mutation keeps running; the app takes its result.
func (h *DetailHost) Unmount() {
	if h.ctrl.Disposed() {
		return
	}
	h.cancel()
	h.ctrl.Dispose()
	h.ticking = false
	h.cfg.Events.Emit(otel.Event{Kind: otel.KindAnimCancel, Level: otel.LevelDebug, Comp: "detail", Screen: h.id, SignalID: h.params.SignalID, Msg: "unmount"})
}

func (h *DetailHost) phaseChanged(from, to transition.Phase) {
	h.log.Debug("phase", "screen", h.id, "from", from, "to", to)
	h.cfg.Events.Phase(h.id, h.params.SignalID, from.String(), to.String())
}

// actorFrame computes the actor for this frame. The actor exists only with
// a snapshot and a loaded signal, and hands off to the content once the
// morph rests at full screen.
func (h *DetailHost) actorFrame() (morph.Frame, bool) {
	if h.sig == nil || !h.ctrl.HasMorph() || h.params.Source == nil {
		return morph.Frame{}, false
	}
	p := h.ctrl.Clocks().Morph.Read()
	if p >= 1 && !h.ctrl.Clocks().Morph.Active() {
		return morph.Frame{}, false
	}
	h.frames++
	vp := geometry.Viewport{Width: float64(h.width), Height: float64(h.height)}
	return morph.Compute(*h.params.Source, p, vp), true
}

func sourceName(s *geometry.Snapshot) string {
	if s == nil {
		return "direct"
	}
	return "snapshot"
}

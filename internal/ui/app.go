package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/spotlight/internal/api"
	"github.com/abelbrown/spotlight/internal/auth"
	"github.com/abelbrown/spotlight/internal/geometry"
	"github.com/abelbrown/spotlight/internal/motion"
	"github.com/abelbrown/spotlight/internal/nav"
	"github.com/abelbrown/spotlight/internal/otel"
	"github.com/abelbrown/spotlight/internal/transition"
)

// Screen is one entry of the navigation stack. Screens are pointers and are
// updated in place; only App is a value model.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	// Capturing reports whether the screen wants every key, so the app
	// must not treat them as navigation.
	Capturing() bool
}

// Options configures the App.
type Options struct {
	Backend SignalBackend
	User    auth.User
	Timings transition.Timings
	Spring  motion.SpringConfig
	FPS     int
	Events  *otel.Logger
	Ring    *otel.RingBuffer // debug overlay source, optional
	Now     func() time.Time
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the store. Screens reach data through the
// SignalBackend and receive results via messages.
type App struct {
	opts Options

	stack    *nav.Stack[Screen]
	timeline *Timeline
	fab      *FabVisibility
	registry *geometry.Registry
	help     help.Model
	nextID   uint64

	width  int
	height int
	ready  bool
	debug  bool
}

// NewApp creates the App with the timeline as its root screen.
func NewApp(opts Options) App {
	if opts.Events == nil {
		opts.Events = otel.NewNullLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FPS <= 0 {
		opts.FPS = motion.DefaultFPS
	}

	reg := geometry.NewRegistry()
	fab := NewFabVisibility()
	tl := NewTimeline(opts.Backend, reg, fab, opts.Events, opts.Now)

	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = StatusBarKey
	h.Styles.ShortDesc = StatusBarText
	h.Styles.ShortSeparator = StatusBarText

	return App{
		opts:     opts,
		stack:    nav.NewStack[Screen](nav.Route{Name: nav.RouteTimeline}, tl, unmount),
		timeline: tl,
		fab:      fab,
		registry: reg,
		help:     h,
	}
}

// unmount is the stack's onRemove: screens that hold clocks or requests
// release them here.
func unmount(_ nav.Route, s Screen) {
	if u, ok := s.(interface{ Unmount() }); ok {
		u.Unmount()
	}
}

// Init loads the timeline.
func (a App) Init() tea.Cmd {
	return a.timeline.Init()
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case OpenDetail:
		a.nextID++
		h := NewDetailHost(a.nextID, msg.Params, DetailConfig{
			Backend:   a.opts.Backend,
			Navigator: a.stack,
			User:      a.opts.User,
			Timings:   a.opts.Timings,
			Spring:    a.opts.Spring,
			FPS:       a.opts.FPS,
			Events:    a.opts.Events,
			Now:       a.opts.Now,
		})
		return a, a.push(nav.Route{Name: nav.RouteDetail, Params: msg.Params}, h)

	case OpenCreate:
		f := NewCreateForm(a.opts.Backend, a.stack, a.opts.User, a.opts.Events)
		return a, a.push(nav.Route{Name: nav.RouteCreate}, f)

	case OpenProfile:
		p := NewProfile(a.opts.Backend, a.stack, a.opts.User)
		return a, a.push(nav.Route{Name: nav.RouteProfile}, p)

	case SignalsLoaded:
		return a, a.timeline.Update(msg)

	case SignalCreated:
		cmd := a.top().Update(msg)
		if msg.Err == nil {
			cmd = tea.Batch(cmd, a.timeline.Reload())
		}
		return a, cmd

	case Responded:
		var cmd tea.Cmd
		if h, ok := a.top().(*DetailHost); ok && h.ID() == msg.Owner {
			cmd = h.Update(msg)
		} else {
			a.orphanResponse(msg)
		}
		if msg.Err == nil {
			cmd = tea.Batch(cmd, a.timeline.Reload())
		}
		return a, cmd

	case spinner.TickMsg:
		// Spinner ticks carry their own ID; each model ignores the others'.
		cmds := []tea.Cmd{a.timeline.Update(msg)}
		if top := a.top(); top != Screen(a.timeline) {
			cmds = append(cmds, top.Update(msg))
		}
		return a, tea.Batch(cmds...)
	}

	return a, a.top().Update(msg)
}

// handleKeyMsg routes keys: app keys first unless the top screen is
// capturing input, then the top screen.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Exit) {
		return a, tea.Quit
	}

	top := a.top()
	if top.Capturing() {
		return a, top.Update(msg)
	}

	switch {
	case key.Matches(msg, keys.Debug):
		a.debug = !a.debug
		return a, nil

	case key.Matches(msg, keys.Back) && a.stack.Depth() > 1:
		return a, a.back()

	case key.Matches(msg, keys.Quit) && a.stack.Depth() == 1:
		return a, tea.Quit
	}
	return a, top.Update(msg)
}

// back routes a native back intent through the stack. A detail screen's
// interceptor turns it into the collapse, which then needs frames.
func (a App) back() tea.Cmd {
	h, isDetail := a.top().(*DetailHost)
	if isDetail {
		h.Sync()
	}
	a.opts.Events.Emit(otel.Event{Kind: otel.KindNavBack, Level: otel.LevelDebug, Comp: "app", Source: transition.BackNative.String()})
	if a.stack.Back() || !isDetail {
		return nil
	}
	return h.Wake()
}

// orphanResponse handles a respond result whose detail screen was closed
// while the mutation ran: the cache is still invalidated and a failure is
// shown on the timeline.
func (a App) orphanResponse(msg Responded) {
	if msg.Err != nil {
		err := fmt.Errorf("could not %s: %w", msg.Decision.Verb(), msg.Err)
		a.timeline.ShowError(err)
		a.opts.Events.Emit(otel.Event{Kind: otel.KindRespondError, Level: otel.LevelError, Comp: "app", Screen: msg.Owner, SignalID: msg.SignalID, Err: msg.Err.Error()})
		return
	}
	a.opts.Backend.Invalidate(api.SignalKey(msg.SignalID))
	a.opts.Events.Emit(otel.Event{Kind: otel.KindRespondComplete, Level: otel.LevelInfo, Comp: "app", Screen: msg.Owner, SignalID: msg.SignalID, Msg: string(msg.Decision)})
}

func (a App) push(route nav.Route, s Screen) tea.Cmd {
	a.stack.Push(route, s)
	s.SetSize(a.width, a.contentHeight())
	a.opts.Events.Emit(otel.Event{Kind: otel.KindNavPush, Level: otel.LevelDebug, Comp: "app", SignalID: route.Params.SignalID, Msg: route.Name})
	return s.Init()
}

func (a App) top() Screen {
	_, s := a.stack.Top()
	return s
}

// resize gives the root and the top screen the area above the status bar.
// Only those two can be visible: nothing is pushed over a pushed screen.
func (a App) resize() {
	h := a.contentHeight()
	a.timeline.SetSize(a.width, h)
	if top := a.top(); top != Screen(a.timeline) {
		top.SetSize(a.width, h)
	}
}

// contentHeight is the terminal height minus the status bar.
func (a App) contentHeight() int {
	return max(a.height-1, 0)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	h := a.contentHeight()
	c := newCanvas(a.width, h)
	c.draw(fit(a.top().View(), a.width, h), 0, 0)

	if a.top() == Screen(a.timeline) && a.fab.Visible() {
		fab := FabStyle.Render("+ New")
		c.draw(fab, a.width-lipgloss.Width(fab)-2, h-2)
	}

	if a.debug {
		panel := debugOverlay(a.opts.Ring, a.width, h, a.opts.Now())
		if panel != "" {
			c.draw(panel, max((a.width-lipgloss.Width(panel))/2, 0), max((h-lipgloss.Height(panel))/2, 0))
		}
		return c.String() + "\n" + debugStatusBar(a.width)
	}
	return c.String() + "\n" + a.statusBar()
}

// statusBar shows the key hints of the top screen.
func (a App) statusBar() string {
	var bindings []key.Binding
	route, top := a.stack.Top()
	switch route.Name {
	case nav.RouteTimeline:
		bindings = []key.Binding{keys.Open, keys.New, keys.Profile, keys.Refresh, keys.Debug, keys.Quit}
	case nav.RouteDetail:
		bindings = []key.Binding{keys.Back, keys.Accept, keys.Reject, keys.Remark}
		if top.Capturing() {
			bindings = []key.Binding{keys.Confirm, keys.Cancel}
		}
	case nav.RouteCreate:
		bindings = []key.Binding{keys.Next, keys.Submit, keys.Back}
	case nav.RouteProfile:
		bindings = []key.Binding{keys.Back}
	}
	a.help.Width = a.width - 2
	return StatusBar.Width(a.width).Render(a.help.ShortHelpView(bindings))
}

// Depth returns the navigation depth (for testing).
func (a App) Depth() int {
	return a.stack.Depth()
}

// Top returns the route and screen on top (for testing).
func (a App) Top() (nav.Route, Screen) {
	return a.stack.Top()
}

// Timeline returns the root screen (for testing).
func (a App) Timeline() *Timeline {
	return a.timeline
}

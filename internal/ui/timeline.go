package ui

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/spotlight/internal/api"
	"github.com/abelbrown/spotlight/internal/geometry"
	"github.com/abelbrown/spotlight/internal/logging"
	"github.com/abelbrown/spotlight/internal/nav"
	"github.com/abelbrown/spotlight/internal/otel"
	"github.com/abelbrown/spotlight/internal/signal"
)

// headerRows is the timeline header height: title line plus one spacer
// (which doubles as the error line).
const headerRows = 2

// Timeline is the root screen: the feed as a two-column waterfall.
//
// Every relayout records each fully visible card's cell rect in the
// registry, so Measure at press time sees exactly what is on screen.
type Timeline struct {
	backend  SignalBackend
	registry *geometry.Registry
	fab      *FabVisibility
	events   *otel.Logger
	now      func() time.Time

	signals []signal.Signal
	place   []Placement
	content int // content height in rows
	cursor  int
	offset  int // scroll offset in rows

	loading bool
	err     error
	spinner spinner.Model

	width  int
	height int
}

// NewTimeline creates the timeline. It is the only writer of fab.
func NewTimeline(b SignalBackend, reg *geometry.Registry, fab *FabVisibility, events *otel.Logger, now func() time.Time) *Timeline {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary))
	return &Timeline{
		backend:  b,
		registry: reg,
		fab:      fab,
		events:   events,
		now:      now,
		spinner:  s,
	}
}

// Init loads the feed.
func (t *Timeline) Init() tea.Cmd {
	t.loading = true
	return tea.Batch(t.spinner.Tick, loadSignals(t.backend))
}

// Reload drops the cached feed and fetches it again.
func (t *Timeline) Reload() tea.Cmd {
	t.loading = true
	t.backend.Invalidate(api.KeySignals)
	t.events.Info(otel.KindFetchStart, "timeline", "reload")
	return tea.Batch(t.spinner.Tick, loadSignals(t.backend))
}

// SetSize sets the screen area, header included.
func (t *Timeline) SetSize(width, height int) {
	t.width, t.height = width, height
	t.relayout()
}

// Capturing reports false: the timeline has no text input.
func (t *Timeline) Capturing() bool { return false }

// Update handles messages.
func (t *Timeline) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SignalsLoaded:
		if msg.Background {
			return t.refreshed(msg)
		}
		t.loading = false
		if msg.Err != nil {
			t.err = msg.Err
			t.events.Error(otel.KindFetchError, "timeline", msg.Err)
			return nil
		}
		t.err = nil
		t.setSignals(msg.Signals)
		t.events.Emit(otel.Event{Kind: otel.KindFetchComplete, Level: otel.LevelInfo, Comp: "timeline", Count: len(msg.Signals)})
		return nil

	case spinner.TickMsg:
		if !t.loading {
			return nil
		}
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return t.handleKey(msg)
	}
	return nil
}

// refreshed applies a background refresh. It never touches the loading
// state of a user reload, and a failure keeps the current feed quietly.
func (t *Timeline) refreshed(msg SignalsLoaded) tea.Cmd {
	if msg.Err != nil {
		logging.Warn("background refresh failed", "err", msg.Err)
		t.events.Warn(otel.KindRefresh, "timeline", msg.Err.Error())
		return nil
	}
	t.setSignals(msg.Signals)
	return nil
}

// ShowError puts err in the header until the next key press.
func (t *Timeline) ShowError(err error) {
	t.err = err
}

func (t *Timeline) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Clear any existing error on key press
	t.err = nil

	switch {
	case key.Matches(msg, keys.Down):
		t.move(t.below())
	case key.Matches(msg, keys.Up):
		t.move(t.above())
	case key.Matches(msg, keys.Left):
		t.move(t.across(0))
	case key.Matches(msg, keys.Right):
		t.move(t.across(1))
	case key.Matches(msg, keys.Open):
		return t.open()
	case key.Matches(msg, keys.Refresh):
		return t.Reload()
	case key.Matches(msg, keys.New):
		return func() tea.Msg { return OpenCreate{} }
	case key.Matches(msg, keys.Profile):
		return func() tea.Msg { return OpenProfile{} }
	}
	return nil
}

// setSignals replaces the feed, keeping the cursor on the same signal.
func (t *Timeline) setSignals(sigs []signal.Signal) {
	var selected string
	if t.cursor < len(t.signals) {
		selected = t.signals[t.cursor].ID
	}
	t.signals = sigs
	t.cursor = 0
	for i, s := range sigs {
		if s.ID == selected {
			t.cursor = i
			break
		}
	}
	t.relayout()
	t.reveal()
}

// open measures the selected card and asks for the detail screen. A card
// that cannot be measured opens without the transition.
func (t *Timeline) open() tea.Cmd {
	if t.cursor >= len(t.signals) {
		return nil
	}
	id := t.signals[t.cursor].ID
	params := nav.Params{SignalID: id}
	if snap, ok := geometry.Measure(t.registry, id); ok {
		params.Source = &snap
	} else {
		logging.Debug("card not measured, opening without transition", "signal", id)
		t.events.Emit(otel.Event{Kind: otel.KindMeasureMiss, Level: otel.LevelDebug, Comp: "timeline", SignalID: id})
	}
	return func() tea.Msg { return OpenDetail{Params: params} }
}

func (t *Timeline) move(i int) {
	if i < 0 || i == t.cursor {
		return
	}
	t.cursor = i
	t.reveal()
}

// below is the next card in the cursor's column, or -1.
func (t *Timeline) below() int {
	if t.cursor >= len(t.place) {
		return -1
	}
	col := t.place[t.cursor].Column
	for i := t.cursor + 1; i < len(t.place); i++ {
		if t.place[i].Column == col {
			return i
		}
	}
	return -1
}

// above is the previous card in the cursor's column, or -1.
func (t *Timeline) above() int {
	if t.cursor >= len(t.place) {
		return -1
	}
	col := t.place[t.cursor].Column
	for i := t.cursor - 1; i >= 0; i-- {
		if t.place[i].Column == col {
			return i
		}
	}
	return -1
}

// across is the card in column col whose top is closest to the cursor's.
func (t *Timeline) across(col int) int {
	if t.cursor >= len(t.place) || t.place[t.cursor].Column == col {
		return -1
	}
	top := t.place[t.cursor].Top
	best, dist := -1, math.MaxInt
	for i, p := range t.place {
		if p.Column != col {
			continue
		}
		d := p.Top - top
		if d < 0 {
			d = -d
		}
		if d < dist {
			best, dist = i, d
		}
	}
	return best
}

// reveal scrolls so the cursor card is fully visible.
func (t *Timeline) reveal() {
	if t.cursor >= len(t.place) {
		return
	}
	p := t.place[t.cursor]
	area := t.areaHeight()
	offset := t.offset
	if p.Top < offset {
		offset = p.Top
	}
	if p.Top+p.Height > offset+area {
		offset = p.Top + p.Height - area
	}
	t.scrollTo(offset)
}

func (t *Timeline) scrollTo(offset int) {
	offset = max(0, min(offset, t.content-t.areaHeight()))
	if offset != t.offset {
		t.offset = offset
		t.fab.Observe(float64(offset * rowUnits))
	}
	t.record()
}

func (t *Timeline) areaHeight() int {
	return max(t.height-headerRows, 0)
}

// columns returns the card width and the x of each column.
func (t *Timeline) columns() (w int, x [2]int) {
	w = max((t.width-3)/2, 0)
	return w, [2]int{1, 2 + w}
}

// relayout recomputes the waterfall and the recorded geometry.
func (t *Timeline) relayout() {
	heights := make([]int, len(t.signals))
	for i, s := range t.signals {
		heights[i] = cardRows(s.Height)
	}
	t.place, t.content = Waterfall(heights, cardGap)
	if t.cursor >= len(t.place) {
		t.cursor = max(len(t.place)-1, 0)
	}
	t.scrollTo(t.offset)
}

// record rewrites the registry with every fully visible card, in screen
// cells.
func (t *Timeline) record() {
	t.registry.Reset()
	w, x := t.columns()
	if w < 4 {
		return
	}
	area := t.areaHeight()
	for i, p := range t.place {
		top := p.Top - t.offset
		if top < 0 || top+p.Height > area {
			continue
		}
		t.registry.Record(t.signals[i].ID, geometry.Rect{
			X: x[p.Column],
			Y: headerRows + top,
			W: w,
			H: p.Height,
		})
	}
}

// View renders the header and the visible part of the waterfall.
func (t *Timeline) View() string {
	title := Header.Render("Signals")
	if t.loading {
		title += " " + t.spinner.View()
	} else {
		title += MutedStyle.Render(fmt.Sprintf(" %d", len(t.signals)))
	}
	second := ""
	if t.err != nil {
		second = ErrorStyle.Render("Error: " + t.err.Error() + " (press any key to dismiss)")
	}

	area := t.areaHeight()
	c := newCanvas(t.width, area)
	w, x := t.columns()
	if len(t.signals) == 0 && !t.loading {
		c.draw(MutedStyle.Render("No signals yet. Press n to send one."), 1, 0)
	}
	now := t.now()
	for i, p := range t.place {
		top := p.Top - t.offset
		if top+p.Height <= 0 || top >= area || w < 4 {
			continue
		}
		card := renderCard(t.signals[i], w, p.Height, cardOptions{
			selected: i == t.cursor,
			rounded:  true,
			opacity:  1,
			now:      now,
		})
		c.draw(card, x[p.Column], top)
	}

	return fit(title, t.width, 1) + "\n" + fit(second, t.width, 1) + "\n" + c.String()
}

// Selected returns the ID of the selected signal (for testing).
func (t *Timeline) Selected() string {
	if t.cursor < len(t.signals) {
		return t.signals[t.cursor].ID
	}
	return ""
}

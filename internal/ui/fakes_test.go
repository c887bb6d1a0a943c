package ui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/spotlight/internal/geometry"
	"github.com/abelbrown/spotlight/internal/nav"
	"github.com/abelbrown/spotlight/internal/signal"
	"github.com/abelbrown/spotlight/internal/store"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend is an in-memory SignalBackend.
type fakeBackend struct {
	mu          sync.Mutex
	signals     []signal.Signal
	counts      store.Counts
	listErr     error
	respondErr  error
	createErr   error
	responses   []signal.Decision
	created     []signal.Draft
	invalidated []string
}

func (f *fakeBackend) FetchSignals(ctx context.Context) ([]signal.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]signal.Signal(nil), f.signals...), nil
}

func (f *fakeBackend) FetchSignal(ctx context.Context, id string) (*signal.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.signals {
		if s.ID == id {
			c := s.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) Respond(ctx context.Context, id string, d signal.Decision, remark string) (*signal.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.respondErr != nil {
		return nil, f.respondErr
	}
	f.responses = append(f.responses, d)
	for i := range f.signals {
		if f.signals[i].ID == id {
			f.signals[i].Status, f.signals[i].StatusColor = d.Outcome()
			f.signals[i].Remark = remark
			c := f.signals[i].Clone()
			return &c, nil
		}
	}
	return nil, errors.New("no such signal")
}

func (f *fakeBackend) CreateSignal(ctx context.Context, userName, userID string, d signal.Draft) (*signal.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, d)
	s := signal.Signal{ID: "new-1", Title: d.Title, Type: d.Type, Status: signal.StatusPending, InitiatorID: userID, Users: []string{userName}}
	f.signals = append([]signal.Signal{s}, f.signals...)
	return &s, nil
}

func (f *fakeBackend) Counts(ctx context.Context, userID string) (store.Counts, error) {
	return f.counts, nil
}

func (f *fakeBackend) Invalidate(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, keys...)
}

// stubScreen is a root screen that records what it receives.
type stubScreen struct {
	msgs []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd              { return nil }
func (s *stubScreen) Update(msg tea.Msg) tea.Cmd { s.msgs = append(s.msgs, msg); return nil }
func (s *stubScreen) View() string               { return "root" }
func (s *stubScreen) SetSize(int, int)           {}
func (s *stubScreen) Capturing() bool            { return false }

// countingNav counts Pop calls on a real stack.
type countingNav struct {
	*nav.Stack[Screen]
	pops int
}

func (n *countingNav) Pop() error {
	n.pops++
	return n.Stack.Pop()
}

// brokenNav refuses every removal.
type brokenNav struct {
	pops, forced int
}

func (n *brokenNav) Pop() error                                     { n.pops++; return errors.New("pop refused") }
func (n *brokenNav) ForcePop() error                                { n.forced++; return errors.New("force pop refused") }
func (n *brokenNav) OnBeforeLeave(nav.Interceptor) (release func()) { return func() {} }

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Add(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

var testEpoch = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func testSignals() []signal.Signal {
	return []signal.Signal{
		{ID: "s1", Type: signal.TypeProposal, Status: signal.StatusPending, Title: "Dinner on Friday?", Users: []string{"Ana", "You"},
			Height: 180, StatusColor: "#FF6B6B", Background: "#409CFF", InitiatorID: "ana", ReceiverID: "me",
			Options: []string{"Sushi", "Tacos"}, Created: testEpoch.Add(-2 * time.Hour)},
		{ID: "s2", Type: signal.TypeWish, Status: signal.StatusSettled, Title: "New headphones", Users: []string{"You"},
			Height: 240, StatusColor: "#FFD700", Background: "#FFC140", InitiatorID: "me", Created: testEpoch.Add(-24 * time.Hour)},
		{ID: "s3", Type: signal.TypePlan, Status: signal.StatusPending, Title: "Hike", Users: []string{"Ben"},
			Height: 150, StatusColor: "#FF6B6B", Background: "#40FF9C", InitiatorID: "ben", ReceiverID: "me", Created: testEpoch.Add(-time.Hour)},
		{ID: "s4", Type: signal.TypeSignal, Status: signal.StatusPending, Title: "Call me", Users: []string{"Cy"},
			Height: 300, StatusColor: "#FF6B6B", Background: "#9C40FF", InitiatorID: "cy", Created: testEpoch.Add(-3 * time.Hour)},
	}
}

func testSnapshot() *geometry.Snapshot {
	s, err := geometry.NewSnapshot(1, 2, 38, 6)
	if err != nil {
		panic(err)
	}
	return &s
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/spotlight/internal/signal"
	"github.com/abelbrown/spotlight/internal/store"
)

// SignalBackend is the data layer the screens talk to. *api.Client
// implements it; tests use fakes.
type SignalBackend interface {
	FetchSignals(ctx context.Context) ([]signal.Signal, error)
	// FetchSignal returns nil and no error when the signal does not exist.
	FetchSignal(ctx context.Context, id string) (*signal.Signal, error)
	Respond(ctx context.Context, id string, d signal.Decision, remark string) (*signal.Signal, error)
	CreateSignal(ctx context.Context, userName, userID string, d signal.Draft) (*signal.Signal, error)
	Counts(ctx context.Context, userID string) (store.Counts, error)
	Invalidate(keys ...string)
}

// loadSignals returns a Cmd that fetches the feed.
func loadSignals(b SignalBackend) tea.Cmd {
	return func() tea.Msg {
		sigs, err := b.FetchSignals(context.Background())
		return SignalsLoaded{Signals: sigs, Err: err}
	}
}

// loadCounts returns a Cmd that fetches the profile tallies.
func loadCounts(b SignalBackend, userID string) tea.Cmd {
	return func() tea.Msg {
		c, err := b.Counts(context.Background(), userID)
		return CountsLoaded{Counts: c, Err: err}
	}
}

// Package coord runs the background refresh of the signal feed.
package coord

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/spotlight/internal/api"
	"github.com/abelbrown/spotlight/internal/logging"
	"github.com/abelbrown/spotlight/internal/otel"
	"github.com/abelbrown/spotlight/internal/signal"
	"github.com/abelbrown/spotlight/internal/ui"
)

// refreshTimeout bounds one refresh cycle.
const refreshTimeout = 30 * time.Second

// backend is the part of the API client the refresher uses.
type backend interface {
	FetchSignals(ctx context.Context) ([]signal.Signal, error)
	FetchSignal(ctx context.Context, id string) (*signal.Signal, error)
	Invalidate(keys ...string)
}

// Sender delivers messages to the UI loop. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Refresher re-lists the feed every interval and warms the detail cache.
// Uses context cancellation as the ONLY stop mechanism.
type Refresher struct {
	backend     backend
	events      *otel.Logger
	interval    time.Duration
	concurrency int
	wg          sync.WaitGroup
}

// NewRefresher creates a Refresher. An interval <= 0 disables the periodic
// loop; concurrency caps parallel detail prefetches.
func NewRefresher(b backend, events *otel.Logger, interval time.Duration, concurrency int) *Refresher {
	if events == nil {
		events = otel.NewNullLogger()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Refresher{
		backend:     b,
		events:      events,
		interval:    interval,
		concurrency: concurrency,
	}
}

// Start begins refreshing in the background. The first cycle runs after
// one interval: the timeline loads the feed itself on startup.
func (r *Refresher) Start(ctx context.Context, program Sender) {
	if r.interval <= 0 {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Refresh(ctx, program)
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (r *Refresher) Wait() {
	r.wg.Wait()
}

// Refresh runs one cycle: drop the cached feed, fetch it again, hand it to
// the UI, then prefetch every signal's detail. It returns the number of
// details prefetched.
func (r *Refresher) Refresh(ctx context.Context, program Sender) int {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	start := time.Now()
	r.backend.Invalidate(api.KeySignals)
	sigs, err := r.backend.FetchSignals(ctx)

	// Handle nil program gracefully for testing
	if program != nil {
		program.Send(ui.SignalsLoaded{Signals: sigs, Err: err, Background: true})
	}
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn("refresh failed", "err", err)
			r.events.Error(otel.KindFetchError, "coord", err)
		}
		return 0
	}

	n := r.prefetch(ctx, sigs)
	r.events.Emit(otel.Event{
		Kind:  otel.KindRefresh,
		Level: otel.LevelInfo,
		Comp:  "coord",
		Count: n,
		Dur:   time.Since(start),
	})
	return n
}

// prefetch re-reads each detail so opening a card hits a fresh cache.
func (r *Refresher) prefetch(ctx context.Context, sigs []signal.Signal) int {
	var (
		g  errgroup.Group
		mu sync.Mutex
		n  int
	)
	g.SetLimit(r.concurrency)

	for _, s := range sigs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r.backend.Invalidate(api.SignalKey(s.ID))
			sig, err := r.backend.FetchSignal(ctx, s.ID)
			if err != nil || sig == nil {
				logging.Debug("prefetch skipped", "signal", s.ID, "err", err)
				return nil // never fail the group - one miss is not a failed refresh
			}
			mu.Lock()
			n++
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return n
}

// Package api is the mock backend the screens talk to. Calls sleep for a
// simulated network latency, read and write the in-memory store, and cache
// query results until they are invalidated.
package api

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abelbrown/spotlight/internal/signal"
	"github.com/abelbrown/spotlight/internal/store"
)

// ErrNotFound is returned by mutations on a signal that does not exist.
var ErrNotFound = errors.New("api: signal not found")

// KeySignals is the cache key of the signal list.
const KeySignals = "signals"

// SignalKey is the cache key of one signal.
func SignalKey(id string) string { return "signal:" + id }

// Latency is the simulated round trip of each call.
type Latency struct {
	List    time.Duration
	Get     time.Duration
	Respond time.Duration
	Create  time.Duration
}

// DefaultLatency mirrors a slow mobile connection.
var DefaultLatency = Latency{
	List:    300 * time.Millisecond,
	Get:     200 * time.Millisecond,
	Respond: 400 * time.Millisecond,
	Create:  500 * time.Millisecond,
}

// Scale multiplies every latency by f (0 disables the delays).
func (l Latency) Scale(f float64) Latency {
	scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	return Latency{List: scale(l.List), Get: scale(l.Get), Respond: scale(l.Respond), Create: scale(l.Create)}
}

// Client is the mock API.
// Thread-safety: safe for concurrent use; the cache has its own mutex.
type Client struct {
	store   *store.Store
	latency Latency
	limiter *rate.Limiter
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]any
	rng   *rand.Rand
}

// Option configures a Client.
type Option func(*Client)

// WithLatency sets the simulated latencies.
func WithLatency(l Latency) Option { return func(c *Client) { c.latency = l } }

// WithMutationRate limits respond/create calls to r per second with the
// given burst. rate.Inf disables the limit.
func WithMutationRate(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithClock sets the time source used for new signals.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// WithSeed makes card heights of created signals reproducible.
func WithSeed(seed uint64) Option {
	return func(c *Client) { c.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// New creates a client over st.
func New(st *store.Store, opts ...Option) *Client {
	c := &Client{
		store:   st,
		latency: DefaultLatency,
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 2),
		now:     time.Now,
		cache:   make(map[string]any),
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSignals returns the feed.
func (c *Client) FetchSignals(ctx context.Context) ([]signal.Signal, error) {
	if v, ok := c.cached(KeySignals); ok {
		return cloneAll(v.([]signal.Signal)), nil
	}
	if err := sleep(ctx, c.latency.List); err != nil {
		return nil, err
	}
	sigs, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	c.put(KeySignals, cloneAll(sigs))
	return sigs, nil
}

// FetchSignal returns one signal, or nil (and no error) if it does not exist.
func (c *Client) FetchSignal(ctx context.Context, id string) (*signal.Signal, error) {
	key := SignalKey(id)
	if v, ok := c.cached(key); ok {
		sig := v.(signal.Signal).Clone()
		return &sig, nil
	}
	if err := sleep(ctx, c.latency.Get); err != nil {
		return nil, err
	}
	sig, err := c.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get signal %s: %w", id, err)
	}
	c.put(key, sig.Clone())
	return &sig, nil
}

// Respond records the current user's decision on a signal. Accepting
// settles it, rejecting declines it; the remark is stored either way. The
// caller invalidates the cache (see Invalidate).
func (c *Client) Respond(ctx context.Context, id string, d signal.Decision, remark string) (*signal.Signal, error) {
	if _, err := signal.ParseDecision(string(d)); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if err := sleep(ctx, c.latency.Respond); err != nil {
		return nil, err
	}
	status, color := d.Outcome()
	sig, err := c.store.SetOutcome(ctx, id, status, color, remark)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("respond to %s: %w", id, err)
	}
	return &sig, nil
}

// CreateSignal adds a pending signal from the current user to the top of
// the feed and invalidates the list.
func (c *Client) CreateSignal(ctx context.Context, userName, userID string, d signal.Draft) (*signal.Signal, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if err := sleep(ctx, c.latency.Create); err != nil {
		return nil, err
	}

	c.mu.Lock()
	height := 180 + c.rng.IntN(100)
	c.mu.Unlock()

	sig := signal.Signal{
		ID:          uuid.NewString(),
		Type:        d.Type,
		Status:      signal.StatusPending,
		Title:       d.Title,
		Category:    signal.CategoryFor(d.Type),
		Created:     c.now(),
		Users:       []string{userName},
		Height:      height,
		StatusColor: "#FFFFFF",
		Background:  signal.BackgroundFor(d.Type),
		Description: d.Description,
		Options:     d.Options,
		Location:    d.Location,
		Date:        d.Date,
		Time:        d.Time,
		InitiatorID: userID,
	}
	if err := c.store.Prepend(ctx, sig); err != nil {
		return nil, fmt.Errorf("create signal: %w", err)
	}
	c.Invalidate(KeySignals)
	return &sig, nil
}

// Counts returns profile tallies for userID.
func (c *Client) Counts(ctx context.Context, userID string) (store.Counts, error) {
	if err := sleep(ctx, c.latency.Get); err != nil {
		return store.Counts{}, err
	}
	return c.store.CountsFor(ctx, userID)
}

// Invalidate drops cached results so the next fetch goes to the store.
func (c *Client) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.cache, k)
	}
}

func (c *Client) cached(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache[key]
	return v, ok
}

func (c *Client) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = v
}

func cloneAll(sigs []signal.Signal) []signal.Signal {
	out := make([]signal.Signal, len(sigs))
	for i, s := range sigs {
		out[i] = s.Clone()
	}
	return out
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/spotlight/internal/signal"
)

var now = time.Date(2025, 1, 26, 9, 0, 0, 0, time.UTC)

func openSeeded(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	n, err := st.Seed(context.Background(), now)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if n != 6 {
		t.Fatalf("seeded %d signals, want 6", n)
	}
	return st
}

func TestOpen(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	var name string
	err = st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='signals'").Scan(&name)
	if err != nil {
		t.Fatalf("signals table not created: %v", err)
	}
}

func TestMemoryStoresAreIsolated(t *testing.T) {
	a := openSeeded(t)
	b, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer b.Close()

	if n, _ := b.Len(context.Background()); n != 0 {
		t.Errorf("second store sees %d signals from the first", n)
	}
	if n, _ := a.Len(context.Background()); n != 6 {
		t.Errorf("first store has %d signals, want 6", n)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	st := openSeeded(t)
	n, err := st.Seed(context.Background(), now)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 0 {
		t.Errorf("second seed inserted %d", n)
	}
}

func TestListOrderAndRoundTrip(t *testing.T) {
	st := openSeeded(t)
	sigs, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sigs) != 6 {
		t.Fatalf("got %d signals, want 6", len(sigs))
	}
	for i, want := range []string{"1", "2", "3", "4", "5", "6"} {
		if sigs[i].ID != want {
			t.Errorf("sigs[%d].ID = %s, want %s", i, sigs[i].ID, want)
		}
	}

	first := sigs[0]
	if first.Status != signal.StatusPending || first.Type != signal.TypeProposal {
		t.Errorf("first = %s/%s", first.Status, first.Type)
	}
	if first.InitiatorID != "user-002" || first.ReceiverID != "user-001" {
		t.Errorf("first parties = %s → %s", first.InitiatorID, first.ReceiverID)
	}
	if len(first.Options) != 4 || len(first.Users) != 2 {
		t.Errorf("options=%d users=%d", len(first.Options), len(first.Users))
	}
	if !first.Created.Equal(now.Add(-24 * time.Hour)) {
		t.Errorf("created = %v", first.Created)
	}
	if sigs[2].ReceiverID != "" {
		t.Errorf("wish should have no receiver, got %q", sigs[2].ReceiverID)
	}
	if sigs[4].Options != nil {
		t.Errorf("signal without options decoded as %v", sigs[4].Options)
	}
}

func TestGetNotFound(t *testing.T) {
	st := openSeeded(t)
	if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) err = %v, want ErrNotFound", err)
	}
}

func TestPrependGoesFirst(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()
	err := st.Prepend(ctx, signal.Signal{
		ID: "new", Type: signal.TypeWish, Status: signal.StatusPending,
		Title: "Boba", Created: now, Height: 200,
	})
	if err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	sigs, _ := st.List(ctx)
	if sigs[0].ID != "new" {
		t.Errorf("first = %s, want new", sigs[0].ID)
	}
	if err := st.Prepend(ctx, signal.Signal{ID: "new", Title: "dup"}); err == nil {
		t.Error("duplicate Prepend should fail")
	}
}

func TestSetOutcome(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()

	got, err := st.SetOutcome(ctx, "1", signal.StatusSettled, "#FFD700", "see you there")
	if err != nil {
		t.Fatalf("SetOutcome: %v", err)
	}
	if got.Status != signal.StatusSettled || got.StatusColor != "#FFD700" || got.Remark != "see you there" {
		t.Errorf("updated = %+v", got)
	}

	if _, err := st.SetOutcome(ctx, "nope", signal.StatusDeclined, "", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetOutcome(nope) err = %v, want ErrNotFound", err)
	}
}

func TestCountsFor(t *testing.T) {
	st := openSeeded(t)
	c, err := st.CountsFor(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("CountsFor: %v", err)
	}
	want := Counts{Initiated: 3, Received: 2, Pending: 1}
	if c != want {
		t.Errorf("counts = %+v, want %+v", c, want)
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := openSeeded(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := st.List(ctx); err != nil {
				t.Errorf("List: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := st.SetOutcome(ctx, "4", signal.StatusDeclined, "#FF6B6B", ""); err != nil {
				t.Errorf("SetOutcome: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestParseSeedRejectsBadAge(t *testing.T) {
	data := []byte(`
[[signal]]
id = "x"
title = "t"
age = "yesterday"
`)
	if _, err := parseSeed(data, now); err == nil {
		t.Error("bad age should fail")
	}
}

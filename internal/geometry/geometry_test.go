package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestNewSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		x, y    float64
		w, h    float64
		wantErr bool
	}{
		{"valid", 10, 200, 150, 180, false},
		{"zero origin", 0, 0, 1, 1, false},
		{"negative x", -1, 0, 10, 10, true},
		{"negative height", 0, 0, 10, -3, true},
		{"nan width", 0, 0, math.NaN(), 10, true},
		{"inf y", 0, math.Inf(1), 10, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Snapshot{X: tt.x, Y: tt.y, Width: tt.w, Height: tt.h}
			if raw.Valid() == tt.wantErr {
				t.Errorf("Valid() = %v, want %v", raw.Valid(), !tt.wantErr)
			}
			s, err := NewSnapshot(tt.x, tt.y, tt.w, tt.h)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSnapshot) {
					t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.X != tt.x || s.Y != tt.y || s.Width != tt.w || s.Height != tt.h {
				t.Errorf("snapshot fields not preserved: %+v", s)
			}
		})
	}
}

func TestMeasureMountedCard(t *testing.T) {
	r := NewRegistry()
	r.Record("1", Rect{X: 2, Y: 5, W: 30, H: 8})

	snap, ok := Measure(r, "1")
	if !ok {
		t.Fatal("expected measurement for mounted card")
	}
	want := Snapshot{X: 2, Y: 5, Width: 30, Height: 8}
	if snap != want {
		t.Errorf("Measure = %+v, want %+v", snap, want)
	}
}

func TestMeasureUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Record("empty", Rect{X: 1, Y: 1, W: 0, H: 4})

	if _, ok := Measure(r, "missing"); ok {
		t.Error("unmounted card should not be measurable")
	}
	if _, ok := Measure(r, "empty"); ok {
		t.Error("zero-area card should not be measurable")
	}
	if _, ok := Measure(nil, "1"); ok {
		t.Error("nil registry should not be measurable")
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry()
	r.Record("a", Rect{W: 1, H: 1})
	r.Record("b", Rect{W: 1, H: 1})
	r.Reset()
	for _, id := range []string{"a", "b"} {
		if _, ok := r.Lookup(id); ok {
			t.Errorf("%s still recorded after Reset", id)
		}
	}
	r.Record("a", Rect{W: 2, H: 2})
	if rect, ok := r.Lookup("a"); !ok || rect.W != 2 {
		t.Errorf("Lookup(a) = %+v, %v after re-recording", rect, ok)
	}
}

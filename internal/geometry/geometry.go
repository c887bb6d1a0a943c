// Package geometry captures the on-screen bounds of rendered timeline cards.
//
// A Snapshot is taken synchronously when a card is pressed and handed to the
// detail screen as a navigation parameter. "No snapshot" is a first-class
// case: Measure reports ok=false and callers navigate without a transition.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSnapshot is returned by NewSnapshot for negative or non-finite bounds.
var ErrInvalidSnapshot = errors.New("geometry: invalid snapshot")

// Snapshot is an immutable record of a card's bounding box in absolute
// screen coordinates (terminal cells).
type Snapshot struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewSnapshot validates and returns a Snapshot.
func NewSnapshot(x, y, width, height float64) (Snapshot, error) {
	for _, v := range [...]float64{x, y, width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Snapshot{}, fmt.Errorf("%w: {%v %v %v %v}", ErrInvalidSnapshot, x, y, width, height)
		}
	}
	return Snapshot{X: x, Y: y, Width: width, Height: height}, nil
}

// Valid reports whether all fields are non-negative finite numbers.
func (s Snapshot) Valid() bool {
	_, err := NewSnapshot(s.X, s.Y, s.Width, s.Height)
	return err == nil
}

// Viewport is the full-screen target of the expansion.
type Viewport struct {
	Width  float64
	Height float64
}

// Rect is an integer cell rectangle as laid out by the renderer.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Registry holds the rects of the cards rendered in the most recent frame.
// The timeline writes it while rendering; the press handler reads it. Both
// run on the UI loop, so it is not safe for concurrent use.
type Registry struct {
	rects map[string]Rect
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rects: make(map[string]Rect)}
}

// Reset forgets every recorded rect. Called at the start of each layout pass.
func (r *Registry) Reset() {
	clear(r.rects)
}

// Record stores the on-screen rect of a card.
func (r *Registry) Record(id string, rect Rect) {
	r.rects[id] = rect
}

// Lookup returns the last recorded rect for id.
func (r *Registry) Lookup(id string) (Rect, bool) {
	rect, ok := r.rects[id]
	return rect, ok
}

// Measure returns the absolute bounds of a rendered card. ok is false when
// the card is not mounted (never laid out, scrolled off screen) or its rect
// is degenerate; that is the degraded no-animation path, not an error.
func Measure(r *Registry, id string) (Snapshot, bool) {
	if r == nil {
		return Snapshot{}, false
	}
	rect, ok := r.Lookup(id)
	if !ok || rect.Empty() {
		return Snapshot{}, false
	}
	snap, err := NewSnapshot(float64(rect.X), float64(rect.Y), float64(rect.W), float64(rect.H))
	if err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

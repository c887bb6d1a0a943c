// Package morph computes the rectangle of the flying card actor during the
// spotlight transition. Everything here is a pure function of its inputs so
// the renderer can call it every frame and tests can call it anywhere.
package morph

import (
	"math"

	"github.com/abelbrown/spotlight/internal/geometry"
)

// RestingRadius is a timeline card's corner radius in design units.
const RestingRadius = 16.0

// opacity keyframes: fast to 0.8 by the midpoint, then settle to 1, so the
// background never shows through the actor early in the morph.
var (
	opacityInput  = [...]float64{0, 0.5, 1}
	opacityOutput = [...]float64{0, 0.8, 1}
)

// Frame is the actor's visual state at one instant.
type Frame struct {
	Left         float64
	Top          float64
	Width        float64
	Height       float64
	CornerRadius float64
	Opacity      float64
}

// Compute returns the actor frame for progress (0 = resting card, 1 = full
// screen). Geometry and radius are linear in progress and extrapolate past
// the ends; opacity follows the three-point curve and is clamped to [0,1].
func Compute(snap geometry.Snapshot, progress float64, vp geometry.Viewport) Frame {
	return Frame{
		Left:         lerp(snap.X, 0, progress),
		Top:          lerp(snap.Y, 0, progress),
		Width:        lerp(snap.Width, vp.Width, progress),
		Height:       lerp(snap.Height, vp.Height, progress),
		CornerRadius: lerp(RestingRadius, 0, progress),
		Opacity:      clamp(Interpolate(progress, opacityInput[:], opacityOutput[:]), 0, 1),
	}
}

// Interpolate maps x through the piecewise-linear curve defined by the
// increasing breakpoints in and their values out. Outside the range the
// first or last segment is extended. in and out must have equal length >= 2.
func Interpolate(x float64, in, out []float64) float64 {
	n := len(in)
	if n < 2 || len(out) != n {
		return math.NaN()
	}
	for i, v := range in {
		if x == v {
			return out[i]
		}
	}
	seg := n - 2
	for i := 1; i < n-1; i++ {
		if x < in[i] {
			seg = i - 1
			break
		}
	}
	x0, x1 := in[seg], in[seg+1]
	y0, y1 := out[seg], out[seg+1]
	if x1 == x0 {
		return y0
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// Cells rounds the frame to an integer cell rectangle for rendering. Width
// and height are at least 1 so a visible actor never disappears.
func (f Frame) Cells() geometry.Rect {
	r := geometry.Rect{
		X: int(math.Round(f.Left)),
		Y: int(math.Round(f.Top)),
		W: int(math.Round(f.Width)),
		H: int(math.Round(f.Height)),
	}
	if r.W < 1 {
		r.W = 1
	}
	if r.H < 1 {
		r.H = 1
	}
	return r
}

// Rounded reports whether the renderer should draw rounded corners. A
// terminal has no sub-cell radii, so anything above one cell counts.
func (f Frame) Rounded() bool {
	return f.CornerRadius >= 1
}

// lerp is exact at both ends: lerp(a, b, 0) == a and lerp(a, b, 1) == b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

package motion

import "math"

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity curve.
func Linear(t float64) float64 { return t }

// InOutCubic accelerates then decelerates with a cubic curve.
func InOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// OutCubic decelerates with a cubic curve.
func OutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// InOutQuad is the default curve for short property tweens.
func InOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

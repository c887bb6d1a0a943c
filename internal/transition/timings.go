package transition

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimings is wrapped by Timings.Validate.
var ErrInvalidTimings = errors.New("transition: invalid timings")

// Timings are the durations of the spotlight transition. The reverse-path
// stagger values were tuned by eye, so all of them are configurable.
type Timings struct {
	MorphDuration        time.Duration // card → full screen, and back
	RevealDelay          time.Duration // from morph start to content start
	RevealDuration       time.Duration // content 0→1 after a morph
	DirectRevealDuration time.Duration // content 0→1 with no morph
	FadeOutDuration      time.Duration // content opacity 1→0 on exit
	ContentCollapse      time.Duration // content 1→0 on exit
	CollapseStagger      time.Duration // fade start → morph reverse start
	RestingElevation     float64
}

// DefaultTimings are the values the transition was designed with.
var DefaultTimings = Timings{
	MorphDuration:        700 * time.Millisecond,
	RevealDelay:          600 * time.Millisecond,
	RevealDuration:       400 * time.Millisecond,
	DirectRevealDuration: 200 * time.Millisecond,
	FadeOutDuration:      150 * time.Millisecond,
	ContentCollapse:      300 * time.Millisecond,
	CollapseStagger:      100 * time.Millisecond,
	RestingElevation:     5,
}

// Validate rejects negative durations and a reveal that would start after
// the forward sequence is already over.
func (t Timings) Validate() error {
	named := []struct {
		name string
		d    time.Duration
	}{
		{"morph", t.MorphDuration},
		{"reveal_delay", t.RevealDelay},
		{"reveal", t.RevealDuration},
		{"direct_reveal", t.DirectRevealDuration},
		{"fade_out", t.FadeOutDuration},
		{"content_collapse", t.ContentCollapse},
		{"collapse_stagger", t.CollapseStagger},
	}
	for _, n := range named {
		if n.d < 0 {
			return fmt.Errorf("%w: %s is negative (%v)", ErrInvalidTimings, n.name, n.d)
		}
	}
	if t.RevealDelay > t.MorphDuration+t.RevealDuration {
		return fmt.Errorf("%w: reveal delay %v exceeds morph+reveal %v",
			ErrInvalidTimings, t.RevealDelay, t.MorphDuration+t.RevealDuration)
	}
	if t.RestingElevation < 0 {
		return fmt.Errorf("%w: resting elevation is negative", ErrInvalidTimings)
	}
	return nil
}

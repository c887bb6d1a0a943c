// Package transition sequences the spotlight transition of a detail screen.
//
// The Sequencer knows the choreography: which clock starts when, on which
// curve, for how long. The Controller owns the phase machine on top of it
// and is the only code that decides when the screen may leave the
// navigation stack.
//
// Everything runs on the UI loop. Callbacks fire from motion.Scheduler's
// Advance, which the host calls on every frame message.
package transition

import (
	"github.com/abelbrown/spotlight/internal/motion"
)

// Clocks are the animated values a detail screen renders from.
type Clocks struct {
	Morph     *motion.Clock // actor progress: 0 = card, 1 = full screen
	Content   *motion.Clock // content reveal: opacity and slide
	Fade      *motion.Clock // exit multiplier on content opacity, 1 at rest
	Elevation *motion.Clock // card shadow depth
}

// NewClocks registers the four clocks on s.
func NewClocks(s *motion.Scheduler) Clocks {
	return Clocks{
		Morph:     s.NewClock("morph", 0),
		Content:   s.NewClock("content", 0),
		Fade:      s.NewClock("fade", 1),
		Elevation: s.NewClock("elevation", 0),
	}
}

// Values returns every clock's current value keyed by its name.
func (c Clocks) Values() map[string]any {
	out := make(map[string]any, 4)
	for _, clk := range [...]*motion.Clock{c.Morph, c.Content, c.Fade, c.Elevation} {
		out[clk.Name()] = clk.Read()
	}
	return out
}

// ContentOpacity is the effective opacity of the detail content.
func (c Clocks) ContentOpacity() float64 {
	return c.Content.Read() * c.Fade.Read()
}

// Sequencer starts and chains the clocks of one detail screen.
type Sequencer struct {
	sched   *motion.Scheduler
	clocks  Clocks
	timings Timings

	reveal *motion.Timer
}

// NewSequencer binds a sequencer to its scheduler and clocks.
func NewSequencer(s *motion.Scheduler, c Clocks, t Timings) *Sequencer {
	return &Sequencer{sched: s, clocks: c, timings: t}
}

// Clocks returns the clocks the sequencer drives.
func (q *Sequencer) Clocks() Clocks { return q.clocks }

// Expand runs the forward sequence from a measured card. The content clock
// starts RevealDelay after the morph starts (not after it ends) so the two
// cross-dissolve. The elevation ramp starts from the content completion,
// and revealed runs right after it.
func (q *Sequencer) Expand(revealed func()) {
	t := q.timings
	q.clocks.Morph.Animate(1, t.MorphDuration, motion.InOutCubic, nil)
	q.reveal = q.sched.After(t.RevealDelay, func() {
		q.clocks.Content.Animate(1, t.RevealDuration, motion.InOutCubic, func() {
			q.raise()
			if revealed != nil {
				revealed()
			}
		})
	})
}

// Reveal runs the short forward sequence used without a snapshot: content
// only, no morph.
func (q *Sequencer) Reveal(revealed func()) {
	q.clocks.Content.Animate(1, q.timings.DirectRevealDuration, motion.OutCubic, func() {
		q.raise()
		if revealed != nil {
			revealed()
		}
	})
}

// Collapse runs the reverse sequence. Elevation drops to zero before
// anything else moves, then content fades, and the morph reverses after the
// stagger. done runs when the morph is back at 0, or when the content is
// gone if there is no morph.
func (q *Sequencer) Collapse(morph bool, done func()) {
	t := q.timings
	q.reveal.Cancel()
	q.clocks.Elevation.Set(0)

	q.clocks.Fade.Animate(0, t.FadeOutDuration, motion.InOutQuad, nil)
	if !morph {
		q.clocks.Content.Animate(0, t.ContentCollapse, motion.InOutCubic, done)
		return
	}
	q.clocks.Content.Animate(0, t.ContentCollapse, motion.InOutCubic, nil)
	q.sched.After(t.CollapseStagger, func() {
		q.clocks.Morph.Animate(0, t.MorphDuration, motion.InOutCubic, done)
	})
}

// Lower zeroes elevation at once, used while a state change is pending.
func (q *Sequencer) Lower() {
	q.clocks.Elevation.Set(0)
}

// Raise springs elevation back to its resting value.
func (q *Sequencer) Raise() {
	q.raise()
}

func (q *Sequencer) raise() {
	q.clocks.Elevation.Spring(q.timings.RestingElevation, nil)
}

package ui

// Scroll thresholds for the FAB, in layout units (rowUnits per row).
const (
	fabScrollThreshold = 10.0
	fabHideBelow       = 50.0
)

// FabVisibility is the shared state of the "new signal" button. The
// timeline is its only writer (Observe); the app chrome reads Visible.
type FabVisibility struct {
	visible bool
	last    float64
}

// NewFabVisibility returns a visible FAB at scroll offset 0.
func NewFabVisibility() *FabVisibility {
	return &FabVisibility{visible: true}
}

// Visible reports whether the button is shown.
func (f *FabVisibility) Visible() bool { return f.visible }

// Observe records a new scroll offset. Moving more than the threshold down
// (past the top band) hides the button; moving up shows it. Smaller moves
// are ignored and do not update the reference offset.
func (f *FabVisibility) Observe(offset float64) {
	delta := offset - f.last
	if delta < 0 {
		delta = -delta
	}
	if delta <= fabScrollThreshold {
		return
	}
	switch {
	case offset > f.last && offset > fabHideBelow:
		f.visible = false
	case offset < f.last:
		f.visible = true
	}
	f.last = offset
}

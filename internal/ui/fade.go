package ui

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// blend mixes from toward to by t in [0,1], in Lab space. A colour that
// does not parse yields to unchanged.
func blend(from, to string, t float64) lipgloss.Color {
	a, err := colorful.Hex(from)
	if err != nil {
		return lipgloss.Color(to)
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return lipgloss.Color(to)
	}
	t = math.Max(0, math.Min(1, t))
	return lipgloss.Color(a.BlendLab(b, t).Clamped().Hex())
}

// fade is c drawn at opacity over the app background. A terminal cell has
// no alpha, so opacity becomes a blend toward the background.
func fade(c string, opacity float64) lipgloss.Color {
	return blend(colorBackground, c, opacity)
}

// palette is the detail content's colours at one opacity.
type palette struct {
	text    lipgloss.Color
	muted   lipgloss.Color
	surface lipgloss.Color
	primary lipgloss.Color
	accent  lipgloss.Color // the signal's status colour
}

func newPalette(opacity float64, statusColor string) palette {
	if _, err := colorful.Hex(statusColor); err != nil {
		statusColor = colorText
	}
	return palette{
		text:    fade(colorText, opacity),
		muted:   fade(colorMuted, opacity),
		surface: fade(colorSurface, opacity),
		primary: fade(colorPrimary, opacity),
		accent:  fade(statusColor, opacity),
	}
}

package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/abelbrown/spotlight/internal/signal"
)

// cardInk is the text colour on a card's tinted background.
const cardInk = "#141414"

type cardOptions struct {
	selected bool
	rounded  bool
	opacity  float64
	now      time.Time
}

// cardBackground is the card tint, or the surface colour if it has none.
func cardBackground(sig signal.Signal) string {
	if _, err := colorful.Hex(sig.Background); err != nil {
		return colorSurface
	}
	return sig.Background
}

// age is the humanized time since the signal was created.
func age(created, now time.Time) string {
	if created.IsZero() {
		return ""
	}
	return humanize.RelTime(created, now, "ago", "from now")
}

// renderCard draws a signal card exactly w×h cells. The timeline uses it at
// full opacity; the detail actor uses it at every size the morph passes
// through.
func renderCard(sig signal.Signal, w, h int, o cardOptions) string {
	bg := fade(cardBackground(sig), o.opacity)
	if w < 4 || h < 3 {
		return lipgloss.NewStyle().Background(bg).Width(w).Height(h).Render("")
	}

	border := lipgloss.NormalBorder()
	if o.rounded {
		border = lipgloss.RoundedBorder()
	}
	edge := colorMuted
	if o.selected {
		edge = colorHighlight
	}

	innerW, innerH := w-2, h-2
	ink := fade(cardInk, o.opacity)
	text := lipgloss.NewStyle().Foreground(ink).Background(bg)

	meta := sig.Category.Icon + " " + sig.Category.Text
	dot := lipgloss.NewStyle().Foreground(fade(sig.StatusColor, o.opacity)).Background(bg).Render("●")
	metaW := innerW - 2
	lines := []string{text.Render(ansi.Truncate(meta, max(metaW, 0), "…")) + text.Render(" ") + dot}

	title := lipgloss.NewStyle().Width(innerW).Render(sig.Title)
	for _, ln := range strings.Split(title, "\n") {
		if len(lines) >= innerH-1 {
			break
		}
		lines = append(lines, text.Bold(true).Render(strings.TrimRight(ln, " ")))
	}

	footer := age(sig.Created, o.now)
	if len(sig.Users) > 0 {
		footer = sig.Users[0] + " · " + footer
	}
	for len(lines) < innerH-1 {
		lines = append(lines, "")
	}
	if innerH > 1 {
		lines = append(lines, text.Faint(true).Render(ansi.Truncate(footer, innerW, "…")))
	}

	body := fit(strings.Join(lines, "\n"), innerW, innerH)
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(fade(edge, o.opacity)).
		BorderBackground(lipgloss.Color(colorBackground)).
		Background(bg).
		Foreground(ink).
		Width(innerW).
		Height(innerH).
		Render(body)
}

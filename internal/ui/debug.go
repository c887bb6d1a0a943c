package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/spotlight/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing transition stats, the last
// phase changes and recent events. Pure function with no side effects.
// Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int, now time.Time) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()

	// --- Stats section (keyed lookups, not map iteration) ---
	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Stats"))
	lines = append(lines, fmt.Sprintf("  Transitions: %d started, %d cancelled, %d phase changes",
		stats[otel.KindAnimStart], stats[otel.KindAnimCancel], stats[otel.KindPhaseChange]))
	lines = append(lines, fmt.Sprintf("  Navigation:  %d push, %d back, %d pop, %d failed, %d unmeasured",
		stats[otel.KindNavPush], stats[otel.KindNavBack], stats[otel.KindNavPop],
		stats[otel.KindNavPopFailed], stats[otel.KindMeasureMiss]))
	lines = append(lines, fmt.Sprintf("  Fetches:     %d complete, %d errors, %d refreshes",
		stats[otel.KindFetchComplete], stats[otel.KindFetchError], stats[otel.KindRefresh]))
	lines = append(lines, fmt.Sprintf("  Mutations:   %d responded, %d failed, %d created",
		stats[otel.KindRespondComplete], stats[otel.KindRespondError], stats[otel.KindCreateComplete]))
	lines = append(lines, fmt.Sprintf("  Buffer:      %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	// --- Phase changes ---
	lines = append(lines, DebugHeaderStyle.Render("Phases"))
	for _, e := range ring.LastWithPrefix("phase.", 5) {
		lines = append(lines, fmt.Sprintf("  %6s  #%d %-10s %s → %s",
			formatAge(now.Sub(e.Time)), e.Screen, truncateRunes(e.SignalID, 10), e.From, e.To))
	}
	lines = append(lines, "")

	// --- Recent events section ---
	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(now.Sub(e.Time)), string(e.Kind))
		if e.SignalID != "" {
			line += "  sig:" + truncateRunes(e.SignalID, 8)
		}
		if e.Source != "" {
			line += "  " + e.Source
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 84
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	content := strings.Join(lines, "\n")
	return DebugPanel.Width(panelWidth).Render(content)
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// truncateRunes cuts s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}

package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// canvas is a fixed block of terminal lines that rendered blocks are drawn
// onto at cell positions. Blocks are clipped at every edge.
type canvas struct {
	w, h  int
	lines []string
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 0), max(h, 0)
	c := &canvas{w: w, h: h, lines: make([]string, h)}
	blank := strings.Repeat(" ", w)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// draw places block with its top-left cell at (x, y). Lines shorter than
// the block's widest line are padded so the block is opaque.
func (c *canvas) draw(block string, x, y int) {
	c.drawLines(strings.Split(block, "\n"), x, y, false)
}

// drawText is draw for text over a background: rows that are blank are
// skipped so what lies underneath shows through.
func (c *canvas) drawText(block string, x, y int) {
	c.drawLines(strings.Split(block, "\n"), x, y, true)
}

func (c *canvas) drawLines(lines []string, x, y int, skipBlank bool) {
	bw := 0
	for _, ln := range lines {
		bw = max(bw, ansi.StringWidth(ln))
	}
	if bw == 0 {
		return
	}
	for i, seg := range lines {
		row := y + i
		if row < 0 || row >= c.h {
			continue
		}
		if skipBlank && strings.TrimSpace(ansi.Strip(seg)) == "" {
			continue
		}
		if n := ansi.StringWidth(seg); n < bw {
			seg += strings.Repeat(" ", bw-n)
		}
		left, right := x, x+bw
		if left < 0 {
			seg = ansi.Cut(seg, -left, bw)
			left = 0
		}
		if right > c.w {
			seg = ansi.Cut(seg, 0, c.w-left)
			right = c.w
		}
		if left >= right {
			continue
		}
		line := c.lines[row]
		c.lines[row] = ansi.Cut(line, 0, left) + seg + ansi.Cut(line, right, c.w)
	}
}

func (c *canvas) String() string {
	return strings.Join(c.lines, "\n")
}

// fit pads or cuts s to exactly h lines of at most w cells.
func fit(s string, w, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for i, ln := range lines {
		if ansi.StringWidth(ln) > w {
			lines[i] = ansi.Truncate(ln, w, "")
		}
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/spotlight/internal/signal"
)

// contentRise is how many rows below its resting place the content starts
// while it fades in.
const contentRise = 2

// View renders the detail screen for the current clock values.
func (h *DetailHost) View() string {
	if h.width <= 0 || h.height <= 0 {
		return ""
	}
	if h.loading {
		return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center,
			h.spinner.View()+MutedStyle.Render(" Loading signal..."))
	}
	if h.sig == nil {
		return h.errorView()
	}

	c := newCanvas(h.width, h.height)
	if f, ok := h.actorFrame(); ok && f.Opacity > 0 {
		r := f.Cells()
		c.draw(renderCard(*h.sig, r.W, r.H, cardOptions{
			rounded: f.Rounded(),
			opacity: f.Opacity,
			now:     h.cfg.Now(),
		}), r.X, r.Y)
	}

	clocks := h.ctrl.Clocks()
	opacity := clocks.ContentOpacity()
	if opacity > 0 {
		shift := int(math.Round(contentRise * (1 - clocks.Content.Read())))
		c.drawText(h.renderContent(opacity, clocks.Elevation.Read()), 0, shift)
	}

	if h.confirm != "" {
		dialog := h.renderConfirm()
		dw, dh := lipgloss.Width(dialog), lipgloss.Height(dialog)
		c.draw(dialog, (h.width-dw)/2, (h.height-dh)/2)
	}
	if h.alert != "" {
		c.draw(AlertBanner.Width(h.width).Render(h.alert), 0, h.height-1)
	}
	return c.String()
}

func (h *DetailHost) errorView() string {
	msg := "Signal not found."
	if h.loadErr != nil {
		msg = "Could not load this signal."
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		ErrorStyle.Render(msg),
		MutedStyle.Render("esc or b to go back"),
	)
	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, body)
}

// renderContent lays out the detail sections at the given opacity. The
// sections that carry elevation get a shadow whose strength follows the
// elevation clock.
func (h *DetailHost) renderContent(opacity, elevation float64) string {
	sig := *h.sig
	pal := newPalette(opacity, sig.StatusColor)
	inner := max(h.width-4, 10)

	text := lipgloss.NewStyle().Foreground(pal.text)
	muted := lipgloss.NewStyle().Foreground(pal.muted)
	section := lipgloss.NewStyle().Foreground(pal.text).Bold(true)

	var blocks []string
	blocks = append(blocks, text.Bold(true).Render("‹ Details"), "")

	if len(sig.Users) > 0 {
		dot := lipgloss.NewStyle().Foreground(pal.accent).Render("●")
		blocks = append(blocks, dot+" "+text.Bold(true).Render(sig.Users[0])+"  "+muted.Render(sig.Status.Label()))
	}
	if sig.Title != "" {
		blocks = append(blocks, "", text.Bold(true).Width(inner).Render(sig.Title))
	}
	meta := sig.Category.Icon + " " + sig.Category.Text
	if a := age(sig.Created, h.cfg.Now()); a != "" {
		meta += "   ◷ " + a
	}
	blocks = append(blocks, muted.Render(meta), "")

	lift := 0.0
	if rest := h.cfg.Timings.RestingElevation; rest > 0 {
		lift = elevation / rest
	}
	box := func(body string, lifted bool) string {
		b := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.surface).
			Padding(0, 1).
			Width(inner - 2).
			Render(body)
		if lifted {
			b = withShadow(b, lift, opacity)
		}
		return b
	}

	if sig.Description != "" {
		blocks = append(blocks, box(section.Render("Description")+"\n"+text.Width(inner-6).Render(sig.Description), false))
	}

	status := section.Render("Status") + "\n" + muted.Render("⚑ Status: "+sig.Status.Label())
	if sig.Type == signal.TypeProposal && len(sig.Options) > 0 {
		status += "\n\n" + section.Render("Options:")
		for i, opt := range sig.Options {
			num := lipgloss.NewStyle().Foreground(pal.primary).Bold(true).Render(fmt.Sprintf("%d", i+1))
			status += "\n " + num + " " + muted.Render(opt)
		}
	}
	if where := strings.TrimSpace(strings.Join([]string{sig.Location, sig.Date, sig.Time}, " ")); where != "" {
		status += "\n" + muted.Render("⌖ "+where)
	}
	blocks = append(blocks, box(status, true))

	if sig.Remark != "" {
		blocks = append(blocks, box(section.Render("Remark")+"\n"+muted.Width(inner-6).Render(sig.Remark), true))
	}

	if h.canRespond() {
		field := h.remark.View()
		if !h.remark.Focused() {
			field = muted.Render("m to add a remark") + "\n" + field
		}
		blocks = append(blocks, box(field, true))

		accept := lipgloss.NewStyle().Foreground(lipgloss.Color(colorBackground)).Background(pal.primary).Padding(0, 2)
		reject := lipgloss.NewStyle().Foreground(pal.text).Padding(0, 2)
		label := "[a] Accept"
		if h.busy {
			label = "Working..."
		}
		blocks = append(blocks, accept.Render(label)+"  "+reject.Render("[x] Decline"))
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(blocks, "\n"))
}

// withShadow adds a one-cell drop shadow whose darkness is strength in
// [0,1], scaled by opacity.
func withShadow(block string, strength, opacity float64) string {
	strength = math.Max(0, math.Min(1, strength)) * opacity
	if strength <= 0 {
		return block
	}
	shade := lipgloss.NewStyle().Foreground(blend(colorBackground, colorShadow, strength)).Background(lipgloss.Color(colorBackground))

	w, ht := lipgloss.Width(block), lipgloss.Height(block)
	c := newCanvas(w+1, ht+1)
	col := strings.TrimSuffix(strings.Repeat(shade.Render("▒")+"\n", ht), "\n")
	c.draw(col, w, 1)
	c.draw(shade.Render(strings.Repeat("▒", w)), 1, ht)
	c.draw(block, 0, 0)
	return c.String()
}

func (h *DetailHost) renderConfirm() string {
	d := h.confirm
	title := "Accept this signal?"
	if d == signal.DecisionRejected {
		title = "Decline this signal?"
	}
	body := Header.Render(title)
	if r := strings.TrimSpace(h.remark.Value()); r != "" {
		body += "\n" + MutedStyle.Render("Remark: "+r)
	}
	body += "\n\n" + StatusBarKey.Render("y") + StatusBarText.Render(" "+d.Verb()+"   ") +
		StatusBarKey.Render("n") + StatusBarText.Render(" cancel")
	return DialogBox.Render(body)
}

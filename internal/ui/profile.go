package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/spotlight/internal/auth"
	"github.com/abelbrown/spotlight/internal/logging"
	"github.com/abelbrown/spotlight/internal/nav"
	"github.com/abelbrown/spotlight/internal/store"
)

// Profile shows the current user and their signal counts.
type Profile struct {
	backend   SignalBackend
	navigator nav.Navigator
	user      auth.User

	counts store.Counts
	loaded bool
	err    error
	width  int
	height int
}

// NewProfile creates the profile screen.
func NewProfile(b SignalBackend, n nav.Navigator, user auth.User) *Profile {
	return &Profile{backend: b, navigator: n, user: user}
}

// Init loads the counts.
func (p *Profile) Init() tea.Cmd {
	return loadCounts(p.backend, p.user.ID)
}

// SetSize sets the screen area.
func (p *Profile) SetSize(width, height int) { p.width, p.height = width, height }

// Capturing reports false.
func (p *Profile) Capturing() bool { return false }

// Update handles messages.
func (p *Profile) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case CountsLoaded:
		p.loaded = true
		p.counts, p.err = msg.Counts, msg.Err
	case tea.KeyMsg:
		if key.Matches(msg, keys.Return) {
			if err := p.navigator.Pop(); err != nil {
				logging.Warn("leave profile", "err", err)
			}
		}
	}
	return nil
}

// View renders the profile.
func (p *Profile) View() string {
	stat := func(n int, label string) string {
		num := "-"
		if p.loaded && p.err == nil {
			num = fmt.Sprintf("%d", n)
		}
		return lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorPrimary)).Render(num),
			MutedStyle.Render(label),
		)
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		Header.Render(p.user.Name),
		MutedStyle.Render(p.user.ID),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			stat(p.counts.Initiated, "sent"), "    ",
			stat(p.counts.Received, "received"), "    ",
			stat(p.counts.Pending, "waiting on you"),
		),
	)
	if p.err != nil {
		body += "\n\n" + ErrorStyle.Render("Error: "+p.err.Error())
	}
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, body)
}

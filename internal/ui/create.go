package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/spotlight/internal/auth"
	"github.com/abelbrown/spotlight/internal/logging"
	"github.com/abelbrown/spotlight/internal/nav"
	"github.com/abelbrown/spotlight/internal/otel"
	"github.com/abelbrown/spotlight/internal/signal"
)

// Form fields in focus order. fieldType is the type selector row.
const (
	fieldType = iota
	fieldTitle
	fieldDescription
	fieldLocation
	fieldDate
	fieldTime
	fieldOptions
	fieldCount
)

// CreateForm is the "new signal" screen. It keeps keyboard focus for its
// fields, so it handles its own back key.
type CreateForm struct {
	backend   SignalBackend
	navigator nav.Navigator
	user      auth.User
	events    *otel.Logger

	typeIdx int
	inputs  map[int]*textinput.Model
	desc    textarea.Model
	focus   int

	busy bool
	err  error

	width  int
	height int
}

// NewCreateForm creates the form for user.
func NewCreateForm(b SignalBackend, n nav.Navigator, user auth.User, events *otel.Logger) *CreateForm {
	newInput := func(placeholder string, limit int) *textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Width = 40
		return &ti
	}

	desc := textarea.New()
	desc.Placeholder = "What is it about?"
	desc.ShowLineNumbers = false
	desc.SetHeight(3)
	desc.SetWidth(40)

	return &CreateForm{
		backend:   b,
		navigator: n,
		user:      user,
		events:    events,
		inputs: map[int]*textinput.Model{
			fieldTitle:    newInput("Title", 80),
			fieldLocation: newInput("Where (optional)", 80),
			fieldDate:     newInput("Date, e.g. 2025-02-01 (optional)", 20),
			fieldTime:     newInput("Time, e.g. 19:00 (optional)", 20),
			fieldOptions:  newInput("Options, comma separated (proposals)", 200),
		},
		desc:  desc,
		focus: fieldTitle,
	}
}

// Init focuses the title.
func (f *CreateForm) Init() tea.Cmd {
	return f.setFocus(fieldTitle)
}

// SetSize sets the screen area.
func (f *CreateForm) SetSize(width, height int) {
	f.width, f.height = width, height
	w := max(width-22, 20)
	for _, in := range f.inputs {
		in.Width = w
	}
	f.desc.SetWidth(w)
}

// Capturing is always true: every key belongs to the form.
func (f *CreateForm) Capturing() bool { return true }

// Type returns the selected signal type.
func (f *CreateForm) Type() signal.Type { return signal.CreatableTypes[f.typeIdx] }

// Draft builds the draft from the current field values.
func (f *CreateForm) Draft() signal.Draft {
	d := signal.Draft{
		Title:       strings.TrimSpace(f.inputs[fieldTitle].Value()),
		Description: strings.TrimSpace(f.desc.Value()),
		Location:    strings.TrimSpace(f.inputs[fieldLocation].Value()),
		Date:        strings.TrimSpace(f.inputs[fieldDate].Value()),
		Time:        strings.TrimSpace(f.inputs[fieldTime].Value()),
		Type:        f.Type(),
	}
	if d.Type == signal.TypeProposal {
		for _, opt := range strings.Split(f.inputs[fieldOptions].Value(), ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				d.Options = append(d.Options, opt)
			}
		}
	}
	return d
}

// Update handles messages.
func (f *CreateForm) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SignalCreated:
		f.busy = false
		if msg.Err != nil {
			f.err = msg.Err
			f.events.Error(otel.KindCreateError, "create", msg.Err)
			return nil
		}
		if msg.Signal != nil {
			f.events.Emit(otel.Event{Kind: otel.KindCreateComplete, Level: otel.LevelInfo, Comp: "create", SignalID: msg.Signal.ID})
		}
		f.leave()
		return nil

	case tea.KeyMsg:
		return f.handleKey(msg)
	}
	return f.updateFocused(msg)
}

func (f *CreateForm) handleKey(msg tea.KeyMsg) tea.Cmd {
	if f.busy {
		return nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		f.leave()
		return nil
	case key.Matches(msg, keys.Submit):
		return f.submit()
	case key.Matches(msg, keys.Next):
		return f.setFocus(f.step(1))
	case key.Matches(msg, keys.Prev):
		return f.setFocus(f.step(-1))
	}

	if f.focus == fieldType {
		switch {
		case key.Matches(msg, keys.Left):
			f.typeIdx = (f.typeIdx + len(signal.CreatableTypes) - 1) % len(signal.CreatableTypes)
		case key.Matches(msg, keys.Right):
			f.typeIdx = (f.typeIdx + 1) % len(signal.CreatableTypes)
		case key.Matches(msg, keys.Open):
			return f.setFocus(fieldTitle)
		}
		return nil
	}

	// Enter moves on from a single-line field; on the last one it submits.
	if msg.Type == tea.KeyEnter && f.focus != fieldDescription {
		if next := f.step(1); next != fieldType {
			return f.setFocus(next)
		}
		return f.submit()
	}

	f.err = nil
	return f.updateFocused(msg)
}

func (f *CreateForm) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case f.focus == fieldDescription:
		f.desc, cmd = f.desc.Update(msg)
	case f.inputs[f.focus] != nil:
		in := f.inputs[f.focus]
		*in, cmd = in.Update(msg)
	}
	return cmd
}

// step returns the field dir places away from the focused one, skipping
// the options field unless a proposal is selected.
func (f *CreateForm) step(dir int) int {
	next := (f.focus + dir + fieldCount) % fieldCount
	if next == fieldOptions && f.Type() != signal.TypeProposal {
		next = (next + dir + fieldCount) % fieldCount
	}
	return next
}

func (f *CreateForm) setFocus(field int) tea.Cmd {
	f.focus = field
	f.desc.Blur()
	for _, in := range f.inputs {
		in.Blur()
	}
	switch {
	case field == fieldDescription:
		return f.desc.Focus()
	case f.inputs[field] != nil:
		return f.inputs[field].Focus()
	}
	return nil
}

func (f *CreateForm) submit() tea.Cmd {
	d := f.Draft()
	if err := d.Validate(); err != nil {
		f.err = err
		return nil
	}
	f.busy = true
	f.err = nil
	b, user := f.backend, f.user
	return func() tea.Msg {
		sig, err := b.CreateSignal(context.Background(), user.Name, user.ID, d)
		return SignalCreated{Signal: sig, Err: err}
	}
}

func (f *CreateForm) leave() {
	if err := f.navigator.Pop(); err != nil && !errors.Is(err, nav.ErrEmptyStack) {
		logging.Warn("leave create form", "err", err)
	}
}

// View renders the form.
func (f *CreateForm) View() string {
	row := func(field int, text, view string) string {
		l := FormLabel.Render(text)
		if f.focus == field {
			l = FormLabelFocused.Render(text)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, l, view)
	}

	var types []string
	for i, t := range signal.CreatableTypes {
		cat := signal.CategoryFor(t)
		style := MutedStyle.Padding(0, 1)
		if i == f.typeIdx {
			style = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorBackground)).
				Background(lipgloss.Color(signal.BackgroundFor(t))).
				Padding(0, 1)
		}
		types = append(types, style.Render(cat.Icon+" "+cat.Text))
	}

	rows := []string{
		Header.Render("New signal"),
		"",
		row(fieldType, "Type", strings.Join(types, " ")),
		"",
		row(fieldTitle, "Title", f.inputs[fieldTitle].View()),
		row(fieldDescription, "Description", f.desc.View()),
		row(fieldLocation, "Location", f.inputs[fieldLocation].View()),
		row(fieldDate, "Date", f.inputs[fieldDate].View()),
		row(fieldTime, "Time", f.inputs[fieldTime].View()),
	}
	if f.Type() == signal.TypeProposal {
		rows = append(rows, row(fieldOptions, "Options", f.inputs[fieldOptions].View()))
	}
	rows = append(rows, "")
	switch {
	case f.busy:
		rows = append(rows, MutedStyle.Render("Sending..."))
	case f.err != nil:
		rows = append(rows, ErrorStyle.Render("Error: "+f.err.Error()))
	}
	rows = append(rows, MutedStyle.Render("tab next · ctrl+s send · esc cancel"))

	return lipgloss.NewStyle().Padding(0, 1).Render(fit(strings.Join(rows, "\n"), max(f.width-2, 0), f.height))
}

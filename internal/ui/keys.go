package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding. Screens match against the shared keys value.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Open    key.Binding
	Refresh key.Binding
	New     key.Binding
	Profile key.Binding

	// Back is the native back intent, handled by the navigation stack.
	Back key.Binding
	// Return is the on-screen back control of a pushed screen.
	Return key.Binding

	Accept  key.Binding
	Reject  key.Binding
	Remark  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Submit  key.Binding
	Next    key.Binding
	Prev    key.Binding

	Debug key.Binding
	Quit  key.Binding
	Exit  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "left")),
	Right:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "right")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	New:     key.NewBinding(key.WithKeys("n", "+"), key.WithHelp("n", "new")),
	Profile: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),

	Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Return: key.NewBinding(key.WithKeys("b", "left"), key.WithHelp("b", "back")),

	Accept:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
	Reject:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "decline")),
	Remark:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "remark")),
	Confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	Submit:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "send")),
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),

	Debug: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
	Quit:  key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Exit:  key.NewBinding(key.WithKeys("ctrl+c")),
}

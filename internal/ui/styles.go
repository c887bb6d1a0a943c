package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application. Hex so they can be blended for fades.
const (
	colorBackground = "#141414"
	colorSurface    = "#242424"
	colorText       = "#F2F2F2"
	colorMuted      = "#8C8C8C"
	colorPrimary    = "#409CFF"
	colorHighlight  = "#FF79C6"
	colorDanger     = "#FF6B6B"
	colorShadow     = "#505050"
)

// Header style for screen titles.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color(colorText)).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color(colorText)).
	Background(lipgloss.Color(colorSurface)).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(lipgloss.Color(colorHighlight)).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(lipgloss.Color(colorMuted))

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(colorDanger)).
	Bold(true).
	Padding(0, 1)

// AlertBanner style for a failed mutation on the detail screen.
var AlertBanner = lipgloss.NewStyle().
	Foreground(lipgloss.Color(colorText)).
	Background(lipgloss.Color(colorDanger)).
	Padding(0, 1)

// MutedStyle for secondary text.
var MutedStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(colorMuted))

// FabStyle for the "new signal" button.
var FabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color(colorBackground)).
	Background(lipgloss.Color(colorPrimary)).
	Padding(0, 2)

// DialogBox style for the confirm dialog.
var DialogBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(colorPrimary)).
	Background(lipgloss.Color(colorSurface)).
	Foreground(lipgloss.Color(colorText)).
	Padding(1, 2)

// FormLabel style for create form field labels.
var FormLabel = lipgloss.NewStyle().
	Foreground(lipgloss.Color(colorMuted)).
	Width(14)

// FormLabelFocused style for the focused field label.
var FormLabelFocused = FormLabel.
	Foreground(lipgloss.Color(colorHighlight)).
	Bold(true)

// DebugPanel style for the debug overlay border.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(colorPrimary)).
	Padding(1, 2)

// DebugHeaderStyle for section headers in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color(colorHighlight))

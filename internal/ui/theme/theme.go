package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette: lamp-lit case file on a dark desk.
var (
	Primary   = lipgloss.Color("#D4A373") // Brass
	Secondary = lipgloss.Color("#5FA8A0") // Verdigris
	Accent    = lipgloss.Color("#E9C46A") // Lamp yellow
	Success   = lipgloss.Color("#7CB518") // Green ink
	Error     = lipgloss.Color("#E76F51") // Wax seal
	Text      = lipgloss.Color("#EDE6D6") // Parchment
	TextDim   = lipgloss.Color("#8D8676") // Faded ink
	Border    = lipgloss.Color("#4A4038") // Leather
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Code = lipgloss.NewStyle().
		Foreground(Accent)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Notice = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Success).
		Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Tables
var (
	TableHeader = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	TableCell = lipgloss.NewStyle().
			Foreground(Text)

	TableNull = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/sleuth/internal/ui/layout"
)

// Screen is one view on the router stack.
type Screen interface {
	// Init returns the command to run when the screen is shown for the
	// first time.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content between the header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher is implemented by screens that reload their data when they
// become active again after the screen above them is popped.
type Refresher interface {
	Refresh() tea.Cmd
}

// InputCapturer is implemented by screens with a text input. While it
// reports true, the app leaves printable keys and Esc to the screen.
type InputCapturer interface {
	CapturesInput() bool
}

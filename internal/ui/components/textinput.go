package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sleuth/internal/ui/theme"
)

// QueryInput is the single-line SQL editor under a case.
type QueryInput struct {
	Model    textinput.Model
	disabled bool
}

// NewQueryInput creates a focused SQL input.
func NewQueryInput(placeholder string, charLimit int) QueryInput {
	ti := textinput.New()
	ti.Prompt = "SQL> "
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Focus()
	return QueryInput{Model: ti}
}

// Init returns the initial command.
func (q QueryInput) Init() tea.Cmd {
	return q.Model.Focus()
}

// Update forwards key input unless the input is disabled.
func (q QueryInput) Update(msg tea.Msg) (QueryInput, tea.Cmd) {
	if q.disabled {
		if _, ok := msg.(tea.KeyMsg); ok {
			return q, nil
		}
	}
	var cmd tea.Cmd
	q.Model, cmd = q.Model.Update(msg)
	return q, cmd
}

// SetDisabled blocks typing, e.g. while a query runs.
func (q *QueryInput) SetDisabled(disabled bool) {
	q.disabled = disabled
}

// View renders the input.
func (q QueryInput) View() string {
	view := q.Model.View()
	if q.disabled {
		view += " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render("…")
	}
	return view
}

// Value returns the current SQL text.
func (q QueryInput) Value() string {
	return q.Model.Value()
}

// SetValue replaces the SQL text.
func (q *QueryInput) SetValue(s string) {
	q.Model.SetValue(s)
}

// Package app is the root Bubble Tea model of the game.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/router"
	"github.com/abhisek/sleuth/internal/screen"
	"github.com/abhisek/sleuth/internal/screens"
	"github.com/abhisek/sleuth/internal/screens/casefile"
	"github.com/abhisek/sleuth/internal/screens/home"
	"github.com/abhisek/sleuth/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env    *screens.Env
	router *router.Router
	stats  layout.Stats
	width  int
	height int
}

// newAppModel creates the model with the home screen at the bottom of the
// stack and, when startCaseID is set, that case on top of it.
func newAppModel(env *screens.Env, startCaseID string) (AppModel, error) {
	m := AppModel{
		env:    env,
		router: router.New(home.New(env)),
	}
	if startCaseID != "" {
		c, err := env.Registry.Get(startCaseID)
		if err != nil {
			return AppModel{}, fmt.Errorf("start case %q: %w", startCaseID, err)
		}
		m.router.Push(casefile.New(env, c))
	}
	return m, nil
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.env.LoadProgress()}
	if m.router.Depth() > 1 {
		// home's own Init would be shadowed by the case on top
		cmds = append(cmds, m.router.Active().Init())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screens.ProgressMsg:
		if msg.Err == nil {
			m.stats = layout.Stats{XP: msg.Summary.XP, Solved: msg.Summary.Solved, Total: msg.Summary.Total}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		case "q":
			if !m.capturesInput() {
				return m, tea.Quit
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) capturesInput() bool {
	ic, ok := m.router.Active().(screen.InputCapturer)
	return ok && ic.CapturesInput()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.stats, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Q", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until the player quits or
// ctx is cancelled.
func Run(ctx context.Context, env *screens.Env, startCaseID string) error {
	m, err := newAppModel(env, startCaseID)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		env.Logger.Error("tui exited with error", zap.Error(err))
		return err
	}
	return nil
}

// Package home is the case list the game opens on.
package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/router"
	"github.com/abhisek/sleuth/internal/screen"
	"github.com/abhisek/sleuth/internal/screens"
	"github.com/abhisek/sleuth/internal/screens/casefile"
	"github.com/abhisek/sleuth/internal/screens/dashboard"
	"github.com/abhisek/sleuth/internal/ui/components"
	"github.com/abhisek/sleuth/internal/ui/layout"
	"github.com/abhisek/sleuth/internal/ui/theme"
)

// HomeScreen lists every case with its completion mark.
type HomeScreen struct {
	env     *screens.Env
	menu    components.Menu
	summary progress.Summary
	err     string

	// placed is set once the cursor has been moved to the next unsolved
	// case, so later refreshes keep the player's own selection.
	placed bool
}

var (
	_ screen.Screen        = (*HomeScreen)(nil)
	_ screen.Refresher     = (*HomeScreen)(nil)
	_ screen.InputCapturer = (*HomeScreen)(nil)
)

// New creates the home screen.
func New(env *screens.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.env.LoadProgress()
}

// Refresh reloads completion marks after returning from a case.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.env.LoadProgress()
}

// CapturesInput is false: single-letter shortcuts are free to use.
func (h *HomeScreen) CapturesInput() bool {
	return false
}

func (h *HomeScreen) Title() string {
	return "Case Files"
}

func (h *HomeScreen) items() []components.MenuItem {
	all := h.env.Registry.All()
	items := make([]components.MenuItem, 0, len(all)+2)
	for _, c := range all {
		items = append(items, components.MenuItem{
			Label:  c.Title,
			Detail: h.detail(c),
			Action: h.open(c),
		})
	}
	items = append(items,
		components.MenuItem{Label: "Dashboard", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: dashboard.New(h.env)} }
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

func (h *HomeScreen) detail(c cases.Case) string {
	if h.summary.Completed[c.ID] {
		return "✔ solved"
	}
	return fmt.Sprintf("%s  %d XP", screens.Stars(c.Difficulty), c.XPReward)
}

func (h *HomeScreen) open(c cases.Case) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: casefile.New(h.env, c)} }
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if pm, ok := msg.(screens.ProgressMsg); ok {
		h.applyProgress(pm)
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) applyProgress(pm screens.ProgressMsg) {
	if pm.Err != nil {
		h.err = pm.Err.Error()
		return
	}
	h.err = ""
	h.summary = pm.Summary

	selected := h.menu.Selected
	h.menu = components.NewMenu(h.items())
	if !h.placed {
		h.placed = true
		if i := h.env.Registry.IndexOf(pm.Summary.NextUnsolved); i >= 0 {
			selected = i
		}
	}
	h.menu.Select(selected)
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height)

	var sections []string
	sections = append(sections, renderBanner(width, compact))
	if !compact {
		sections = append(sections, theme.Subtitle.Render("Pick a case. Query the evidence. Name the culprit."))
	}
	if h.err != "" {
		sections = append(sections, theme.Incorrect.Render("Progress unavailable: "+h.err))
	} else if h.summary.Total > 0 {
		sections = append(sections, theme.Hint.Render(
			fmt.Sprintf("%d of %d solved  ·  %d XP", h.summary.Solved, h.summary.Total, h.summary.XP)))
	}
	sections = append(sections, strings.TrimRight(h.menu.View(), "\n"))

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

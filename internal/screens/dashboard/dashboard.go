// Package dashboard shows overall progress: XP, solved cases and the most
// recent queries.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/router"
	"github.com/abhisek/sleuth/internal/screen"
	"github.com/abhisek/sleuth/internal/screens"
	"github.com/abhisek/sleuth/internal/store"
	"github.com/abhisek/sleuth/internal/ui/components"
	"github.com/abhisek/sleuth/internal/ui/layout"
	"github.com/abhisek/sleuth/internal/ui/theme"
)

const recentLimit = 5

// recentMsg carries the latest query events.
type recentMsg struct {
	Events []store.QueryEvent
	Err    error
}

// Screen implements screen.Screen for the dashboard.
type Screen struct {
	env     *screens.Env
	summary *progress.Summary
	err     string
	recent  []store.QueryEvent
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.Refresher       = (*Screen)(nil)
)

// New creates the dashboard.
func New(env *screens.Env) *Screen {
	return &Screen{env: env}
}

func (s *Screen) Init() tea.Cmd {
	return s.Refresh()
}

// Refresh reloads progress and recent queries.
func (s *Screen) Refresh() tea.Cmd {
	return tea.Batch(s.env.LoadProgress(), s.loadRecent())
}

func (s *Screen) loadRecent() tea.Cmd {
	events := s.env.Events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		evs, err := events.RecentQueries(context.Background(), store.QueryOpts{Limit: recentLimit})
		return recentMsg{Events: evs, Err: err}
	}
}

func (s *Screen) Title() string {
	return "Dashboard"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Case list"},
		{Key: "Q", Description: "Quit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screens.ProgressMsg:
		if msg.Err != nil {
			s.err = msg.Err.Error()
			return s, nil
		}
		sum := msg.Summary
		s.summary = &sum
		s.err = ""
	case recentMsg:
		if msg.Err == nil {
			s.recent = msg.Events
		}
	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	inner := max(width-4, 20)
	if s.err != "" {
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.Incorrect.Render("Progress unavailable: " + s.err))
	}
	if s.summary == nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.Hint.Render("Loading…"))
	}
	sum := s.summary

	var parts []string
	if sum.AllSolved() {
		parts = append(parts, theme.Correct.Render("All cases closed. Fine detective work."))
	}

	pct := 0.0
	if sum.MaxXP > 0 {
		pct = float64(sum.XP) / float64(sum.MaxXP)
	}
	parts = append(parts,
		components.NewProgressBar(fmt.Sprintf("XP %d/%d", sum.XP, sum.MaxXP), pct, true, min(inner, 60)).View(),
		theme.Body.Render(fmt.Sprintf("Cases solved: %d of %d", sum.Solved, sum.Total)),
		s.renderCases(),
	)
	if !layout.IsCompactHeight(height) && len(s.recent) > 0 {
		parts = append(parts, s.renderRecent(inner))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(parts, "\n\n"))
}

func (s *Screen) renderCases() string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Cases"))
	for _, c := range s.env.Registry.All() {
		mark := theme.Hint.Render("·")
		if s.summary.Completed[c.ID] {
			mark = theme.Correct.Render("✔")
		}
		fmt.Fprintf(&b, "\n%s %s  %s", mark, theme.Body.Render(c.Title), theme.Hint.Render(fmt.Sprintf("%d XP", c.XPReward)))
	}
	return b.String()
}

func (s *Screen) renderRecent(width int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Recent queries"))
	for _, e := range s.recent {
		sql := strings.Join(strings.Fields(e.SQL), " ")
		line := fmt.Sprintf("%s  %-9s %s", e.Timestamp.Format("15:04"), e.Outcome, sql)
		b.WriteString("\n" + lipgloss.NewStyle().MaxWidth(width).Render(theme.Hint.Render(line)))
	}
	return b.String()
}

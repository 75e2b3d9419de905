package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/router"
	"github.com/abhisek/sleuth/internal/screens"
	"github.com/abhisek/sleuth/internal/screens/casefile"
	"github.com/abhisek/sleuth/internal/screens/dashboard"
	"github.com/abhisek/sleuth/internal/session"
	"github.com/abhisek/sleuth/internal/store"
)

type mockCompletionRepo struct {
	xp map[string]int
}

func (m *mockCompletionRepo) MarkSolved(_ context.Context, caseID string, xp int) (bool, error) {
	if _, ok := m.xp[caseID]; ok {
		return false, nil
	}
	m.xp[caseID] = xp
	return true, nil
}

func (m *mockCompletionRepo) Completed(context.Context) ([]store.Completion, error) {
	var out []store.Completion
	for id, xp := range m.xp {
		out = append(out, store.Completion{CaseID: id, XP: xp})
	}
	return out, nil
}

func (m *mockCompletionRepo) TotalXP(context.Context) (int, error) {
	total := 0
	for _, xp := range m.xp {
		total += xp
	}
	return total, nil
}

func testEnv(solved ...string) *screens.Env {
	reg := cases.Default()
	repo := &mockCompletionRepo{xp: map[string]int{}}
	for _, id := range solved {
		repo.xp[id] = 10
	}
	return &screens.Env{
		Registry: reg,
		Session:  session.New(&api.MockBackend{}, zap.NewNop()),
		Tracker:  progress.NewTracker(reg, repo),
		Logger:   zap.NewNop(),
	}
}

func loadProgress(t *testing.T, h *HomeScreen) {
	t.Helper()
	msg := h.Refresh()()
	if pm, ok := msg.(screens.ProgressMsg); !ok || pm.Err != nil {
		t.Fatalf("progress load = %#v", msg)
	}
	h.Update(msg)
}

func press(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMenuListsEveryCase(t *testing.T) {
	env := testEnv()
	h := New(env)

	// every case plus Dashboard and Quit
	if got, want := len(h.menu.Items), env.Registry.Len()+2; got != want {
		t.Fatalf("menu has %d items, want %d", got, want)
	}
	view := h.View(100, 40)
	for _, c := range env.Registry.All() {
		if !strings.Contains(view, c.Title) {
			t.Errorf("case %s missing from view", c.ID)
		}
	}
}

func TestProgressMarksAndCursor(t *testing.T) {
	env := testEnv("case-000", "case-001")
	h := New(env)
	loadProgress(t, h)

	if h.menu.Items[0].Detail != "✔ solved" || h.menu.Items[1].Detail != "✔ solved" {
		t.Errorf("solved marks = %q, %q", h.menu.Items[0].Detail, h.menu.Items[1].Detail)
	}
	if strings.Contains(h.menu.Items[2].Detail, "solved") {
		t.Errorf("unsolved case marked solved: %q", h.menu.Items[2].Detail)
	}
	if h.menu.Selected != 2 {
		t.Errorf("cursor at %d, want the next unsolved case (2)", h.menu.Selected)
	}

	// A later refresh keeps the player's own choice.
	h.Update(press(tea.KeyUp))
	loadProgress(t, h)
	if h.menu.Selected != 1 {
		t.Errorf("cursor moved to %d after refresh, want 1", h.menu.Selected)
	}
}

func TestSelectPushesScreens(t *testing.T) {
	env := testEnv()
	h := New(env)

	_, cmd := h.Update(press(tea.KeyEnter))
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("Enter on a case should push a screen")
	}
	if _, ok := push.Screen.(*casefile.Screen); !ok {
		t.Errorf("pushed %T, want case file", push.Screen)
	}

	h.menu.Select(env.Registry.Len())
	_, cmd = h.Update(press(tea.KeyEnter))
	push, ok = cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("Enter on Dashboard should push a screen")
	}
	if _, ok := push.Screen.(*dashboard.Screen); !ok {
		t.Errorf("pushed %T, want dashboard", push.Screen)
	}

	h.menu.Select(env.Registry.Len() + 1)
	_, cmd = h.Update(press(tea.KeyEnter))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Quit entry should quit")
	}
}

func TestRenderBanner(t *testing.T) {
	if got := renderBanner(40, false); !strings.Contains(got, bannerCompact) {
		t.Errorf("narrow banner = %q", got)
	}
	if got := renderBanner(120, true); !strings.Contains(got, bannerCompact) {
		t.Errorf("compact banner = %q", got)
	}
	if got := renderBanner(120, false); !strings.Contains(got, "███████╗") {
		t.Errorf("wide banner should be block art")
	}
}

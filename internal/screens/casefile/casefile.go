// Package casefile is the investigation screen: the case brief, the schema
// of its tables and the SQL workspace.
package casefile

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/hints"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/router"
	"github.com/abhisek/sleuth/internal/screen"
	"github.com/abhisek/sleuth/internal/screens"
	"github.com/abhisek/sleuth/internal/screens/dashboard"
	"github.com/abhisek/sleuth/internal/session"
	"github.com/abhisek/sleuth/internal/ui/components"
	"github.com/abhisek/sleuth/internal/ui/layout"
	"github.com/abhisek/sleuth/internal/workspace"
)

const queryCharLimit = 2000

// Screen implements screen.Screen for one case.
type Screen struct {
	env  *screens.Env
	c    cases.Case
	ctrl *workspace.Controller

	input   components.QueryInput
	loaded  bool
	loadErr string
	schema  []api.TableSchema

	hint        *hints.Hint
	hintPending bool
	hintErr     string

	award *progress.Award

	showData bool
	data     []api.TableData
	dataErr  string

	noticeDelay time.Duration
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.InputCapturer   = (*Screen)(nil)
)

// New creates the screen for c. The case must come from env.Registry.
func New(env *screens.Env, c cases.Case) *Screen {
	s := &Screen{
		env:   env,
		c:     c,
		input: components.NewQueryInput("SELECT * FROM ...", queryCharLimit),

		noticeDelay: workspace.SuccessNoticeDuration,
	}
	ctrl, err := workspace.New(env.Session, env.Registry, c.ID)
	if err != nil {
		s.loadErr = err.Error()
	}
	s.ctrl = ctrl
	return s
}

func (s *Screen) Init() tea.Cmd {
	if s.ctrl == nil {
		return nil
	}
	return tea.Batch(s.loadCase(), s.input.Init())
}

func (s *Screen) Title() string {
	return s.c.Title
}

// CapturesInput is always true: printable keys belong to the SQL input.
func (s *Screen) CapturesInput() bool {
	return true
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.ctrl != nil && s.ctrl.State() == workspace.StateRevealed {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next case"},
			{Key: "Esc", Description: "Case list"},
		}
	}
	hs := []layout.KeyHint{{Key: "Enter", Description: "Run"}}
	if s.env.Hints != nil {
		hs = append(hs, layout.KeyHint{Key: "Ctrl+H", Description: "Hint"})
	}
	return append(hs,
		layout.KeyHint{Key: "Ctrl+D", Description: "Data"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case caseLoadedMsg:
		return s.handleLoaded(msg)

	case queryDoneMsg:
		return s.handleQueryDone(msg)

	case solvedMsg:
		if msg.Err != nil {
			s.env.Logger.Warn("record solved failed", zap.String("case_id", s.c.ID), zap.Error(msg.Err))
			return s, nil
		}
		s.award = &msg.Award
		return s, s.env.LoadProgress()

	case noticeExpiredMsg:
		if msg.CaseID == s.c.ID && s.ctrl.View().AttemptID == msg.AttemptID {
			s.ctrl.DismissNotice()
		}
		return s, nil

	case hintMsg:
		s.hintPending = false
		if msg.Err != nil {
			s.hintErr = msg.Err.Error()
			return s, nil
		}
		s.hint = &msg.Hint
		s.hintErr = ""
		return s, nil

	case dataMsg:
		if msg.Err != nil {
			s.dataErr = api.UserMessage(msg.Err)
			return s, nil
		}
		s.data = msg.Tables
		s.dataErr = ""
		return s, nil

	case tea.KeyMsg:
		if cmd, handled := s.handleKey(msg); handled {
			return s, cmd
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if s.ctrl == nil {
		return nil, false
	}
	switch msg.String() {
	case "enter":
		if s.ctrl.State() == workspace.StateRevealed {
			return s.advance(), true
		}
		return s.submit(), true
	case "ctrl+h", "f1":
		return s.requestHint(), true
	case "ctrl+d":
		s.showData = !s.showData
		if s.showData && s.data == nil {
			return s.loadData(), true
		}
		return nil, true
	}
	return nil, false
}

func (s *Screen) handleLoaded(msg caseLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.CaseID != s.c.ID {
		return s, nil
	}
	if msg.Err != nil {
		s.loadErr = api.UserMessage(msg.Err)
		return s, nil
	}
	s.loaded = true
	s.loadErr = ""
	s.schema = msg.Schema
	return s, nil
}

func (s *Screen) submit() tea.Cmd {
	sql := s.input.Value()
	if !s.loaded || !s.ctrl.CanSubmit(sql) {
		return nil
	}
	a := s.ctrl.Submit(sql)
	s.input.SetDisabled(true)
	s.hint = nil
	s.hintErr = ""
	ctrl := s.ctrl
	return func() tea.Msg {
		return queryDoneMsg{Outcome: ctrl.Run(context.Background(), a)}
	}
}

func (s *Screen) handleQueryDone(msg queryDoneMsg) (screen.Screen, tea.Cmd) {
	// Outcomes from a screen the player has left still reach the top screen.
	if s.ctrl == nil || msg.Outcome.CaseID != s.c.ID || !s.ctrl.Resolve(msg.Outcome) {
		return s, nil
	}
	s.input.SetDisabled(false)

	snap := s.ctrl.View()
	if snap.State != workspace.StateRevealed {
		return s, nil
	}
	return s, tea.Batch(s.recordSolved(), noticeTimer(s.noticeDelay, s.c.ID, snap.AttemptID))
}

func (s *Screen) recordSolved() tea.Cmd {
	tracker, id := s.env.Tracker, s.c.ID
	return func() tea.Msg {
		a, err := tracker.RecordSolved(context.Background(), id)
		return solvedMsg{Award: a, Err: err}
	}
}

func noticeTimer(d time.Duration, caseID string, attemptID uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return noticeExpiredMsg{CaseID: caseID, AttemptID: attemptID}
	})
}

// advance replaces this screen with the next case, or with the dashboard
// after the last one.
func (s *Screen) advance() tea.Cmd {
	step, err := s.ctrl.Advance()
	if err != nil {
		s.env.Logger.Error("advance failed", zap.String("case_id", s.c.ID), zap.Error(err))
		s.loadErr = err.Error()
		return nil
	}
	var next screen.Screen
	if step.End {
		next = dashboard.New(s.env)
	} else {
		c, err := s.env.Registry.Get(step.CaseID)
		if err != nil {
			s.loadErr = err.Error()
			return nil
		}
		next = New(s.env, c)
	}
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *Screen) requestHint() tea.Cmd {
	if s.env.Hints == nil || s.hintPending || !s.loaded {
		return nil
	}
	s.hintPending = true
	snap := s.ctrl.View()
	in := hints.Input{
		Case:   s.c,
		Schema: s.schema,
		SQL:    s.input.Value(),
		Error:  snap.Error,
	}
	svc := s.env.Hints
	return func() tea.Msg {
		h, err := svc.Hint(context.Background(), in)
		return hintMsg{Hint: h, Err: err}
	}
}

func (s *Screen) loadCase() tea.Cmd {
	sess, id := s.env.Session, s.c.ID
	return func() tea.Msg {
		if err := sess.LoadCaseDatabase(context.Background(), id); err != nil {
			return caseLoadedMsg{CaseID: id, Err: err}
		}
		schema := sess.Schema()
		if sess.CaseID() != id {
			return caseLoadedMsg{CaseID: id, Err: session.ErrSuperseded}
		}
		return caseLoadedMsg{CaseID: id, Schema: schema}
	}
}

func (s *Screen) loadData() tea.Cmd {
	sess := s.env.Session
	return func() tea.Msg {
		tables, err := sess.CaseData(context.Background())
		return dataMsg{Tables: tables, Err: err}
	}
}

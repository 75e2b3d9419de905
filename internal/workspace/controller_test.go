package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/session"
)

// scriptedExecutor answers each query with a fixed result keyed by SQL.
type scriptedExecutor struct {
	results map[string]*api.QueryResult
	errs    map[string]error
}

func (s *scriptedExecutor) ExecuteQuery(_ context.Context, sql string) (*api.QueryResult, error) {
	if err, ok := s.errs[sql]; ok {
		return nil, err
	}
	if r, ok := s.results[sql]; ok {
		return r, nil
	}
	return &api.QueryResult{Columns: []string{}, Rows: []api.Row{}}, nil
}

func rowsResult(col string, vals ...any) *api.QueryResult {
	r := &api.QueryResult{Columns: []string{col}, Rows: []api.Row{}}
	for _, v := range vals {
		r.Rows = append(r.Rows, api.Row{col: v})
	}
	return r
}

func correct(r *api.QueryResult) *api.QueryResult {
	yes := true
	r.IsCorrect = &yes
	r.Message = "Поздравляем! Вы нашли правильное решение!"
	return r
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newController(t *testing.T, exec Executor, caseID string) (*Controller, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(1380, 9, 8, 6, 0, 0, 0, time.UTC)}
	c, err := New(exec, cases.Default(), caseID, WithClock(clock.now))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, clock
}

func TestNew_UnknownCase(t *testing.T) {
	_, err := New(&scriptedExecutor{}, cases.Default(), "case-999")
	var ie *cases.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
}

func TestSubmit_EntersRunningAndClears(t *testing.T) {
	exec := &scriptedExecutor{
		results: map[string]*api.QueryResult{"A": rowsResult("x", 1)},
		errs:    map[string]error{"BAD": &api.ExecutionError{Message: "SQL syntax error"}},
	}
	c, _ := newController(t, exec, "case-001")
	ctx := context.Background()

	if c.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", c.State())
	}

	c.Execute(ctx, "A")
	if c.State() != StateSucceeded {
		t.Fatalf("state = %s, want succeeded", c.State())
	}

	c.Submit("B")
	v := c.View()
	if v.State != StateRunning {
		t.Errorf("state = %s, want running", v.State)
	}
	if v.Result != nil || v.Error != "" {
		t.Errorf("stale result shown while running: %+v", v)
	}

	c.Execute(ctx, "BAD")
	if c.View().Error == "" {
		t.Fatal("expected error after failing query")
	}
	c.Submit("A")
	if c.View().Error != "" {
		t.Error("error not cleared on submit")
	}
}

func TestResolve_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		outcome   func(id uint64) Outcome
		wantState State
		wantErr   string
	}{
		{
			name:      "rows",
			outcome:   func(id uint64) Outcome { return Outcome{AttemptID: id, Result: rowsResult("a", 1)} },
			wantState: StateSucceeded,
		},
		{
			name:      "correct",
			outcome:   func(id uint64) Outcome { return Outcome{AttemptID: id, Result: correct(rowsResult("a", 1))} },
			wantState: StateRevealed,
		},
		{
			name: "result error",
			outcome: func(id uint64) Outcome {
				return Outcome{AttemptID: id, Result: api.ErrorResult("Invalid table name in query")}
			},
			wantState: StateFailed,
			wantErr:   "Invalid table name in query",
		},
		{
			name: "transport",
			outcome: func(id uint64) Outcome {
				return Outcome{AttemptID: id, Err: &api.TransportError{Op: "execute sql", Err: errors.New("refused")}}
			},
			wantState: StateFailed,
			wantErr:   "could not reach server",
		},
		{
			name:      "not initialized",
			outcome:   func(id uint64) Outcome { return Outcome{AttemptID: id, Err: session.ErrNotInitialized} },
			wantState: StateFailed,
			wantErr:   "case database is not loaded yet",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, &scriptedExecutor{}, "case-001")
			a := c.Submit("SELECT 1")
			if !c.Resolve(tt.outcome(a.ID)) {
				t.Fatal("Resolve rejected the current attempt")
			}
			v := c.View()
			if v.State != tt.wantState {
				t.Errorf("state = %s, want %s", v.State, tt.wantState)
			}
			if v.Error != tt.wantErr {
				t.Errorf("error = %q, want %q", v.Error, tt.wantErr)
			}
		})
	}
}

func TestLastSubmitWins(t *testing.T) {
	resultA := rowsResult("q", "A")
	resultB := rowsResult("q", "B")

	orders := []struct {
		name  string
		order []string
	}{
		{"A arrives first", []string{"A", "B"}},
		{"B arrives first", []string{"B", "A"}},
	}
	for _, tt := range orders {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, &scriptedExecutor{}, "case-001")
			a := c.Submit("SELECT 'A'")
			b := c.Submit("SELECT 'B'")

			outcomes := map[string]Outcome{
				"A": {AttemptID: a.ID, Result: resultA},
				"B": {AttemptID: b.ID, Result: resultB},
			}
			applied := map[string]bool{}
			for _, which := range tt.order {
				applied[which] = c.Resolve(outcomes[which])
			}

			if applied["A"] {
				t.Error("superseded attempt A was applied")
			}
			if !applied["B"] {
				t.Error("current attempt B was not applied")
			}
			v := c.View()
			if v.State != StateSucceeded {
				t.Fatalf("state = %s, want succeeded", v.State)
			}
			if v.Result != resultB {
				t.Errorf("displayed result is not B's: %+v", v.Result)
			}
			if v.SQL != "SELECT 'B'" {
				t.Errorf("displayed SQL = %q", v.SQL)
			}
		})
	}
}

func TestResolve_StaleAfterCompletion(t *testing.T) {
	c, _ := newController(t, &scriptedExecutor{}, "case-001")
	a := c.Submit("A")
	c.Resolve(Outcome{AttemptID: a.ID, Result: rowsResult("x", 1)})

	// A duplicate delivery of the same outcome must not re-apply.
	if c.Resolve(Outcome{AttemptID: a.ID, Result: api.ErrorResult("late")}) {
		t.Error("outcome applied twice")
	}
	if c.State() != StateSucceeded {
		t.Errorf("state = %s, want succeeded", c.State())
	}
}

func TestAttemptsUniqueAcrossControllers(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]*api.QueryResult{
		"SELECT 1": correct(rowsResult("x", 1)),
	}}
	first, _ := newController(t, exec, "case-000")
	second, _ := newController(t, exec, "case-001")

	a := first.Submit("SELECT 1")
	b := second.Submit("SELECT 2")
	if a.ID == b.ID {
		t.Fatalf("both controllers issued attempt %d", a.ID)
	}

	late := first.Run(context.Background(), a)
	if late.CaseID != "case-000" {
		t.Errorf("outcome case = %q, want case-000", late.CaseID)
	}
	if second.Resolve(late) {
		t.Error("outcome of another controller was applied")
	}
	if second.State() != StateRunning {
		t.Errorf("state = %s, want running", second.State())
	}
}

func TestCanSubmit(t *testing.T) {
	c, _ := newController(t, &scriptedExecutor{}, "case-001")
	if c.CanSubmit("   ") {
		t.Error("blank query should not be submittable")
	}
	if !c.CanSubmit("SELECT 1") {
		t.Error("idle controller should accept a query")
	}
	c.Submit("SELECT 1")
	if c.CanSubmit("SELECT 2") {
		t.Error("running controller should reject re-submission")
	}
}

func TestRevealed_NoticeExpires(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]*api.QueryResult{
		"GOOD": correct(rowsResult("recipient_name", "Прохор")),
	}}
	c, clock := newController(t, exec, "case-003")

	v := c.Execute(context.Background(), "GOOD")
	if v.State != StateRevealed {
		t.Fatalf("state = %s, want revealed", v.State)
	}
	if !v.NoticeVisible {
		t.Error("notice should be visible right after reveal")
	}
	want, _ := cases.Default().Get("case-003")
	if v.SuccessMessage != want.Solution.SuccessMessage {
		t.Errorf("success message = %q", v.SuccessMessage)
	}
	if v.Explanation == "" {
		t.Error("explanation should be shown on reveal")
	}

	clock.advance(SuccessNoticeDuration - time.Millisecond)
	if !c.NoticeVisible() {
		t.Error("notice hidden too early")
	}
	clock.advance(time.Millisecond)
	if c.NoticeVisible() {
		t.Error("notice should auto-dismiss after the display duration")
	}
	if !c.View().CanAdvance {
		t.Error("advancement should remain available after the notice hides")
	}
}

func TestDismissNotice(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]*api.QueryResult{"GOOD": correct(rowsResult("a", 1))}}
	c, _ := newController(t, exec, "case-001")
	c.Execute(context.Background(), "GOOD")
	c.DismissNotice()
	if c.NoticeVisible() {
		t.Error("notice still visible after dismiss")
	}
}

func TestAdvance(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]*api.QueryResult{"GOOD": correct(rowsResult("a", 1))}}
	ctx := context.Background()

	c, _ := newController(t, exec, "case-003")
	if _, err := c.Advance(); !errors.Is(err, ErrNotRevealed) {
		t.Fatalf("expected ErrNotRevealed before solving, got %v", err)
	}
	c.Execute(ctx, "GOOD")
	step, err := c.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if step.End || step.CaseID != "case-004" {
		t.Errorf("step = %+v, want case-004", step)
	}
}

func TestAdvance_FinalCaseRoutesToDashboard(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]*api.QueryResult{"GOOD": correct(rowsResult("a", 1))}}
	all := cases.Default().All()
	last := all[len(all)-1].ID

	c, _ := newController(t, exec, last)
	c.Execute(context.Background(), "GOOD")
	step, err := c.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !step.End || step.CaseID != "" {
		t.Errorf("step = %+v, want end of sequence", step)
	}
}

func TestResubmitFromRevealed(t *testing.T) {
	exec := &scriptedExecutor{results: map[string]*api.QueryResult{"GOOD": correct(rowsResult("a", 1))}}
	c, _ := newController(t, exec, "case-001")
	c.Execute(context.Background(), "GOOD")

	c.Submit("SELECT 2")
	if c.View().CanAdvance {
		t.Error("advancement should not be offered while a new attempt runs")
	}
	if c.NoticeVisible() {
		t.Error("notice should clear on a new submission")
	}
}

func TestControllerWithSession(t *testing.T) {
	mock := &api.MockBackend{
		ExecuteFn: func(_ context.Context, query, caseID string) (*api.QueryResult, error) {
			return rowsResult("case", caseID), nil
		},
	}
	sess := session.New(mock, zap.NewNop())
	c, _ := newController(t, sess, "case-002")
	ctx := context.Background()

	v := c.Execute(ctx, "SELECT 1")
	if v.State != StateFailed {
		t.Fatalf("before load: state = %s, want failed", v.State)
	}

	if err := sess.LoadCaseDatabase(ctx, "case-002"); err != nil {
		t.Fatalf("load: %v", err)
	}
	v = c.Execute(ctx, "SELECT 1")
	if v.State != StateSucceeded {
		t.Fatalf("after load: state = %s, want succeeded", v.State)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateIdle:      "idle",
		StateRunning:   "running",
		StateSucceeded: "succeeded",
		StateFailed:    "failed",
		StateRevealed:  "revealed",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}

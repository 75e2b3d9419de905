// Package workspace owns the lifecycle of a query typed into a case: running
// it, showing its result and revealing a correct solution.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/session"
)

// SuccessNoticeDuration is how long the success notice stays up after a
// correct solution.
const SuccessNoticeDuration = 3 * time.Second

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateRevealed // Succeeded with a correct solution
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateRevealed:
		return "revealed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotRevealed is returned by Advance before the case has been solved.
var ErrNotRevealed = errors.New("workspace: case not solved yet")

// Executor runs a query against the active case. *session.Session
// implements it.
type Executor interface {
	ExecuteQuery(ctx context.Context, sql string) (*api.QueryResult, error)
}

// Attempt is one submitted query.
type Attempt struct {
	ID        uint64
	SQL       string
	StartedAt time.Time
}

// attemptSeq numbers attempts across every controller in the process, so an
// outcome from one case's controller never matches another's attempt.
var attemptSeq atomic.Uint64

// Outcome is what running an Attempt produced.
type Outcome struct {
	AttemptID uint64
	CaseID    string
	Result    *api.QueryResult
	Err       error
	Elapsed   time.Duration
}

// Snapshot is a read-only view of the controller for rendering.
type Snapshot struct {
	State          State
	AttemptID      uint64
	SQL            string
	Result         *api.QueryResult
	Error          string
	SuccessMessage string
	Explanation    string
	NoticeVisible  bool
	CanAdvance     bool
}

// Controller is the query workspace state machine for one case. It is not
// safe for concurrent use: all methods except Run must be called from the
// UI event loop. Run only touches immutable fields and may run anywhere.
type Controller struct {
	exec   Executor
	reg    *cases.Registry
	caseID string
	now    func() time.Time

	state       State
	current     Attempt
	result      *api.QueryResult
	errMsg      string
	noticeUntil time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a Controller for caseID. The case must be in reg.
func New(exec Executor, reg *cases.Registry, caseID string, opts ...Option) (*Controller, error) {
	if reg.IndexOf(caseID) < 0 {
		return nil, &cases.IntegrityError{CaseID: caseID, Err: cases.ErrNotFound}
	}
	c := &Controller{
		exec:   exec,
		reg:    reg,
		caseID: caseID,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// CaseID returns the case this controller works on.
func (c *Controller) CaseID() string { return c.caseID }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// CanSubmit reports whether the UI should accept sql for submission. While
// an attempt is running, re-submission is disabled.
func (c *Controller) CanSubmit(sql string) bool {
	return c.state != StateRunning && strings.TrimSpace(sql) != ""
}

// Submit starts a new attempt from any state. The previous result and
// error are cleared before anything is dispatched, and any attempt still in
// flight is superseded: its outcome will be discarded by Resolve.
func (c *Controller) Submit(sql string) Attempt {
	c.current = Attempt{ID: attemptSeq.Add(1), SQL: sql, StartedAt: c.now()}
	c.state = StateRunning
	c.result = nil
	c.errMsg = ""
	c.noticeUntil = time.Time{}
	return c.current
}

// Run executes an attempt and reports its outcome. It does not change the
// controller; pass the outcome to Resolve.
func (c *Controller) Run(ctx context.Context, a Attempt) Outcome {
	start := time.Now()
	res, err := c.exec.ExecuteQuery(ctx, a.SQL)
	return Outcome{AttemptID: a.ID, CaseID: c.caseID, Result: res, Err: err, Elapsed: time.Since(start)}
}

// Resolve applies an outcome. Outcomes of superseded attempts are dropped
// and Resolve reports false for them.
func (c *Controller) Resolve(o Outcome) bool {
	if c.state != StateRunning || o.AttemptID != c.current.ID {
		return false
	}

	switch {
	case o.Err != nil:
		c.state = StateFailed
		c.errMsg = errorMessage(o.Err)
	case o.Result == nil:
		c.state = StateFailed
		c.errMsg = "empty result"
	case o.Result.Failed():
		c.state = StateFailed
		c.result = o.Result
		c.errMsg = o.Result.Error
	case o.Result.Correct():
		c.state = StateRevealed
		c.result = o.Result
		c.noticeUntil = c.now().Add(SuccessNoticeDuration)
	default:
		c.state = StateSucceeded
		c.result = o.Result
	}
	return true
}

// Execute submits sql and resolves it synchronously.
func (c *Controller) Execute(ctx context.Context, sql string) Snapshot {
	a := c.Submit(sql)
	c.Resolve(c.Run(ctx, a))
	return c.View()
}

// NoticeVisible reports whether the success notice is still showing.
func (c *Controller) NoticeVisible() bool {
	return c.state == StateRevealed && c.now().Before(c.noticeUntil)
}

// DismissNotice hides the success notice early.
func (c *Controller) DismissNotice() {
	c.noticeUntil = time.Time{}
}

// Advance returns where to go after a solved case: the next case in
// registry order, or progress.EndOfSequence after the last one.
func (c *Controller) Advance() (progress.Step, error) {
	if c.state != StateRevealed {
		return progress.Step{}, ErrNotRevealed
	}
	return progress.Next(c.reg, c.caseID)
}

// View returns a snapshot for rendering.
func (c *Controller) View() Snapshot {
	s := Snapshot{
		State:         c.state,
		AttemptID:     c.current.ID,
		SQL:           c.current.SQL,
		Result:        c.result,
		Error:         c.errMsg,
		NoticeVisible: c.NoticeVisible(),
		CanAdvance:    c.state == StateRevealed,
	}
	if c.state == StateRevealed {
		s.SuccessMessage = c.result.Message
		if cs, err := c.reg.Get(c.caseID); err == nil {
			if cs.Solution.SuccessMessage != "" {
				s.SuccessMessage = cs.Solution.SuccessMessage
			}
			s.Explanation = cs.Solution.Explanation
		}
	}
	return s
}

func errorMessage(err error) string {
	if errors.Is(err, session.ErrNotInitialized) {
		return "case database is not loaded yet"
	}
	return api.UserMessage(err)
}

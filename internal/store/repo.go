package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int    // max results (0 = unlimited)
	After  int64  // sequence > After
	CaseID string // empty = all cases
}

// Kinds of recorded query events.
const (
	KindExecute = "execute"
	KindCheck   = "check"
)

// Outcomes of recorded query events.
const (
	OutcomeOK        = "ok"
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeError     = "error"
)

// QueryEventData captures one SQL submission sent to the backend.
type QueryEventData struct {
	SessionID    string
	CaseID       string
	Kind         string
	SQL          string
	Outcome      string
	ErrorMessage string
	RowCount     int
	DurationMs   int64
}

// QueryEvent is a stored QueryEventData with its ordering metadata.
type QueryEvent struct {
	QueryEventData
	Sequence  int64
	Timestamp time.Time
}

// HintEventData captures one hint served to the player.
type HintEventData struct {
	SessionID string
	CaseID    string
	SQL       string
	HintText  string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// EventRepo provides append and query access to gameplay events.
type EventRepo interface {
	AppendQueryEvent(ctx context.Context, data QueryEventData) error

	// RecentQueries returns query events newest first.
	RecentQueries(ctx context.Context, opts QueryOpts) ([]QueryEvent, error)

	AppendHintEvent(ctx context.Context, data HintEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// LLMUsageByModel aggregates successful and failed LLM calls per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// ModelUsage is the token usage of one model across all recorded calls.
type ModelUsage struct {
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// Completion records the first time a case was solved.
type Completion struct {
	CaseID      string
	XP          int
	CompletedAt time.Time
}

// CompletionRepo tracks solved cases. Only the first solve of a case counts.
type CompletionRepo interface {
	// MarkSolved records a completion and reports whether it was new.
	MarkSolved(ctx context.Context, caseID string, xp int) (bool, error)

	// Completed returns all completions ordered by completion time.
	Completed(ctx context.Context) ([]Completion, error)

	// TotalXP sums the XP of all completions.
	TotalXP(ctx context.Context) (int, error)
}

package casefile

import (
	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/hints"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/workspace"
)

// caseLoadedMsg is sent when the case database is ready on the backend.
type caseLoadedMsg struct {
	CaseID string
	Schema []api.TableSchema
	Err    error
}

// queryDoneMsg carries the outcome of a submitted query.
type queryDoneMsg struct {
	Outcome workspace.Outcome
}

// solvedMsg is sent once the completion has been stored.
type solvedMsg struct {
	Award progress.Award
	Err   error
}

// noticeExpiredMsg hides the success notice of the given attempt.
type noticeExpiredMsg struct {
	CaseID    string
	AttemptID uint64
}

// hintMsg carries a hint for the current query.
type hintMsg struct {
	Hint hints.Hint
	Err  error
}

// dataMsg carries the full case data for the preview pane.
type dataMsg struct {
	Tables []api.TableData
	Err    error
}

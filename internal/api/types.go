package api

import "context"

// Backend is the set of remote operations the game depends on. All of them
// are read-only from the caller's perspective and safe to retry.
type Backend interface {
	// GetCaseSchema returns the tables exposed for a case.
	GetCaseSchema(ctx context.Context, caseID string) ([]TableSchema, error)

	// GetCaseData returns the raw dataset rows for a case.
	GetCaseData(ctx context.Context, caseID string) ([]TableData, error)

	// ExecuteSQL runs a query. When caseID is set the result also carries
	// the verdict against the case's canonical answer.
	ExecuteSQL(ctx context.Context, query, caseID string) (*QueryResult, error)

	// CheckSolution compares a query's result with the case's canonical answer.
	CheckSolution(ctx context.Context, query, caseID string) (*CheckResult, error)
}

// Row maps a column name to its value. Numbers decode as json.Number.
type Row map[string]any

// QueryResult is the outcome of one executed query. Every row's keys are
// exactly Columns; Error and a populated Rows are mutually exclusive.
type QueryResult struct {
	Columns   []string `json:"columns"`
	Rows      []Row    `json:"rows"`
	IsCorrect *bool    `json:"isCorrect,omitempty"`
	Message   string   `json:"message,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Correct reports whether the result was judged a correct solution.
func (r *QueryResult) Correct() bool {
	return r != nil && r.IsCorrect != nil && *r.IsCorrect
}

// Failed reports whether the result carries an error message.
func (r *QueryResult) Failed() bool {
	return r != nil && r.Error != ""
}

// ErrorResult wraps a user-facing message into an otherwise empty result.
func ErrorResult(msg string) *QueryResult {
	return &QueryResult{Columns: []string{}, Rows: []Row{}, Error: msg}
}

// CheckResult is the verdict of a solution check.
type CheckResult struct {
	IsCorrect bool `json:"isCorrect"`
}

// QueryRequest is the body of execute and check calls.
type QueryRequest struct {
	Query  string `json:"query"`
	CaseID string `json:"caseId,omitempty"`
}

// Column describes one column of a table schema.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsPrimary  bool   `json:"isPrimary"`
	IsNullable bool   `json:"isNullable"`
	IsForeign  bool   `json:"isForeign,omitempty"`
}

// ForeignKey links a column to a column of another table.
type ForeignKey struct {
	FromColumn string `json:"fromColumn"`
	ToTable    string `json:"toTable"`
	ToColumn   string `json:"toColumn"`
}

// TableSchema is the structure of one table exposed to the player.
type TableSchema struct {
	TableName   string       `json:"tableName"`
	Title       string       `json:"title,omitempty"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreignKeys,omitempty"`
}

// TableData is the full content of one table.
type TableData struct {
	TableName string `json:"tableName"`
	Title     string `json:"title,omitempty"`
	Data      []Row  `json:"data"`
}

// HealthInfo is returned by the backend's health endpoint.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorBody is the JSON error envelope used by the backend.
type ErrorBody struct {
	Detail string `json:"detail"`
}

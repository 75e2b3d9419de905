package engine

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Code classifies a QueryError.
type Code int

const (
	CodeInvalid   Code = iota // malformed or non-SELECT query
	CodeForbidden             // query tries to modify the dataset
	CodeNotFound              // unknown case
	CodeInternal
)

// Status maps a code to the HTTP status the server answers with.
func (c Code) Status() int {
	switch c {
	case CodeInvalid:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// QueryError is a rejected or failed query. Message is shown to the player
// as is.
type QueryError struct {
	Code    Code
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *QueryError) Unwrap() error { return e.Err }

// ErrCaseNotFound is wrapped by QueryErrors for unknown case ids.
var ErrCaseNotFound = errors.New("case not found")

func invalid(msg string) *QueryError   { return &QueryError{Code: CodeInvalid, Message: msg} }
func forbidden(msg string) *QueryError { return &QueryError{Code: CodeForbidden, Message: msg} }

func caseNotFound(caseID string) *QueryError {
	return &QueryError{Code: CodeNotFound, Message: fmt.Sprintf("Case %s not found", caseID), Err: ErrCaseNotFound}
}

var sqliteCodeSuffix = regexp.MustCompile(`\s*\(\d+\)$`)

// classify turns a driver error into a QueryError with a readable prefix.
// The engine's own text is kept after the prefix.
func classify(err error) *QueryError {
	raw := sqliteCodeSuffix.ReplaceAllString(err.Error(), "")
	raw = strings.TrimPrefix(raw, "SQL logic error: ")
	lower := strings.ToLower(raw)

	var prefix string
	switch {
	case strings.Contains(lower, "no such column"):
		prefix = "Invalid column name in query"
	case strings.Contains(lower, "no such table"):
		prefix = "Invalid table name in query"
	case strings.Contains(lower, "syntax error"), strings.Contains(lower, "incomplete input"):
		prefix = "SQL syntax error"
	case strings.Contains(lower, "interrupted"), strings.Contains(lower, "context deadline exceeded"):
		prefix = "Query took too long"
	}
	if prefix == "" {
		return &QueryError{Code: CodeInvalid, Message: raw}
	}
	return &QueryError{Code: CodeInvalid, Message: prefix + ": " + raw}
}

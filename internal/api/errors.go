package api

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError indicates the backend has no case or schema for the id.
type NotFoundError struct {
	CaseID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("case %s not found", e.CaseID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransportError indicates the backend could not be reached or failed
// without a usable answer. It is the only retryable error.
type TransportError struct {
	Op     string
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExecutionError indicates the engine rejected or failed the query.
// Message is the engine's own text and is shown to the player verbatim.
type ExecutionError struct {
	Status  int
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// InvalidResponseError indicates the backend answered with a body that does
// not match the expected contract.
type InvalidResponseError struct {
	Op  string
	Err error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// Fallback messages when the backend gives no detail.
const (
	msgUnreachable     = "could not reach server"
	msgInvalidResponse = "server returned an invalid response"
	msgExecuteFailed   = "query execution failed"
	msgCheckFailed     = "solution check failed"
)

// UserMessage converts any error returned by this package into the text
// shown to the player. Transport details never leak through it.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Message
	}
	var ir *InvalidResponseError
	if errors.As(err, &ir) {
		return msgInvalidResponse
	}
	var te *TransportError
	if errors.As(err, &te) {
		return msgUnreachable
	}
	return err.Error()
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Package progress decides where the player goes after a case is solved and
// keeps the running tally of solved cases.
package progress

import (
	"fmt"

	"github.com/abhisek/sleuth/internal/cases"
)

// Step is the outcome of advancing from a solved case. Exactly one of
// CaseID and End is set.
type Step struct {
	CaseID string
	End    bool
}

// EndOfSequence is returned after the final case in registry order.
var EndOfSequence = Step{End: true}

// Next returns the case that follows currentID in registry order, or
// EndOfSequence when currentID is the last case. An id missing from the
// registry is a broken link in the case content and is reported as an
// IntegrityError.
func Next(reg *cases.Registry, currentID string) (Step, error) {
	i := reg.IndexOf(currentID)
	if i < 0 {
		return Step{}, &cases.IntegrityError{
			CaseID: currentID,
			Err:    fmt.Errorf("%w: completed case is not registered", cases.ErrNotFound),
		}
	}
	next, ok := reg.At(i + 1)
	if !ok {
		return EndOfSequence, nil
	}
	return Step{CaseID: next.ID}, nil
}

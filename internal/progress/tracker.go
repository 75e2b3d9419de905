package progress

import (
	"context"
	"fmt"

	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/store"
)

// Award is the result of recording a solved case.
type Award struct {
	CaseID string
	XP     int

	// New is false when the case had already been solved; no XP is added.
	New bool
}

// Summary is the dashboard view of overall progress.
type Summary struct {
	Solved    int
	Total     int
	XP        int
	MaxXP     int
	Completed map[string]bool

	// NextUnsolved is the first unsolved case in registry order, empty when
	// every case is solved.
	NextUnsolved string
}

// AllSolved reports whether every registered case has been solved.
func (s Summary) AllSolved() bool {
	return s.Total > 0 && s.Solved == s.Total
}

// Tracker records case completions and XP.
type Tracker struct {
	reg  *cases.Registry
	repo store.CompletionRepo
}

// NewTracker creates a Tracker over the given registry and completion store.
func NewTracker(reg *cases.Registry, repo store.CompletionRepo) *Tracker {
	return &Tracker{reg: reg, repo: repo}
}

// RecordSolved marks a case as solved and awards its XP the first time.
func (t *Tracker) RecordSolved(ctx context.Context, caseID string) (Award, error) {
	c, err := t.reg.Get(caseID)
	if err != nil {
		return Award{}, &cases.IntegrityError{CaseID: caseID, Err: err}
	}
	isNew, err := t.repo.MarkSolved(ctx, c.ID, c.XPReward)
	if err != nil {
		return Award{}, fmt.Errorf("record solved %s: %w", caseID, err)
	}
	a := Award{CaseID: c.ID, New: isNew}
	if isNew {
		a.XP = c.XPReward
	}
	return a, nil
}

// Summary computes the dashboard totals. Completions of cases no longer in
// the registry are ignored.
func (t *Tracker) Summary(ctx context.Context) (Summary, error) {
	done, err := t.repo.Completed(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Total:     t.reg.Len(),
		Completed: make(map[string]bool, len(done)),
	}
	for _, d := range done {
		if t.reg.IndexOf(d.CaseID) < 0 {
			continue
		}
		s.Completed[d.CaseID] = true
		s.Solved++
		s.XP += d.XP
	}
	for _, c := range t.reg.All() {
		s.MaxXP += c.XPReward
		if s.NextUnsolved == "" && !s.Completed[c.ID] {
			s.NextUnsolved = c.ID
		}
	}
	return s, nil
}

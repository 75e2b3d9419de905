package cases

import (
	"errors"
	"fmt"
	"strings"
)

// validateCases performs all structural checks on the given case set.
// Returns an IntegrityError describing every problem found, or nil.
func validateCases(cs []Case) error {
	var errs []error
	var first string

	note := func(caseID string, err error) {
		if first == "" {
			first = caseID
		}
		errs = append(errs, err)
	}

	if len(cs) == 0 {
		return &IntegrityError{Err: errors.New("registry is empty")}
	}

	idSet := make(map[string]bool, len(cs))
	for _, c := range cs {
		if c.ID == "" {
			note(c.ID, fmt.Errorf("case %q has an empty ID", c.Title))
			continue
		}
		if idSet[c.ID] {
			note(c.ID, fmt.Errorf("duplicate case ID: %q", c.ID))
		}
		idSet[c.ID] = true
	}

	for _, c := range cs {
		for _, ref := range c.SubCases {
			if !idSet[ref] {
				note(c.ID, fmt.Errorf("case %q references nonexistent sub-case %q: %w", c.ID, ref, ErrNotFound))
			}
			if ref == c.ID {
				note(c.ID, fmt.Errorf("case %q lists itself as a sub-case", c.ID))
			}
		}
		if strings.TrimSpace(c.Solution.Answer) == "" {
			note(c.ID, fmt.Errorf("case %q has no solution answer", c.ID))
		}
		if len(c.Tables) == 0 {
			note(c.ID, fmt.Errorf("case %q exposes no tables", c.ID))
		}
		if c.XPReward < 0 {
			note(c.ID, fmt.Errorf("case %q: XPReward must be >= 0, got %d", c.ID, c.XPReward))
		}
	}

	if len(errs) > 0 {
		return &IntegrityError{
			CaseID: first,
			Err:    fmt.Errorf("registry validation failed:\n%w", errors.Join(errs...)),
		}
	}
	return nil
}

// Validate checks the compiled-in case set.
func Validate() error {
	return validateCases(seedCases)
}

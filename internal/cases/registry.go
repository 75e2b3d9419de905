package cases

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotFound is matched by lookups for IDs that are not registered.
var ErrNotFound = errors.New("case not found")

// IntegrityError reports a broken reference inside the case content, as
// opposed to a player mistake.
type IntegrityError struct {
	CaseID string
	Ref    string
	Err    error
}

func (e *IntegrityError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("case data integrity: %q references %q: %v", e.CaseID, e.Ref, e.Err)
	}
	return fmt.Sprintf("case data integrity: %q: %v", e.CaseID, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// Registry is the read-only ordered set of cases. Registry order is
// progression order.
type Registry struct {
	cases []Case
	byID  map[string]int
}

// NewRegistry validates the given cases and builds the lookup index.
func NewRegistry(cs []Case) (*Registry, error) {
	if err := validateCases(cs); err != nil {
		return nil, err
	}
	r := &Registry{
		cases: slices.Clone(cs),
		byID:  make(map[string]int, len(cs)),
	}
	for i := range r.cases {
		r.byID[r.cases[i].ID] = i
	}
	return r, nil
}

// Default returns the registry built from the compiled-in case set.
func Default() *Registry {
	return defaultRegistry
}

// Get returns a case by ID.
func (r *Registry) Get(id string) (Case, error) {
	i, ok := r.byID[id]
	if !ok {
		return Case{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return r.cases[i], nil
}

// IndexOf returns the progression index of a case, or -1.
func (r *Registry) IndexOf(id string) int {
	i, ok := r.byID[id]
	if !ok {
		return -1
	}
	return i
}

// At returns the case at the given progression index.
func (r *Registry) At(i int) (Case, bool) {
	if i < 0 || i >= len(r.cases) {
		return Case{}, false
	}
	return r.cases[i], true
}

// Len returns the number of registered cases.
func (r *Registry) Len() int {
	return len(r.cases)
}

// All returns all cases in progression order.
func (r *Registry) All() []Case {
	return slices.Clone(r.cases)
}

// First returns the first case in progression order.
func (r *Registry) First() (Case, bool) {
	return r.At(0)
}

// SubCases resolves the sub-case references of a case. An unresolved
// reference is an IntegrityError, never silently skipped.
func (r *Registry) SubCases(id string) ([]Case, error) {
	c, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	out := make([]Case, 0, len(c.SubCases))
	for _, ref := range c.SubCases {
		sub, err := r.Get(ref)
		if err != nil {
			return nil, &IntegrityError{CaseID: id, Ref: ref, Err: err}
		}
		out = append(out, sub)
	}
	return out, nil
}

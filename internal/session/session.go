// Package session gates query execution on a loaded case. A Session holds
// at most one active case; loading another case replaces it.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
)

// ErrNotInitialized is returned when a query is attempted before a case
// database has finished loading. Normal UI flow never reaches it.
var ErrNotInitialized = errors.New("session: no case database loaded")

// ErrSuperseded is returned by a LoadCaseDatabase call that was overtaken by
// a newer load before it finished. The session belongs to the newer case.
var ErrSuperseded = errors.New("session: case load superseded by a newer load")

// ReadinessFunc is run once by Initialize to confirm the backend is usable.
type ReadinessFunc func(ctx context.Context) error

// Session tracks which case is loaded and routes queries to the backend
// with that case's id.
type Session struct {
	backend api.Backend
	ready   ReadinessFunc
	logger  *zap.Logger

	initMu      sync.Mutex
	initialized bool

	mu      sync.RWMutex
	loadGen uint64
	caseID  string
	schema  []api.TableSchema
	loaded  bool
}

// Option configures a Session.
type Option func(*Session)

// WithReadiness sets the readiness check run by Initialize.
func WithReadiness(fn ReadinessFunc) Option {
	return func(s *Session) { s.ready = fn }
}

// New creates a Session over the given backend.
func New(backend api.Backend, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		logger:  logger.Named("session"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize establishes backend readiness. Once it has succeeded, further
// calls return immediately; a failed attempt may be retried.
func (s *Session) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized {
		return nil
	}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			s.logger.Warn("backend not ready", zap.Error(err))
			return err
		}
	}
	s.initialized = true
	s.logger.Debug("session initialized")
	return nil
}

// LoadCaseDatabase makes caseID the active case. Loading the already active
// case is a no-op. The case schema is fetched and cached, so an unknown case
// fails here with api.ErrNotFound. A failed load leaves no case active.
// When loads overlap, the last one started wins and the others return
// ErrSuperseded.
func (s *Session) LoadCaseDatabase(ctx context.Context, caseID string) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.loaded && s.caseID == caseID {
		s.mu.Unlock()
		return nil
	}
	s.loadGen++
	gen := s.loadGen
	s.loaded = false
	s.caseID = caseID
	s.schema = nil
	s.mu.Unlock()

	schema, err := s.backend.GetCaseSchema(ctx, caseID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		s.logger.Debug("load superseded", zap.String("case_id", caseID))
		return ErrSuperseded
	}
	if err != nil {
		s.caseID = ""
		s.logger.Warn("load case failed", zap.String("case_id", caseID), zap.Error(err))
		return err
	}
	s.schema = schema
	s.loaded = true
	s.logger.Debug("case loaded", zap.String("case_id", caseID), zap.Int("tables", len(schema)))
	return nil
}

// ExecuteQuery runs sql against the active case. Before a case is loaded it
// fails with ErrNotInitialized. After that it never returns an error: engine
// and transport failures are reported through QueryResult.Error.
func (s *Session) ExecuteQuery(ctx context.Context, sql string) (*api.QueryResult, error) {
	caseID, ok := s.active()
	if !ok {
		return nil, ErrNotInitialized
	}

	res, err := s.backend.ExecuteSQL(ctx, sql, caseID)
	if err != nil {
		return api.ErrorResult(api.UserMessage(err)), nil
	}
	return res, nil
}

// CheckSolution asks the backend to judge sql against the active case.
func (s *Session) CheckSolution(ctx context.Context, sql string) (*api.CheckResult, error) {
	caseID, ok := s.active()
	if !ok {
		return nil, ErrNotInitialized
	}
	return s.backend.CheckSolution(ctx, sql, caseID)
}

// CaseData fetches the full dataset of the active case.
func (s *Session) CaseData(ctx context.Context) ([]api.TableData, error) {
	caseID, ok := s.active()
	if !ok {
		return nil, ErrNotInitialized
	}
	return s.backend.GetCaseData(ctx, caseID)
}

// CaseID returns the active case id, or "" when none is loaded.
func (s *Session) CaseID() string {
	id, _ := s.active()
	return id
}

// Loaded reports whether a case load has completed.
func (s *Session) Loaded() bool {
	_, ok := s.active()
	return ok
}

// Schema returns the cached schema of the active case.
func (s *Session) Schema() []api.TableSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil
	}
	return slices.Clone(s.schema)
}

func (s *Session) active() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return "", false
	}
	return s.caseID, true
}

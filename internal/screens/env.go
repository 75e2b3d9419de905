// Package screens holds what every game screen shares: the services they
// talk to and the messages they broadcast.
package screens

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/hints"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/session"
	"github.com/abhisek/sleuth/internal/store"
)

// Env is handed to every screen.
type Env struct {
	Registry *cases.Registry
	Session  *session.Session
	Tracker  *progress.Tracker

	// Hints is nil when hints are turned off.
	Hints *hints.Service

	// Events feeds the dashboard's recent queries and may be nil. Queries
	// are recorded by the backend decorator, not by the screens.
	Events store.EventRepo
	Logger *zap.Logger
}

// ProgressMsg carries fresh progress totals, after startup and after every
// solved case.
type ProgressMsg struct {
	Summary progress.Summary
	Err     error
}

// LoadProgress returns a command that reads the progress summary.
func (e *Env) LoadProgress() tea.Cmd {
	return func() tea.Msg {
		s, err := e.Tracker.Summary(context.Background())
		return ProgressMsg{Summary: s, Err: err}
	}
}

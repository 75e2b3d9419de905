package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/store"
)

// RecordingBackend is a decorator that records every query submission as an
// event in the local store.
type RecordingBackend struct {
	inner     Backend
	repo      store.EventRepo
	sessionID string
	logger    *zap.Logger
}

// WithRecording wraps a Backend with query event recording.
func WithRecording(b Backend, repo store.EventRepo, sessionID string, logger *zap.Logger) Backend {
	return &RecordingBackend{
		inner:     b,
		repo:      repo,
		sessionID: sessionID,
		logger:    logger.Named("recorder"),
	}
}

func (r *RecordingBackend) GetCaseSchema(ctx context.Context, caseID string) ([]TableSchema, error) {
	return r.inner.GetCaseSchema(ctx, caseID)
}

func (r *RecordingBackend) GetCaseData(ctx context.Context, caseID string) ([]TableData, error) {
	return r.inner.GetCaseData(ctx, caseID)
}

func (r *RecordingBackend) ExecuteSQL(ctx context.Context, query, caseID string) (*QueryResult, error) {
	start := time.Now()
	res, err := r.inner.ExecuteSQL(ctx, query, caseID)

	data := store.QueryEventData{
		SessionID:  r.sessionID,
		CaseID:     caseID,
		Kind:       store.KindExecute,
		SQL:        query,
		DurationMs: time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		data.Outcome = store.OutcomeError
		data.ErrorMessage = UserMessage(err)
	case res.Failed():
		data.Outcome = store.OutcomeError
		data.ErrorMessage = res.Error
	case res.IsCorrect != nil && *res.IsCorrect:
		data.Outcome = store.OutcomeCorrect
		data.RowCount = len(res.Rows)
	case res.IsCorrect != nil:
		data.Outcome = store.OutcomeIncorrect
		data.RowCount = len(res.Rows)
	default:
		data.Outcome = store.OutcomeOK
		data.RowCount = len(res.Rows)
	}
	r.record(ctx, data)

	return res, err
}

func (r *RecordingBackend) CheckSolution(ctx context.Context, query, caseID string) (*CheckResult, error) {
	start := time.Now()
	res, err := r.inner.CheckSolution(ctx, query, caseID)

	data := store.QueryEventData{
		SessionID:  r.sessionID,
		CaseID:     caseID,
		Kind:       store.KindCheck,
		SQL:        query,
		DurationMs: time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		data.Outcome = store.OutcomeError
		data.ErrorMessage = UserMessage(err)
	case res.IsCorrect:
		data.Outcome = store.OutcomeCorrect
	default:
		data.Outcome = store.OutcomeIncorrect
	}
	r.record(ctx, data)

	return res, err
}

// record stores the event without failing the call it describes.
func (r *RecordingBackend) record(ctx context.Context, data store.QueryEventData) {
	if err := r.repo.AppendQueryEvent(context.WithoutCancel(ctx), data); err != nil {
		r.logger.Warn("failed to record query event",
			zap.String("case_id", data.CaseID),
			zap.String("kind", data.Kind),
			zap.Error(err))
	}
}

package api

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryBackend is a decorator that retries transport failures with
// exponential backoff and jitter. Engine verdicts are never retried.
type RetryBackend struct {
	inner  Backend
	config RetryConfig

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a Backend with retry logic.
func WithRetry(b Backend, cfg RetryConfig) Backend {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryBackend{inner: b, config: cfg, sleep: sleepCtx}
}

func (r *RetryBackend) GetCaseSchema(ctx context.Context, caseID string) ([]TableSchema, error) {
	return retry(ctx, r, func() ([]TableSchema, error) {
		return r.inner.GetCaseSchema(ctx, caseID)
	})
}

func (r *RetryBackend) GetCaseData(ctx context.Context, caseID string) ([]TableData, error) {
	return retry(ctx, r, func() ([]TableData, error) {
		return r.inner.GetCaseData(ctx, caseID)
	})
}

func (r *RetryBackend) ExecuteSQL(ctx context.Context, query, caseID string) (*QueryResult, error) {
	return retry(ctx, r, func() (*QueryResult, error) {
		return r.inner.ExecuteSQL(ctx, query, caseID)
	})
}

func (r *RetryBackend) CheckSolution(ctx context.Context, query, caseID string) (*CheckResult, error) {
	return retry(ctx, r, func() (*CheckResult, error) {
		return r.inner.CheckSolution(ctx, query, caseID)
	})
}

func retry[T any](ctx context.Context, r *RetryBackend, call func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := range r.config.MaxAttempts {
		v, err := call()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return zero, err
		}

		// Last attempt: don't sleep, just return the error.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		if err := r.sleep(ctx, r.backoff(attempt)); err != nil {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

func shouldRetry(err error) bool {
	// Context errors are never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return IsRetryable(err)
}

// backoff computes the wait duration for the given attempt.
func (r *RetryBackend) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

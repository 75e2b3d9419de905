package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendQueryEvent(ctx context.Context, data QueryEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := sqlite().Insert("query_events").
		Columns("sequence", "timestamp", "session_id", "case_id", "kind", "sql_text",
			"outcome", "error_message", "row_count", "duration_ms").
		Values(seqNum, time.Now().UnixMilli(), data.SessionID, data.CaseID, data.Kind,
			data.SQL, data.Outcome, data.ErrorMessage, data.RowCount, data.DurationMs).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save query event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentQueries(ctx context.Context, opts QueryOpts) ([]QueryEvent, error) {
	sel := sqlite().Select("sequence", "timestamp", "session_id", "case_id", "kind", "sql_text",
		"outcome", "error_message", "row_count", "duration_ms").
		From(entsql.Table("query_events"))

	var preds []*entsql.Predicate
	if opts.CaseID != "" {
		preds = append(preds, entsql.EQ("case_id", opts.CaseID))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	q, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent queries: %w", err)
	}
	defer rows.Close()

	var out []QueryEvent
	for rows.Next() {
		var (
			e  QueryEvent
			ts int64
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.CaseID, &e.Kind, &e.SQL,
			&e.Outcome, &e.ErrorMessage, &e.RowCount, &e.DurationMs); err != nil {
			return nil, fmt.Errorf("scan query event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := sqlite().Insert("hint_events").
		Columns("sequence", "timestamp", "session_id", "case_id", "sql_text", "hint_text").
		Values(seqNum, time.Now().UnixMilli(), data.SessionID, data.CaseID, data.SQL, data.HintText).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save hint event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := sqlite().Insert("llm_request_events").
		Columns("sequence", "timestamp", "provider", "model", "purpose", "input_tokens",
			"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body").
		Values(seqNum, time.Now().UnixMilli(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// LLMUsageByModel aggregates recorded requests per model, heaviest token
// users first.
func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	q, args := sqlite().Select(
		"model",
		"COUNT(*)",
		"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
		"SUM(input_tokens)",
		"SUM(output_tokens)",
		"CAST(AVG(latency_ms) AS INTEGER)",
	).
		From(entsql.Table("llm_request_events")).
		GroupBy("model").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b ModelUsage) int {
		if c := cmp.Compare(b.InputTokens+b.OutputTokens, a.InputTokens+a.OutputTokens); c != 0 {
			return c
		}
		return cmp.Compare(a.Model, b.Model)
	})
	return out, nil
}

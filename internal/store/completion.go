package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type completionRepo struct {
	db *sql.DB
}

// MarkSolved records the first completion of caseID and reports whether
// this call created it.
func (r *completionRepo) MarkSolved(ctx context.Context, caseID string, xp int) (bool, error) {
	q, args := sqlite().Insert("case_completions").
		Columns("case_id", "xp", "completed_at").
		Values(caseID, xp, time.Now().UnixMilli()).
		OnConflict(entsql.DoNothing()).
		Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("mark solved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark solved: %w", err)
	}
	return n == 1, nil
}

func (r *completionRepo) Completed(ctx context.Context) ([]Completion, error) {
	q, args := sqlite().Select("case_id", "xp", "completed_at").
		From(entsql.Table("case_completions")).
		OrderBy("completed_at", "case_id").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var (
			c  Completion
			ts int64
		)
		if err := rows.Scan(&c.CaseID, &c.XP, &ts); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		c.CompletedAt = time.UnixMilli(ts)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *completionRepo) TotalXP(ctx context.Context) (int, error) {
	q, args := sqlite().Select("COALESCE(SUM(xp), 0)").
		From(entsql.Table("case_completions")).
		Query()
	var total int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum xp: %w", err)
	}
	return total, nil
}

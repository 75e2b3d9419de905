// Package engine runs player queries against the case dataset and judges
// them against each case's reference answer.
package engine

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

//go:embed dataset.sql
var datasetSQL string

// SuccessMessage accompanies a correct result.
const SuccessMessage = "Поздравляем! Вы нашли правильное решение!"

// Config bounds query execution.
type Config struct {
	QueryTimeout time.Duration
	MaxRows      int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueryTimeout: 5 * time.Second,
		MaxRows:      1000,
	}
}

// Validate checks that the config values are usable.
func (c Config) Validate() error {
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("engine: QueryTimeout must be positive, got %s", c.QueryTimeout)
	}
	if c.MaxRows < 1 {
		return fmt.Errorf("engine: MaxRows must be >= 1, got %d", c.MaxRows)
	}
	return nil
}

// Engine owns a read-only in-memory copy of the dataset.
type Engine struct {
	db     *sql.DB
	reg    *cases.Registry
	cfg    Config
	logger *zap.Logger

	refMu sync.Mutex
	refs  map[string]*api.QueryResult
}

// Open seeds a fresh in-memory dataset and locks it against writes. Every
// table referenced by a case in reg must exist in the dataset.
func Open(ctx context.Context, reg *cases.Registry, cfg Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.ExecContext(ctx, datasetSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed dataset: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("lock dataset: %w", err)
	}

	e := &Engine{
		db:     db,
		reg:    reg,
		cfg:    cfg,
		logger: logger.Named("engine"),
		refs:   make(map[string]*api.QueryResult),
	}
	if err := e.checkDataset(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the dataset.
func (e *Engine) Close() error {
	return e.db.Close()
}

// checkDataset confirms the seeded tables match tableDefs and that every
// case only names known tables.
func (e *Engine) checkDataset(ctx context.Context) error {
	for name, def := range tableDefs {
		cols, err := e.tableColumns(ctx, name)
		if err != nil {
			return err
		}
		want := make([]string, len(def.columns))
		for i, c := range def.columns {
			want[i] = c.name
		}
		if !slices.Equal(cols, want) {
			return fmt.Errorf("dataset: table %s has columns %v, want %v", name, cols, want)
		}
	}
	for _, c := range e.reg.All() {
		for _, t := range c.Tables {
			if _, ok := tableDefs[t]; !ok {
				return &cases.IntegrityError{CaseID: c.ID, Ref: t, Err: errors.New("table not in dataset")}
			}
		}
	}
	return nil
}

func (e *Engine) tableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, fmt.Errorf("dataset: inspect %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("dataset: inspect %s: %w", table, err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// Execute runs a guarded query. With a caseID the result also carries the
// verdict against that case's reference answer.
func (e *Engine) Execute(ctx context.Context, query, caseID string) (*api.QueryResult, error) {
	var (
		c     cases.Case
		judge = caseID != ""
	)
	if judge {
		var err error
		if c, err = e.reg.Get(caseID); err != nil {
			return nil, caseNotFound(caseID)
		}
	}

	q, err := Guard(query)
	if err != nil {
		e.logger.Debug("query rejected", zap.String("case_id", caseID), zap.Error(err))
		return nil, err
	}

	start := time.Now()
	res, err := e.run(ctx, q, e.cfg.MaxRows)
	if err != nil {
		e.logger.Debug("query failed", zap.String("case_id", caseID), zap.Error(err))
		return nil, err
	}
	e.logger.Debug("query executed",
		zap.String("case_id", caseID),
		zap.Int("rows", len(res.Rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if !judge {
		return res, nil
	}

	ref, err := e.reference(ctx, c)
	if err != nil {
		return nil, err
	}
	ok := SameResult(res, ref)
	res.IsCorrect = &ok
	if ok {
		res.Message = SuccessMessage
	}
	return res, nil
}

// Check judges query against the case's reference answer.
func (e *Engine) Check(ctx context.Context, query, caseID string) (*api.CheckResult, error) {
	if caseID == "" {
		return nil, invalid("caseId is required")
	}
	res, err := e.Execute(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	return &api.CheckResult{IsCorrect: res.Correct()}, nil
}

// Schema describes the tables exposed for a case.
func (e *Engine) Schema(caseID string) ([]api.TableSchema, error) {
	c, err := e.reg.Get(caseID)
	if err != nil {
		return nil, caseNotFound(caseID)
	}
	out := make([]api.TableSchema, 0, len(c.Tables))
	for _, t := range c.Tables {
		out = append(out, tableDefs[t].schema())
	}
	return out, nil
}

// Data returns every row of the tables exposed for a case, in primary key
// order.
func (e *Engine) Data(ctx context.Context, caseID string) ([]api.TableData, error) {
	c, err := e.reg.Get(caseID)
	if err != nil {
		return nil, caseNotFound(caseID)
	}
	out := make([]api.TableData, 0, len(c.Tables))
	for _, t := range c.Tables {
		def := tableDefs[t]
		res, err := e.run(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY %s", def.name, def.columns[0].name), 0)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t, err)
		}
		out = append(out, api.TableData{TableName: def.name, Title: def.title, Data: res.Rows})
	}
	return out, nil
}

// reference runs and caches a case's answer. The dataset is read-only so
// the result never changes.
func (e *Engine) reference(ctx context.Context, c cases.Case) (*api.QueryResult, error) {
	e.refMu.Lock()
	ref, ok := e.refs[c.ID]
	e.refMu.Unlock()
	if ok {
		return ref, nil
	}

	ref, err := e.run(ctx, c.Solution.Answer, 0)
	if err != nil {
		e.logger.Error("reference answer failed", zap.String("case_id", c.ID), zap.Error(err))
		return nil, &QueryError{Code: CodeInternal, Message: "reference answer failed", Err: err}
	}

	e.refMu.Lock()
	e.refs[c.ID] = ref
	e.refMu.Unlock()
	return ref, nil
}

// run executes q and collects at most maxRows rows; zero means no limit.
func (e *Engine) run(ctx context.Context, q string, maxRows int) (*api.QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.QueryTimeout)
	defer cancel()

	rows, err := e.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	raw, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}
	cols := uniqueColumns(raw)

	res := &api.QueryResult{Columns: cols, Rows: []api.Row{}}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if maxRows > 0 && len(res.Rows) >= maxRows {
			return nil, invalid(fmt.Sprintf("Query returned more than %d rows", maxRows))
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify(err)
		}
		row := make(api.Row, len(cols))
		for i, c := range cols {
			row[c] = normalize(vals[i])
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return res, nil
}

// uniqueColumns suffixes repeated names: amount, amount_2, amount_3.
func uniqueColumns(cols []string) []string {
	out := make([]string, len(cols))
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		name := c
		for n := 2; seen[name]; n++ {
			name = c + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.DateTime)
	default:
		return x
	}
}

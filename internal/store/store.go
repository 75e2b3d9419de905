package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the local progress database and hands out repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// CompletionRepo returns a CompletionRepo backed by this store.
func (s *Store) CompletionRepo() CompletionRepo {
	return &completionRepo{db: s.db}
}

// sqlite returns an ent SQL builder for the SQLite dialect.
func sqlite() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func pk() *entsql.ColumnBuilder {
	return entsql.Column("id").Type("integer").Attr("PRIMARY KEY AUTOINCREMENT")
}

func col(name, typ, attr string) *entsql.ColumnBuilder {
	return entsql.Column(name).Type(typ).Attr(attr)
}

// tables lists every event and progress table in creation order.
func tables() []*entsql.TableBuilder {
	b := sqlite()
	return []*entsql.TableBuilder{
		b.CreateTable("query_events").IfNotExists().Columns(
			pk(),
			col("sequence", "integer", "NOT NULL UNIQUE"),
			col("timestamp", "integer", "NOT NULL"),
			col("session_id", "text", "NOT NULL"),
			col("case_id", "text", "NOT NULL"),
			col("kind", "text", "NOT NULL"),
			col("sql_text", "text", "NOT NULL"),
			col("outcome", "text", "NOT NULL"),
			col("error_message", "text", "NOT NULL DEFAULT ''"),
			col("row_count", "integer", "NOT NULL DEFAULT 0"),
			col("duration_ms", "integer", "NOT NULL DEFAULT 0"),
		),
		b.CreateTable("hint_events").IfNotExists().Columns(
			pk(),
			col("sequence", "integer", "NOT NULL UNIQUE"),
			col("timestamp", "integer", "NOT NULL"),
			col("session_id", "text", "NOT NULL"),
			col("case_id", "text", "NOT NULL"),
			col("sql_text", "text", "NOT NULL"),
			col("hint_text", "text", "NOT NULL"),
		),
		b.CreateTable("llm_request_events").IfNotExists().Columns(
			pk(),
			col("sequence", "integer", "NOT NULL UNIQUE"),
			col("timestamp", "integer", "NOT NULL"),
			col("provider", "text", "NOT NULL"),
			col("model", "text", "NOT NULL"),
			col("purpose", "text", "NOT NULL"),
			col("input_tokens", "integer", "NOT NULL DEFAULT 0"),
			col("output_tokens", "integer", "NOT NULL DEFAULT 0"),
			col("latency_ms", "integer", "NOT NULL DEFAULT 0"),
			col("success", "integer", "NOT NULL"),
			col("error_message", "text", "NOT NULL DEFAULT ''"),
			col("request_body", "text", "NOT NULL DEFAULT ''"),
			col("response_body", "text", "NOT NULL DEFAULT ''"),
		),
		b.CreateTable("case_completions").IfNotExists().Columns(
			col("case_id", "text", "PRIMARY KEY"),
			col("xp", "integer", "NOT NULL"),
			col("completed_at", "integer", "NOT NULL"),
		),
	}
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, t := range tables() {
		q, args := t.Query()
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_query_events_case ON query_events (case_id, sequence)`)
	return err
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. SLEUTH_DB environment variable
// 2. $XDG_DATA_HOME/sleuth/sleuth.db
// 3. ~/.local/share/sleuth/sleuth.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SLEUTH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "sleuth", "sleuth.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of a database path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

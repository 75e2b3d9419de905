package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
)

func openEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(context.Background(), cases.Default(), DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEveryAnswerIsCorrect(t *testing.T) {
	e := openEngine(t)
	ctx := context.Background()

	for _, c := range cases.Default().All() {
		t.Run(c.ID, func(t *testing.T) {
			res, err := e.Execute(ctx, c.Solution.Answer, c.ID)
			if err != nil {
				t.Fatalf("execute answer: %v", err)
			}
			if len(res.Rows) == 0 {
				t.Error("answer returns no rows")
			}
			if !res.Correct() {
				t.Error("answer not judged correct")
			}
			if res.Message != SuccessMessage {
				t.Errorf("message = %q", res.Message)
			}
		})
	}
}

func TestCase003(t *testing.T) {
	e := openEngine(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"canonical", "SELECT recipient_name, amount FROM finances WHERE transaction_date = '1380-09-06' AND amount > 50", true},
		{"whole table", "SELECT * FROM finances", false},
		{"reordered columns and rows", "SELECT amount, recipient_name FROM finances WHERE amount > 50 AND transaction_date = '1380-09-06' ORDER BY amount DESC", true},
		{"missing filter", "SELECT recipient_name, amount FROM finances WHERE amount > 50", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Check(ctx, tt.query, "case-003")
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if got.IsCorrect != tt.want {
				t.Errorf("isCorrect = %v, want %v", got.IsCorrect, tt.want)
			}
		})
	}
}

func TestExecute_WithoutCase(t *testing.T) {
	e := openEngine(t)
	res, err := e.Execute(context.Background(), "SELECT guard_name, time FROM camp_logs WHERE log_id = 6", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.IsCorrect != nil {
		t.Error("verdict set without a case")
	}
	if len(res.Rows) != 1 || res.Rows[0]["guard_name"] != "Прохор" || res.Rows[0]["time"] != "02:40:00" {
		t.Errorf("rows = %+v", res.Rows)
	}
}

func TestExecute_RowKeysMatchColumns(t *testing.T) {
	e := openEngine(t)
	queries := []string{
		"SELECT * FROM camp_logs",
		"SELECT c.guard_name, f.amount, f.amount FROM camp_logs c JOIN finances f ON c.guard_name = f.recipient_name",
		"SELECT COUNT(*) FROM secret_negotiations",
	}
	for _, q := range queries {
		res, err := e.Execute(context.Background(), q, "")
		if err != nil {
			t.Fatalf("%s: %v", q, err)
		}
		for i, row := range res.Rows {
			if len(row) != len(res.Columns) {
				t.Fatalf("%s: row %d has %d keys for %d columns", q, i, len(row), len(res.Columns))
			}
			for _, c := range res.Columns {
				if _, ok := row[c]; !ok {
					t.Fatalf("%s: row %d missing column %q", q, i, c)
				}
			}
		}
	}
}

func TestExecute_DuplicateColumnsRenamed(t *testing.T) {
	e := openEngine(t)
	res, err := e.Execute(context.Background(), "SELECT amount, amount, amount FROM finances", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := []string{"amount", "amount_2", "amount_3"}
	for i, c := range want {
		if res.Columns[i] != c {
			t.Errorf("columns = %v, want %v", res.Columns, want)
			break
		}
	}
}

func TestExecute_Errors(t *testing.T) {
	e := openEngine(t)
	tests := []struct {
		name   string
		query  string
		caseID string
		code   Code
		prefix string
	}{
		{"unknown case", "SELECT 1", "case-999", CodeNotFound, "Case case-999 not found"},
		{"empty", "   ", "", CodeInvalid, "Query cannot be empty"},
		{"not select", "EXPLAIN SELECT 1", "", CodeInvalid, "Only SELECT queries are allowed"},
		{"forbidden", "SELECT 1; DROP TABLE finances", "", CodeForbidden, "This operation is not allowed"},
		{"unknown column", "SELECT nope FROM finances", "", CodeInvalid, "Invalid column name in query"},
		{"unknown table", "SELECT * FROM banners", "", CodeInvalid, "Invalid table name in query"},
		{"syntax", "SELECT * FROM finances WHERE AND amount > 1", "", CodeInvalid, "SQL syntax error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Execute(context.Background(), tt.query, tt.caseID)
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("expected QueryError, got %v", err)
			}
			if qe.Code != tt.code {
				t.Errorf("code = %d, want %d", qe.Code, tt.code)
			}
			if !strings.HasPrefix(qe.Message, tt.prefix) {
				t.Errorf("message = %q, want prefix %q", qe.Message, tt.prefix)
			}
		})
	}
}

func TestExecute_DatasetIsReadOnly(t *testing.T) {
	e := openEngine(t)
	// Bypass the guard to make sure the connection itself refuses writes.
	if _, err := e.db.Exec("DELETE FROM finances"); err == nil {
		t.Fatal("write succeeded on a query_only dataset")
	}
}

func TestExecute_RowLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRows = 3
	e, err := Open(context.Background(), cases.Default(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer e.Close()

	_, err = e.Execute(context.Background(), "SELECT * FROM camp_logs", "")
	var qe *QueryError
	if !errors.As(err, &qe) || qe.Code != CodeInvalid {
		t.Fatalf("expected row limit error, got %v", err)
	}
}

func TestCheck_RequiresCase(t *testing.T) {
	e := openEngine(t)
	if _, err := e.Check(context.Background(), "SELECT 1", ""); err == nil {
		t.Fatal("expected error without caseId")
	}
}

func TestSchema(t *testing.T) {
	e := openEngine(t)

	got, err := e.Schema("case-003")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if len(got) != 1 || got[0].TableName != "finances" {
		t.Fatalf("schema = %+v", got)
	}
	if got[0].Title != "Схема таблицы finances" {
		t.Errorf("title = %q", got[0].Title)
	}
	pk := got[0].Columns[0]
	if pk.Name != "trans_id" || !pk.IsPrimary || pk.IsNullable {
		t.Errorf("primary column = %+v", pk)
	}

	multi, err := e.Schema("case-006")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if len(multi) != 2 {
		t.Errorf("case-006 tables = %d, want 2", len(multi))
	}

	_, err = e.Schema("case-999")
	var qe *QueryError
	if !errors.As(err, &qe) || qe.Code.Status() != http.StatusNotFound {
		t.Errorf("expected 404 error, got %v", err)
	}
	if !errors.Is(err, ErrCaseNotFound) {
		t.Error("not found error does not wrap ErrCaseNotFound")
	}
}

func TestData(t *testing.T) {
	e := openEngine(t)
	got, err := e.Data(context.Background(), "case-005")
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Записи о перемещениях (movement_records)" {
		t.Fatalf("data = %+v", got)
	}
	if len(got[0].Data) != 5 {
		t.Errorf("rows = %d, want 5", len(got[0].Data))
	}
	if got[0].Data[4]["companion"] != nil {
		t.Errorf("NULL companion = %v", got[0].Data[4]["companion"])
	}
}

func TestSameResult(t *testing.T) {
	base := &api.QueryResult{
		Columns: []string{"name", "amount"},
		Rows:    []api.Row{{"name": "a", "amount": int64(1)}, {"name": "b", "amount": int64(2)}},
	}
	tests := []struct {
		name  string
		other *api.QueryResult
		want  bool
	}{
		{"identical", base, true},
		{"row order", &api.QueryResult{
			Columns: []string{"amount", "name"},
			Rows:    []api.Row{{"name": "b", "amount": int64(2)}, {"name": "a", "amount": int64(1)}},
		}, true},
		{"float equals int", &api.QueryResult{
			Columns: []string{"name", "amount"},
			Rows:    []api.Row{{"name": "a", "amount": 1.0}, {"name": "b", "amount": 2.0}},
		}, true},
		{"different column", &api.QueryResult{
			Columns: []string{"name", "total"},
			Rows:    []api.Row{{"name": "a", "total": int64(1)}, {"name": "b", "total": int64(2)}},
		}, false},
		{"duplicate row", &api.QueryResult{
			Columns: []string{"name", "amount"},
			Rows:    []api.Row{{"name": "a", "amount": int64(1)}, {"name": "a", "amount": int64(1)}},
		}, false},
		{"string vs number", &api.QueryResult{
			Columns: []string{"name", "amount"},
			Rows:    []api.Row{{"name": "a", "amount": "1"}, {"name": "b", "amount": "2"}},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameResult(tt.other, base); got != tt.want {
				t.Errorf("SameResult = %v, want %v", got, tt.want)
			}
		})
	}
}

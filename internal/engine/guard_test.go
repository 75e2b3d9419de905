package engine

import (
	"errors"
	"testing"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    string
		code    Code
		message string
	}{
		{name: "plain select", query: "SELECT * FROM finances", want: "SELECT * FROM finances"},
		{name: "lowercase", query: "  select 1  ", want: "select 1"},
		{name: "trailing semicolon", query: "SELECT 1;", want: "SELECT 1"},
		{name: "cte", query: "WITH t AS (SELECT 1 AS x) SELECT x FROM t", want: "WITH t AS (SELECT 1 AS x) SELECT x FROM t"},
		{name: "keyword inside literal", query: "SELECT * FROM camp_logs WHERE notes = 'update (drop'", want: "SELECT * FROM camp_logs WHERE notes = 'update (drop'"},
		{name: "replace function", query: "SELECT replace(notes, 'a', 'b') FROM camp_logs", want: "SELECT replace(notes, 'a', 'b') FROM camp_logs"},
		{name: "column named like keyword", query: "SELECT updated_at FROM t", want: "SELECT updated_at FROM t"},

		{name: "empty", query: "", code: CodeInvalid, message: "Query cannot be empty"},
		{name: "blank", query: " \n\t", code: CodeInvalid, message: "Query cannot be empty"},
		{name: "insert", query: "INSERT INTO finances VALUES (1)", code: CodeInvalid, message: "Only SELECT queries are allowed"},
		{name: "comment first", query: "-- note\nDELETE FROM finances", code: CodeInvalid, message: "Only SELECT queries are allowed"},
		{name: "stacked drop", query: "SELECT 1; DROP TABLE finances", code: CodeForbidden, message: "This operation is not allowed"},
		{name: "cte delete", query: "WITH x AS (SELECT 1) DELETE FROM finances", code: CodeForbidden, message: "This operation is not allowed"},
		{name: "pragma", query: "SELECT 1; PRAGMA query_only = OFF", code: CodeForbidden, message: "This operation is not allowed"},
		{name: "attach", query: "SELECT 1; ATTACH 'x.db' AS x", code: CodeForbidden, message: "This operation is not allowed"},
		{name: "open paren", query: "SELECT (1 FROM finances", code: CodeInvalid, message: "Unbalanced parentheses in query"},
		{name: "close paren", query: "SELECT 1) FROM finances", code: CodeInvalid, message: "Unbalanced parentheses in query"},
		{name: "from from", query: "SELECT * FROM FROM finances", code: CodeInvalid, message: "Duplicate FROM clause"},
		{name: "where where", query: "SELECT * FROM finances WHERE where amount > 1", code: CodeInvalid, message: "Duplicate WHERE clause"},
		{name: "select select", query: "SELECT SELECT 1", code: CodeInvalid, message: "Duplicate SELECT keyword"},
		{name: "group group", query: "SELECT 1 FROM finances GROUP GROUP BY 1", code: CodeInvalid, message: "Duplicate GROUP BY clause"},
		{name: "order order", query: "SELECT 1 FROM finances ORDER ORDER BY 1", code: CodeInvalid, message: "Duplicate ORDER BY clause"},
		{name: "two selects", query: "SELECT 1; SELECT 2", code: CodeInvalid, message: "Only a single statement is allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Guard(tt.query)
			if tt.message == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Guard = %q, want %q", got, tt.want)
				}
				return
			}
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("expected QueryError, got %v", err)
			}
			if qe.Code != tt.code || qe.Message != tt.message {
				t.Errorf("got (%d, %q), want (%d, %q)", qe.Code, qe.Message, tt.code, tt.message)
			}
		})
	}
}

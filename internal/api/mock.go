package api

import (
	"context"
	"sync"
)

// MockBackend is a programmable Backend for tests. Nil funcs fall back to
// empty successful answers.
type MockBackend struct {
	SchemaFn  func(ctx context.Context, caseID string) ([]TableSchema, error)
	DataFn    func(ctx context.Context, caseID string) ([]TableData, error)
	ExecuteFn func(ctx context.Context, query, caseID string) (*QueryResult, error)
	CheckFn   func(ctx context.Context, query, caseID string) (*CheckResult, error)

	mu    sync.Mutex
	calls map[string]int
}

var _ Backend = (*MockBackend)(nil)

func (m *MockBackend) count(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

// CallCount returns how many times op ("schema", "data", "execute",
// "check") was called.
func (m *MockBackend) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockBackend) GetCaseSchema(ctx context.Context, caseID string) ([]TableSchema, error) {
	m.count("schema")
	if m.SchemaFn != nil {
		return m.SchemaFn(ctx, caseID)
	}
	return []TableSchema{}, nil
}

func (m *MockBackend) GetCaseData(ctx context.Context, caseID string) ([]TableData, error) {
	m.count("data")
	if m.DataFn != nil {
		return m.DataFn(ctx, caseID)
	}
	return []TableData{}, nil
}

func (m *MockBackend) ExecuteSQL(ctx context.Context, query, caseID string) (*QueryResult, error) {
	m.count("execute")
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, query, caseID)
	}
	return &QueryResult{Columns: []string{}, Rows: []Row{}}, nil
}

func (m *MockBackend) CheckSolution(ctx context.Context, query, caseID string) (*CheckResult, error) {
	m.count("check")
	if m.CheckFn != nil {
		return m.CheckFn(ctx, query, caseID)
	}
	return &CheckResult{}, nil
}

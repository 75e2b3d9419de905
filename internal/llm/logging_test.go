package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/sleuth/internal/store"
)

type fakeEventRepo struct {
	store.EventRepo
	llm []store.LLMRequestEventData
	err error
}

func (f *fakeEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.llm = append(f.llm, data)
	return f.err
}

func TestRecordingProvider_Success(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	repo := &fakeEventRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"hint":"x"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4, TotalTokens: 16},
	})
	p := WithRecording(mock, ProviderMock, repo, zap.New(core))

	ctx := WithPurpose(context.Background(), PurposeHint)
	if _, err := p.Generate(ctx, Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "help"}},
		Schema:   hintTestSchema(),
	}); err != nil {
		t.Fatal(err)
	}

	if len(repo.llm) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(repo.llm))
	}
	got := repo.llm[0]
	if got.Provider != "mock" || got.Model != "mock" || got.Purpose != "hint" || !got.Success {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.InputTokens != 12 || got.OutputTokens != 4 || got.ResponseBody != `{"hint":"x"}` {
		t.Fatalf("unexpected usage or body: %+v", got)
	}
	for _, part := range []string{"[system]\nsys", "[user]\nhelp", "[schema: test-hint]"} {
		if !strings.Contains(got.RequestBody, part) {
			t.Errorf("request body missing %q:\n%s", part, got.RequestBody)
		}
	}
	if logs.FilterMessage("llm request").Len() != 1 {
		t.Fatalf("expected one debug log, got %v", logs.All())
	}
}

func TestRecordingProvider_FailureAndRepoError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	repo := &fakeEventRepo{err: errors.New("disk full")}
	p := WithRecording(NewMockProvider(), ProviderMock, repo, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected provider error")
	}
	if len(repo.llm) != 1 || repo.llm[0].Success || repo.llm[0].ErrorMessage == "" {
		t.Fatalf("unexpected event: %+v", repo.llm)
	}
	if logs.FilterMessage("llm request failed").Len() != 1 {
		t.Fatal("missing failure log")
	}
	if logs.FilterMessage("record llm request").Len() != 1 {
		t.Fatal("repo error should be logged, not returned")
	}
}

func TestRecordingProvider_NilRepo(t *testing.T) {
	p := WithRecording(NewMockProvider(ok()), ProviderMock, nil, zap.NewNop())
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatal(err)
	}
}

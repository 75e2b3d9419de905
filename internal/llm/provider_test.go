package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"testing"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` || resp1.Usage.InputTokens != 10 || resp1.StopReason != "end" {
		t.Fatalf("unexpected first response: %+v", resp1)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
	if last, ok := mock.LastRequest(); !ok || last.Messages[0].Content != "second" {
		t.Fatalf("LastRequest = %+v, %v", last, ok)
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}

	mock.Default = &MockResponse{Content: json.RawMessage(`{"hint":"d"}`)}
	for range 2 {
		resp, err := mock.Generate(context.Background(), Request{})
		if err != nil || string(resp.Content) != `{"hint":"d"}` {
			t.Fatalf("default response: %v, %v", resp, err)
		}
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"nope":true}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: hintTestSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
	mock.AddResponse(MockResponse{Content: json.RawMessage(`{}`)})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
	if _, err := mock.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("queued response: %v", err)
	}
}

func TestFinish(t *testing.T) {
	content := json.RawMessage(`{"hint":"Про`)

	_, err := finish(Request{Schema: hintTestSchema()}, content, Usage{}, "m", "max_tokens")
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("truncated: expected ErrMaxTokensExceeded, got %T", err)
	}

	_, err = finish(Request{Schema: hintTestSchema()}, content, Usage{}, "m", "end")
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("complete: expected ErrInvalidResponse, got %T", err)
	}

	resp, err := finish(Request{}, content, Usage{TotalTokens: 3}, "m", "max_tokens")
	if err != nil || resp.StopReason != "max_tokens" || resp.Usage.TotalTokens != 3 {
		t.Fatalf("unstructured: %+v, %v", resp, err)
	}
}

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("boom")
	if err := classifyStatus(http.StatusTooManyRequests, cause); !errors.Is(err, cause) || !IsUnavailable(err) {
		t.Fatalf("429: %v", err)
	}
	var rl *ErrRateLimit
	if !errors.As(classifyStatus(http.StatusTooManyRequests, cause), &rl) {
		t.Fatal("429 should be ErrRateLimit")
	}
	var un *ErrProviderUnavailable
	if !errors.As(classifyStatus(http.StatusBadGateway, cause), &un) {
		t.Fatal("502 should be ErrProviderUnavailable")
	}
	if IsUnavailable(&ErrInvalidResponse{Err: cause}) {
		t.Fatal("invalid response is not unavailability")
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, PurposeHint)
	if p := PurposeFrom(ctx); p != "hint" {
		t.Fatalf("expected 'hint', got %q", p)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("gpt-4o-mini should be priced")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("Cost = %v, want 0.75", got)
	}
	if LookupCost("mock") != nil {
		t.Fatal("mock should not be priced")
	}
}

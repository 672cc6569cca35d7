package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"skills":["go"]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Content: json.RawMessage(`{"questions":[]}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Prompt: "first"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"skills":["go"]}` {
		t.Fatalf("unexpected content: %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"questions":[]}` {
		t.Fatalf("unexpected content: %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider()
	mock.Enqueue(MockResponse{Content: json.RawMessage(`{}`)})

	_, _ = mock.Generate(context.Background(), Request{Instructions: "sys"})

	calls := mock.Calls()
	if len(calls) != 1 || calls[0].Instructions != "sys" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
}

func TestFinish(t *testing.T) {
	schema := &Schema{Name: "test-finish", Definition: map[string]any{
		"type":     "object",
		"required": []any{"skills"},
	}}
	tests := []struct {
		name          string
		r             reply
		wantTruncated bool
		wantErr       bool
	}{
		{"valid", reply{content: json.RawMessage(`{"skills":[]}`), usage: Usage{InputTokens: 3}}, false, false},
		{"truncated wins over schema", reply{content: json.RawMessage(`{"ski`), truncated: true}, true, true},
		{"empty", reply{}, false, true},
		{"schema mismatch", reply{content: json.RawMessage(`{}`)}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := finish(Request{Schema: schema}, tt.r)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Usage != tt.r.usage {
					t.Fatalf("usage = %+v, want %+v", resp.Usage, tt.r.usage)
				}
				return
			}
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
			if inv.Truncated != tt.wantTruncated {
				t.Fatalf("Truncated = %v, want %v", inv.Truncated, tt.wantTruncated)
			}
		})
	}
}

func TestErrUnavailable_Temporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		if got := (&ErrUnavailable{Status: tt.status}).Temporary(); got != tt.want {
			t.Errorf("Temporary() for %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestUnavailable_RetryAfterHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")
	var un *ErrUnavailable
	if !errors.As(unavailable(429, h, errors.New("slow down")), &un) {
		t.Fatal("expected ErrUnavailable")
	}
	if un.RetryAfter != 7*time.Second || un.Status != 429 {
		t.Fatalf("unexpected error: %+v", un)
	}

	h.Set("Retry-After", "Wed, 21 Oct 2026 07:28:00 GMT")
	errors.As(unavailable(503, h, nil), &un)
	if un.RetryAfter != 0 {
		t.Fatalf("expected date form to be ignored, got %s", un.RetryAfter)
	}
}

func TestTaskContext(t *testing.T) {
	ctx := context.Background()
	if got := TaskFrom(ctx); got != "unknown" {
		t.Fatalf("expected 'unknown', got %q", got)
	}
	ctx = WithTask(ctx, "extract-skills")
	if got := TaskFrom(ctx); got != "extract-skills" {
		t.Fatalf("expected 'extract-skills', got %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: ProviderConfig{APIKey: "sk"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: ProviderConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock provider, got %q", p.ModelID())
	}
}

func TestNewProvider_WrapsWithTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "openai"
	cfg.OpenAI.APIKey = "sk-test"

	p, err := NewProvider(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*timeoutProvider); !ok {
		t.Fatalf("expected timeout wrapper, got %T", p)
	}
	if p.ModelID() != "gpt-4o-mini" {
		t.Fatalf("expected gpt-4o-mini, got %q", p.ModelID())
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "openai"}, nil); err == nil {
		t.Fatal("expected error for missing key")
	}
}

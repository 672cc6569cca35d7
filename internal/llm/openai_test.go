package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_HappyPathWithSchema(t *testing.T) {
	var got map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"questions":["What is a goroutine?"]}`, "stop"))
	})

	resp, err := p.Generate(context.Background(), Request{
		Instructions: "You write interview questions.",
		Prompt:       "go",
		Schema: &Schema{
			Name: "test-openai-questions",
			Definition: map[string]any{
				"type":       "object",
				"properties": map[string]any{"questions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}}},
				"required":   []any{"questions"},
			},
		},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}

	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
	if user, _ := msgs[1].(map[string]any); user["role"] != "user" || user["content"] != "go" {
		t.Fatalf("unexpected user message: %v", msgs[1])
	}
	if _, ok := got["response_format"]; !ok {
		t.Fatal("expected response_format in request")
	}
}

func TestOpenAIProvider_SchemaMismatch(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"questions":"none"}`, "stop"))
	})

	_, err := p.Generate(context.Background(), Request{
		Prompt: "go",
		Schema: &Schema{
			Name: "test-openai-mismatch",
			Definition: map[string]any{
				"type":       "object",
				"properties": map[string]any{"questions": map[string]any{"type": "array"}},
			},
		},
	})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"questions":["What is`, "length"))
	})

	_, err := p.Generate(context.Background(), Request{Prompt: "go", MaxTokens: 5})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) || !inv.Truncated {
		t.Fatalf("expected truncated ErrInvalidResponse, got: %T (%v)", err, err)
	}
	if string(inv.Content) != `{"questions":["What is` {
		t.Fatalf("expected partial content kept, got %s", inv.Content)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		temporary bool
	}{
		{"rate limit", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
		{"bad key", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "server_error", "message": "nope"},
				})
			})
			_, err := p.Generate(context.Background(), Request{
				Prompt:    "test",
				MaxTokens: 100,
			})
			var un *ErrUnavailable
			if !errors.As(err, &un) {
				t.Fatalf("expected ErrUnavailable, got: %T (%v)", err, err)
			}
			if un.Status != tt.status || un.Temporary() != tt.temporary {
				t.Fatalf("Status = %d Temporary = %v, want %d %v", un.Status, un.Temporary(), tt.status, tt.temporary)
			}
		})
	}
}

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
)

func newTestChat(url string) *ChatProvider {
	return NewChatProvider(&ChatConfig{
		Config: Config{
			APIKey:   "test-key",
			BaseURL:  url,
			Model:    "gpt-test",
			Provider: "test",
			Logger:   zap.NewNop(),
		},
		MaxTokens:   256,
		Temperature: 0.5,
	})
}

func TestChatProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-test" || req.MaxTokens != 256 {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "write" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": `{"title":"T","body":"B","tags":[]}`},
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
		})
	}))
	defer server.Close()

	got, err := newTestChat(server.URL).Complete(context.Background(), domain.Prompt{System: "sys", User: "write"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.Text != `{"title":"T","body":"B","tags":[]}` {
		t.Errorf("unexpected text: %q", got.Text)
	}
	if got.PromptTokens != 12 || got.CompletionTokens != 8 || got.TotalTokens() != 20 {
		t.Errorf("unexpected usage: %+v", got)
	}
}

func TestChatProvider_NoSystemMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []json.RawMessage `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 {
			t.Errorf("expected only the user message, got %d", len(req.Messages))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "ok"}}},
		})
	}))
	defer server.Close()

	if _, err := newTestChat(server.URL).Complete(context.Background(), domain.Prompt{User: "hi"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestChatProvider_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	_, err := newTestChat(server.URL).Complete(context.Background(), domain.Prompt{User: "hi"})
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestChatProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "auth_error"},
		})
	}))
	defer server.Close()

	_, err := newTestChat(server.URL).Complete(context.Background(), domain.Prompt{User: "hi"})
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"model not found"}`)); got != "model not found" {
		t.Errorf("got %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestChatProvider_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	p := NewChatProvider(&ChatConfig{
		Config: Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-test", Timeout: 100 * time.Millisecond},
	})

	start := time.Now()
	_, err := p.Complete(context.Background(), domain.Prompt{User: "hi"})
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("request took %v, timeout not applied", elapsed)
	}
}

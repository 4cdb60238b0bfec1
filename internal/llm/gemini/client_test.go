package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"novel-backend/internal/llm"
)

const generateResponse = `{"candidates":[{"content":{"role":"model","parts":[{"text":"  節奏偏慢。  "}]},"finishReason":"STOP"}],` +
	`"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":4,"totalTokenCount":16}}`

func TestCompleteReadsCandidateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(generateResponse))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", Model: "test-model", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := client.Complete(context.Background(), llm.Request{Operation: llm.OpCritique, Prompt: "p", MaxTokens: 50})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "節奏偏慢。" || resp.Provider != "gemini" || resp.Model != "test-model" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.PromptTokens != 12 || resp.CompletionTokens != 4 {
		t.Fatalf("unexpected usage: %+v", resp)
	}
}

func TestCompleteAppliesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	start := time.Now()
	_, err = client.Complete(context.Background(), llm.Request{Prompt: "p"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not applied, call took %s", elapsed)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCompleteSendsChatCompletionRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected Content-Type %q", got)
		}
		if got := r.Header.Get("HTTP-Referer"); got != "https://sentinel-local.app" {
			t.Errorf("unexpected HTTP-Referer %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "Sentinel Local" {
			t.Errorf("unexpected X-Title %q", got)
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if body.Model != "test/model" {
			t.Errorf("unexpected model %q", body.Model)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" || body.Messages[0].Content != "hello there" {
			t.Errorf("unexpected messages %+v", body.Messages)
		}
		if body.Temperature != 0.7 {
			t.Errorf("expected temperature 0.7, got %v", body.Temperature)
		}
		if body.MaxTokens != 500 {
			t.Errorf("expected max_tokens 500, got %d", body.MaxTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"general kenobi"}}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:  "secret",
		BaseURL: server.URL + "/api/v1/",
		Referer: "https://sentinel-local.app",
		Title:   "Sentinel Local",
		Timeout: time.Second,
	}, nil)

	text, err := client.Complete(context.Background(), "test/model", "hello there")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "general kenobi" {
		t.Errorf("expected passthrough text, got %q", text)
	}
}

func TestCompleteWithoutAPIKeyMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, nil)

	_, err := client.Complete(context.Background(), "m", "p")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no requests, got %d", calls.Load())
	}
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "k", BaseURL: server.URL}, nil)

	_, err := client.Complete(context.Background(), "m", "p")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", statusErr.StatusCode)
	}
}

func TestCompleteMissingContentIsEmptySuccess(t *testing.T) {
	bodies := map[string]string{
		"no message":   `{"choices":[{}]}`,
		"no content":   `{"choices":[{"message":{"role":"assistant"}}]}`,
		"null content": `{"choices":[{"message":{"content":null}}]}`,
		"empty list":   `{"choices":[]}`,
		"no choices":   `{}`,
		"null choices": `{"choices":null}`,
		"null body":    `null`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			client := NewClient(ClientConfig{APIKey: "k", BaseURL: server.URL}, nil)
			text, err := client.Complete(context.Background(), "m", "p")
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if text != "" {
				t.Errorf("expected empty text, got %q", text)
			}
		})
	}
}

func TestCompleteUndecodableBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "k", BaseURL: server.URL}, nil)
	if _, err := client.Complete(context.Background(), "m", "p"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCompleteTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond}, nil)

	start := time.Now()
	if _, err := client.Complete(context.Background(), "m", "p"); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not honored, took %s", elapsed)
	}
}

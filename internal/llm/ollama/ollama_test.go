package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tahcohcat/voicechat-web/config"
	"github.com/tahcohcat/voicechat-web/internal/llm/chat"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&config.OllamaConfig{Host: srv.URL, Model: "llama3.2", Timeout: 5})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestChatCompletionUsesConfiguredModel(t *testing.T) {
	var got struct {
		Model    string         `json:"model"`
		Messages []chat.Message `json:"messages"`
		Stream   bool           `json:"stream"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Hi there"},"done":true}` + "\n"))
	})

	resp, err := c.ChatCompletion(context.Background(), chat.Request{
		Model:    "llama-3.1-8b-instant",
		Messages: []chat.Message{{Role: chat.RoleUser, Content: "Hello"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}

	if got.Model != "llama3.2" || got.Stream {
		t.Fatalf("unexpected request model=%q stream=%v", got.Model, got.Stream)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "Hello" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "Hi there" || resp.Choices[0].FinishReason != "stop" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestChatCompletionEmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true}` + "\n"))
	})

	resp, err := c.ChatCompletion(context.Background(), chat.Request{Messages: []chat.Message{{Role: "user", Content: "Hello"}}})
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if len(resp.Choices) != 0 {
		t.Fatalf("expected no choices, got %+v", resp.Choices)
	}
}

func TestChatCompletionStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"llama3.2\" not found"}` + "\n"))
	})

	_, err := c.ChatCompletion(context.Background(), chat.Request{Messages: []chat.Message{{Role: "user", Content: "Hello"}}})

	var statusErr *chat.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestIsModelAvailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"mistral"},{"name":"llama3.2"}]}`))
	})
	if err := c.IsModelAvailable(context.Background()); err != nil {
		t.Fatalf("IsModelAvailable: %v", err)
	}

	c.config.Model = "phi3"
	if err := c.IsModelAvailable(context.Background()); err == nil {
		t.Fatal("expected missing model error")
	}
}

package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPageRenders(t *testing.T) {
	page, err := NewPage("Voice Chat")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>Voice Chat</title>", `id="voice-select"`, `id="player"`, `data-ws-path="/ws"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRetryOfferedOnEveryReply(t *testing.T) {
	page, err := NewPage("Voice Chat")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `if (item.type === "llm") {`) || !strings.Contains(body, `send({ type: "retry", id: item.id })`) {
		t.Fatal("expected a Retry button on every llm reply")
	}
	if strings.Contains(body, "playback_error") {
		t.Fatal("Retry must not depend on the playback error flag")
	}
}

package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nopWriter{}) })
	return &buf
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"WARN":    LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)

	l := New()
	l.SetLevel(LogLevelWarn)
	l.Info("hidden")
	l.Debug("hidden too")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info/debug to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("expected warn line, got %q", out)
	}
}

func TestWithErrorAndFields(t *testing.T) {
	buf := captureOutput(t)

	base := New()
	base.SetLevel(LogLevelDebug)
	base.WithField("session", "abc").WithError(errors.New("boom")).Error("request failed")
	base.Info("plain")

	out := buf.String()
	if !strings.Contains(out, "request failed session=abc: boom") {
		t.Fatalf("unexpected error line: %q", out)
	}
	if strings.Contains(out, "plain session=") {
		t.Fatalf("fields leaked into parent logger: %q", out)
	}
}

func TestNewPicksUpGlobalLevel(t *testing.T) {
	buf := captureOutput(t)
	SetGlobalLevel(LogLevelWarn)
	t.Cleanup(func() { SetGlobalLevel(LogLevelInfo) })

	l := New()
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("logger created after SetGlobalLevel ignored it: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("expected warn line, got %q", out)
	}
}

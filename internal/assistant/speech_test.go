package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type transcripts struct {
	mu   sync.Mutex
	seen []string
}

func (tr *transcripts) add(s string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.seen = append(tr.seen, s)
}

func (tr *transcripts) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.seen...)
}

func newTestSpeech(engine SpeechEngine) (*Speech, *status, *noticeRecorder, *transcripts) {
	st := &status{}
	notices := &noticeRecorder{}
	tr := &transcripts{}
	support := Unavailable()
	if engine != nil {
		support = Available(engine)
	}
	return newSpeech(support, st, notices, tr.add), st, notices, tr
}

func TestStartWithoutCapability(t *testing.T) {
	s, st, notices, _ := newTestSpeech(nil)

	if err := s.Start(context.Background()); !errors.Is(err, ErrCapabilityMissing) {
		t.Fatalf("expected ErrCapabilityMissing, got %v", err)
	}
	if st.get().Listening {
		t.Fatal("listening without an engine")
	}
	if !notices.has(LevelError) {
		t.Fatal("expected an error notice")
	}
	if s.Supported() {
		t.Fatal("expected speech to be unsupported")
	}

	s.Stop()
}

func TestStartTwiceIsNoop(t *testing.T) {
	engine := &fakeEngine{}
	s, st, _, _ := newTestSpeech(engine)
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if starts, _ := engine.counts(); starts != 1 {
		t.Fatalf("expected one engine start, got %d", starts)
	}
	if !st.get().Listening {
		t.Fatal("expected listening")
	}
}

func TestEngineStartFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("not-allowed")}
	s, st, notices, _ := newTestSpeech(engine)

	if err := s.Start(context.Background()); !errors.Is(err, ErrSpeechEngine) {
		t.Fatalf("expected ErrSpeechEngine, got %v", err)
	}
	if st.get().Listening {
		t.Fatal("listening after failed start")
	}
	if !notices.has(LevelError) {
		t.Fatal("expected an error notice")
	}
}

func TestRecognitionResultDeliversTranscript(t *testing.T) {
	engine := &fakeEngine{}
	s, st, _, tr := newTestSpeech(engine)
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	engine.deliver(Recognition{Segments: []string{"Hello", " world"}})

	waitFor(t, func() bool { return len(tr.list()) == 1 })
	if got := tr.list()[0]; got != "Hello world" {
		t.Fatalf("expected joined transcript, got %q", got)
	}
	if st.get().Listening {
		t.Fatal("still listening after a result")
	}
}

func TestRecognitionErrorReturnsToIdle(t *testing.T) {
	engine := &fakeEngine{}
	s, st, notices, tr := newTestSpeech(engine)
	defer s.Close()

	_ = s.Start(context.Background())
	engine.deliver(Recognition{Err: errors.New("no-speech")})

	waitFor(t, func() bool { return !st.get().Listening })
	waitFor(t, func() bool { return notices.has(LevelError) })
	if n := len(tr.list()); n != 0 {
		t.Fatalf("unexpected transcripts %d", n)
	}
}

func TestEngineEndReturnsToIdle(t *testing.T) {
	engine := &fakeEngine{}
	s, st, _, _ := newTestSpeech(engine)
	defer s.Close()

	_ = s.Start(context.Background())
	engine.end()

	waitFor(t, func() bool { return !st.get().Listening })

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if starts, _ := engine.counts(); starts != 2 {
		t.Fatalf("expected a second engine start, got %d", starts)
	}
}

func TestStopListening(t *testing.T) {
	engine := &fakeEngine{}
	s, st, notices, tr := newTestSpeech(engine)

	_ = s.Start(context.Background())
	s.Stop()
	s.Stop()

	if _, stops := engine.counts(); stops != 1 {
		t.Fatalf("expected one engine stop, got %d", stops)
	}
	if st.get().Listening {
		t.Fatal("still listening after stop")
	}
	if !notices.has(LevelSuccess) {
		t.Fatal("expected a success notice")
	}

	// a late result from the stopped session is ignored
	engine.deliver(Recognition{Segments: []string{"late"}})
	if n := len(tr.list()); n != 0 {
		t.Fatalf("late result delivered: %v", tr.list())
	}
}

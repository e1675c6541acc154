package assistant

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tahcohcat/voicechat-web/internal/llm/chat"
	"github.com/tahcohcat/voicechat-web/internal/tts"
)

type fakeChat struct {
	mu    sync.Mutex
	calls []chat.Request
	resp  *chat.Response
	err   error
}

func (f *fakeChat) ChatCompletion(_ context.Context, req chat.Request) (*chat.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

func (f *fakeChat) requests() []chat.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Request(nil), f.calls...)
}

func replyWith(content string) *chat.Response {
	return &chat.Response{Choices: []chat.Choice{{Message: chat.Message{Role: chat.RoleAssistant, Content: content}}}}
}

type synthCall struct {
	text, voiceID string
}

type fakeSynth struct {
	mu    sync.Mutex
	calls []synthCall
	audio []byte
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text, voiceID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, synthCall{text, voiceID})
	return f.audio, f.err
}

func (f *fakeSynth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeVoices struct {
	voices []tts.Voice
	err    error
}

func (f *fakeVoices) ListVoices(context.Context) ([]tts.Voice, error) {
	return f.voices, f.err
}

type fakeSource struct {
	mu       sync.Mutex
	url      string
	released bool
}

func (s *fakeSource) URL() string { return s.url }

func (s *fakeSource) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
}

func (s *fakeSource) isReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

type fakePlayer struct {
	mu       sync.Mutex
	acquired []*fakeSource
	loaded   []Source
	plays    int
	pauses   int
	rewinds  int
	detaches int
	playErr  error
}

func (p *fakePlayer) Acquire(audio []byte) (Source, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	src := &fakeSource{url: fmt.Sprintf("/api/v1/audio/%d", len(p.acquired))}
	p.acquired = append(p.acquired, src)
	return src, nil
}

func (p *fakePlayer) Load(src Source) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = append(p.loaded, src)
	return nil
}

func (p *fakePlayer) Play(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	return p.playErr
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
}

func (p *fakePlayer) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rewinds++
}

func (p *fakePlayer) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detaches++
}

func (p *fakePlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

type fakeEngine struct {
	mu     sync.Mutex
	starts int
	stops  int
	ch     chan Recognition
	err    error
}

func (e *fakeEngine) Start(context.Context) (<-chan Recognition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.starts++
	e.ch = make(chan Recognition, 1)
	return e.ch, nil
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
}

func (e *fakeEngine) deliver(r Recognition) {
	e.mu.Lock()
	ch := e.ch
	e.mu.Unlock()
	ch <- r
}

func (e *fakeEngine) end() {
	e.mu.Lock()
	ch := e.ch
	e.mu.Unlock()
	close(ch)
}

func (e *fakeEngine) counts() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts, e.stops
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) has(level Level) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notices {
		if n.Level == level {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

package websocket

import (
	"context"
	"errors"
	"sync"

	"github.com/tahcohcat/voicechat-web/internal/assistant"
)

// socketSpeech is the browser's speech recognition engine seen from the
// server. Each capture gets a sequence number so late results from an
// abandoned capture are dropped.
type socketSpeech struct {
	send func(outbound)

	mu      sync.Mutex
	seq     uint64
	current chan assistant.Recognition
}

func newSocketSpeech(send func(outbound)) *socketSpeech {
	return &socketSpeech{send: send}
}

func (e *socketSpeech) Start(context.Context) (<-chan assistant.Recognition, error) {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	results := make(chan assistant.Recognition, 1)
	e.current = results
	e.mu.Unlock()

	e.send(outbound{Type: frameRecognitionStart, Seq: seq})
	return results, nil
}

func (e *socketSpeech) Stop() {
	e.mu.Lock()
	e.current = nil
	e.mu.Unlock()

	e.send(outbound{Type: frameRecognitionStop})
}

func (e *socketSpeech) result(seq uint64, segments []string) {
	e.finish(seq, func(ch chan assistant.Recognition) {
		ch <- assistant.Recognition{Segments: segments}
	})
}

func (e *socketSpeech) fail(seq uint64, msg string) {
	if msg == "" {
		msg = "unknown error"
	}
	e.finish(seq, func(ch chan assistant.Recognition) {
		ch <- assistant.Recognition{Err: errors.New(msg)}
	})
}

func (e *socketSpeech) end(seq uint64) {
	e.finish(seq, func(ch chan assistant.Recognition) {
		close(ch)
	})
}

func (e *socketSpeech) finish(seq uint64, deliver func(chan assistant.Recognition)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || seq != e.seq {
		return
	}
	deliver(e.current)
	e.current = nil
}

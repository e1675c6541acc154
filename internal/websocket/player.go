package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tahcohcat/voicechat-web/internal/assistant"
	"github.com/tahcohcat/voicechat-web/internal/audio"
)

type playbackResult struct {
	blocked bool
	err     string
}

// socketPlayer drives the browser's audio element. Clips are served from the
// registry; the element is told which URL to load and reports back whether
// play() was allowed.
type socketPlayer struct {
	send     func(outbound)
	registry *audio.Registry
	timeout  time.Duration

	mu      sync.Mutex
	seq     uint64
	pending map[uint64]chan playbackResult
}

func newSocketPlayer(send func(outbound), registry *audio.Registry, timeout time.Duration) *socketPlayer {
	return &socketPlayer{
		send:     send,
		registry: registry,
		timeout:  timeout,
		pending:  make(map[uint64]chan playbackResult),
	}
}

func (p *socketPlayer) Acquire(data []byte) (assistant.Source, error) {
	src, err := p.registry.Create(data)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func (p *socketPlayer) Load(src assistant.Source) error {
	p.send(outbound{Type: frameAudioLoad, URL: src.URL()})
	return nil
}

// Play asks the element to start and waits for its answer. No answer within
// the timeout is treated like a refusal so the user can start it by hand.
func (p *socketPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	ack := make(chan playbackResult, 1)
	p.pending[seq] = ack
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pending, seq)
		p.mu.Unlock()
	}()

	p.send(outbound{Type: frameAudioPlay, Seq: seq})

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case res := <-ack:
		switch {
		case res.blocked:
			return assistant.ErrAutoplayBlocked
		case res.err != "":
			return errors.New(res.err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: no response from audio element after %s", assistant.ErrAutoplayBlocked, p.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *socketPlayer) resolve(seq uint64, res playbackResult) {
	p.mu.Lock()
	ack, ok := p.pending[seq]
	p.mu.Unlock()

	if ok {
		select {
		case ack <- res:
		default:
		}
	}
}

func (p *socketPlayer) Pause() {
	p.send(outbound{Type: frameAudioPause})
}

func (p *socketPlayer) Rewind() {
	p.send(outbound{Type: frameAudioRewind})
}

func (p *socketPlayer) Detach() {
	p.send(outbound{Type: frameAudioReset})
}

package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tahcohcat/voicechat-web/internal/logger"
)

// Recognition is the single terminal result of a capture session.
type Recognition struct {
	Segments []string
	Err      error
}

// SpeechEngine is the browser's speech-to-text capability. Start begins a
// capture and returns a channel that yields at most one Recognition; the
// channel is closed without a value when the engine ends on its own.
type SpeechEngine interface {
	Start(ctx context.Context) (<-chan Recognition, error)
	Stop()
}

// SpeechSupport is the result of a capability query: either an engine or nothing.
type SpeechSupport struct {
	engine SpeechEngine
}

func Available(engine SpeechEngine) SpeechSupport {
	return SpeechSupport{engine: engine}
}

func Unavailable() SpeechSupport {
	return SpeechSupport{}
}

func (s SpeechSupport) Engine() (SpeechEngine, bool) {
	return s.engine, s.engine != nil
}

// Speech is the capture state machine: Idle -> Listening -> Idle.
type Speech struct {
	support      SpeechSupport
	status       *status
	notifier     Notifier
	onTranscript func(string)
	log          *logger.Log

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func newSpeech(support SpeechSupport, st *status, notifier Notifier, onTranscript func(string)) *Speech {
	return &Speech{
		support:      support,
		status:       st,
		notifier:     notifier,
		onTranscript: onTranscript,
		log:          logger.New().WithField("component", "speech"),
	}
}

// Start begins listening. It is a no-op while already listening.
func (s *Speech) Start(ctx context.Context) error {
	engine, ok := s.support.Engine()
	if !ok {
		s.log.Warn("Speech recognition not supported")
		s.notifier.Notify(Notice{Level: LevelError, Message: "Speech recognition not supported in this browser."})
		return ErrCapabilityMissing
	}

	s.mu.Lock()
	if s.status.get().Listening {
		s.mu.Unlock()
		return nil
	}

	listenCtx, cancel := context.WithCancel(ctx)
	results, err := engine.Start(listenCtx)
	if err != nil {
		s.mu.Unlock()
		cancel()
		err = fmt.Errorf("%w: %w", ErrSpeechEngine, err)
		s.log.WithError(err).Error("Failed to start speech recognition")
		s.notifier.Notify(Notice{Level: LevelError, Message: err.Error()})
		return err
	}

	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.status.update(func(f *Flags) { f.Listening = true })
	s.mu.Unlock()

	s.notifier.Notify(Notice{Level: LevelSuccess, Message: "Listening..."})
	go s.await(listenCtx, gen, engine, results)
	return nil
}

func (s *Speech) await(ctx context.Context, gen uint64, engine SpeechEngine, results <-chan Recognition) {
	select {
	case rec, ok := <-results:
		if !s.finish(gen) {
			return
		}
		if !ok {
			return
		}
		if rec.Err != nil {
			s.log.WithError(rec.Err).Error("Speech recognition error")
			s.notifier.Notify(Notice{Level: LevelError, Message: fmt.Sprintf("%v: %v", ErrSpeechEngine, rec.Err)})
			return
		}
		transcript := strings.Join(rec.Segments, "")
		if strings.TrimSpace(transcript) != "" && s.onTranscript != nil {
			s.onTranscript(transcript)
		}

	case <-ctx.Done():
		// torn down from outside, Stop has already bumped gen
		if s.finish(gen) {
			engine.Stop()
		}
	}
}

// finish returns the machine to Idle if gen is still the live session.
func (s *Speech) finish(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || !s.status.get().Listening {
		return false
	}
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.status.update(func(f *Flags) { f.Listening = false })
	return true
}

// Stop ends the current capture. It is a no-op while idle.
func (s *Speech) Stop() {
	if !s.halt() {
		return
	}
	s.notifier.Notify(Notice{Level: LevelSuccess, Message: "Stopped listening."})
}

func (s *Speech) halt() bool {
	engine, ok := s.support.Engine()
	if !ok {
		return false
	}

	s.mu.Lock()
	if !s.status.get().Listening {
		s.mu.Unlock()
		return false
	}
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.status.update(func(f *Flags) { f.Listening = false })
	s.mu.Unlock()

	engine.Stop()
	return true
}

// Close stops any pending capture without notifying.
func (s *Speech) Close() {
	s.halt()
}

func (s *Speech) Supported() bool {
	_, ok := s.support.Engine()
	return ok
}

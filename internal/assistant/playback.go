package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tahcohcat/voicechat-web/internal/conversation"
	"github.com/tahcohcat/voicechat-web/internal/logger"
)

// Synthesizer is the text-to-speech collaborator.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Source is a playable handle on synthesized audio. Release frees it; a
// released source must not be loaded again.
type Source interface {
	URL() string
	Release()
}

// Player drives the audio element.
type Player interface {
	// Acquire turns audio bytes into a loadable source.
	Acquire(audio []byte) (Source, error)
	Load(src Source) error
	// Play starts playback; an autoplay refusal is reported as ErrAutoplayBlocked.
	Play(ctx context.Context) error
	Pause()
	Rewind()
	// Detach clears the element's source.
	Detach()
}

// Playback synthesizes replies and hands them to the Player. The playing
// flag covers synthesis and dispatch, not the audio element finishing.
type Playback struct {
	synth    Synthesizer
	player   Player
	status   *status
	notifier Notifier
	log      *logger.Log

	mu      sync.Mutex
	current Source
}

// detachedPlayer stands in when no audio element is attached.
type detachedPlayer struct{}

var errNoAudioElement = errors.New("no audio element attached")

func (detachedPlayer) Acquire([]byte) (Source, error) { return nil, errNoAudioElement }
func (detachedPlayer) Load(Source) error              { return errNoAudioElement }
func (detachedPlayer) Play(context.Context) error     { return errNoAudioElement }
func (detachedPlayer) Pause()                         {}
func (detachedPlayer) Rewind()                        {}
func (detachedPlayer) Detach()                        {}

func newPlayback(synth Synthesizer, player Player, st *status, notifier Notifier) *Playback {
	if player == nil {
		player = detachedPlayer{}
	}
	return &Playback{
		synth:    synth,
		player:   player,
		status:   st,
		notifier: notifier,
		log:      logger.New().WithField("component", "playback"),
	}
}

// Play speaks text with voiceID and surfaces any failure.
func (p *Playback) Play(ctx context.Context, text, voiceID string) error {
	err := p.play(ctx, text, voiceID)
	p.report(err)
	return err
}

func (p *Playback) play(ctx context.Context, text, voiceID string) error {
	if text == "" || voiceID == "" {
		return ErrConfiguration
	}
	if p.synth == nil {
		return fmt.Errorf("%w: no synthesizer", ErrConfiguration)
	}

	p.status.update(func(f *Flags) { f.Playing = true })
	defer p.status.update(func(f *Flags) { f.Playing = false })

	p.log.Debug(fmt.Sprintf("Synthesizing %d characters with voice %s", len(text), voiceID))

	audio, err := p.synth.Synthesize(ctx, text, voiceID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesisRequest, err)
	}
	if len(audio) == 0 {
		return fmt.Errorf("%w: received empty audio", ErrSynthesisRequest)
	}

	src, err := p.player.Acquire(audio)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesisRequest, err)
	}
	p.swap(src)

	if err := p.player.Load(src); err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesisRequest, err)
	}

	if err := p.player.Play(ctx); err != nil {
		if errors.Is(err, ErrAutoplayBlocked) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrAutoplayBlocked, err)
	}

	p.log.Debug("Audio playback started")
	return nil
}

// swap makes src current and releases whatever it replaced.
func (p *Playback) swap(src Source) {
	p.mu.Lock()
	prev := p.current
	p.current = src
	p.mu.Unlock()

	if prev != nil {
		prev.Release()
	}
}

func (p *Playback) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrAutoplayBlocked):
		p.log.WithError(err).Warn("Audio playback failed")
		p.notifier.Notify(Notice{Level: LevelWarning, Message: "Autoplay was blocked. Please click the play button to listen."})
	case errors.Is(err, ErrConfiguration):
		p.log.Error("Text or voice_id not provided for text-to-speech")
		p.notifier.Notify(Notice{Level: LevelError, Message: "Unable to play voice response. Missing text or voice model."})
	default:
		p.log.WithError(err).Error("Failed to play voice response")
		p.notifier.Notify(Notice{Level: LevelError, Message: "Failed to play voice response: " + err.Error()})
	}
}

// Retry replays a stored interaction. Success clears the playback error flag.
func (p *Playback) Retry(ctx context.Context, interaction conversation.Interaction, voiceID string) error {
	err := p.play(ctx, interaction.Content, voiceID)
	if err != nil && !errors.Is(err, ErrAutoplayBlocked) {
		p.log.WithError(err).Error("Playback retry failed")
		p.notifier.Notify(Notice{Level: LevelError, Message: "Retry failed: " + err.Error()})
		return fmt.Errorf("%w: %w", ErrRetry, err)
	}
	if err != nil {
		p.report(err)
	}

	p.status.update(func(f *Flags) { f.PlaybackError = false })
	p.notifier.Notify(Notice{Level: LevelSuccess, Message: "Playback successful on retry."})
	return nil
}

// Stop pauses and rewinds the element. Safe to call repeatedly.
func (p *Playback) Stop() {
	p.player.Pause()
	p.player.Rewind()
	p.status.update(func(f *Flags) { f.Playing = false })
	p.notifier.Notify(Notice{Level: LevelInfo, Message: "Playback stopped."})
}

// Close pauses, detaches the element and releases the current source.
func (p *Playback) Close() {
	p.player.Pause()
	p.player.Detach()

	p.mu.Lock()
	cur := p.current
	p.current = nil
	p.mu.Unlock()

	if cur != nil {
		cur.Release()
	}
	p.status.update(func(f *Flags) { f.Playing = false })
}

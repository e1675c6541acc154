package tts

import (
	"context"
	"errors"
	"fmt"
)

// Voice is the projection of a provider voice exposed to the browser.
type Voice struct {
	VoiceID    string `json:"voice_id"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url"`
}

// Synthesizer converts text into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
	Name() string
}

// VoiceLister lists the voices a provider can synthesize with.
type VoiceLister interface {
	ListVoices(ctx context.Context) ([]Voice, error)
}

// Provider is a full TTS backend.
type Provider interface {
	Synthesizer
	VoiceLister
}

var (
	ErrEmptyAudio = errors.New("empty audio content received")
	ErrDisabled   = errors.New("text-to-speech is disabled")
)

// StatusError is returned when the provider answered with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tts provider returned status %d: %s", e.StatusCode, e.Body)
}

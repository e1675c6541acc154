package tts

import (
	"context"

	"github.com/tahcohcat/voicechat-web/internal/logger"
)

// DisabledTts is used when tts.enabled is false. Every call fails with
// ErrDisabled so the UI reports it instead of playing silence.
type DisabledTts struct {
}

func NewDisabledTts() *DisabledTts {
	return &DisabledTts{}
}

func (d *DisabledTts) Synthesize(_ context.Context, text, voiceID string) ([]byte, error) {
	logger.New().Debug("no tts configured. rejecting synthesis request")
	return nil, ErrDisabled
}

func (d *DisabledTts) ListVoices(_ context.Context) ([]Voice, error) {
	return nil, ErrDisabled
}

func (d *DisabledTts) Name() string {
	return "disabled"
}

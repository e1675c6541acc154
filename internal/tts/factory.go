package tts

import (
	"fmt"

	"github.com/tahcohcat/voicechat-web/config"
)

const (
	TypeElevenLabs = "elevenlabs"
	TypeGoogle     = "google"
)

// NewProvider creates the configured TTS backend
func NewProvider(cfg *config.Config) (Provider, error) {
	if !cfg.Tts.Enabled {
		return NewDisabledTts(), nil
	}

	switch cfg.Tts.Type {
	case TypeElevenLabs:
		return NewElevenLabs(&cfg.ElevenLabs)
	case TypeGoogle:
		return NewWebGoogleTTSClient(&cfg.Google)
	default:
		return nil, fmt.Errorf("unsupported TTS type: %s", cfg.Tts.Type)
	}
}

package assistant

import (
	"sync"

	"github.com/tahcohcat/voicechat-web/internal/conversation"
	"github.com/tahcohcat/voicechat-web/internal/tts"
)

// Flags are the widget's status indicators.
type Flags struct {
	Loading       bool `json:"loading"`
	Playing       bool `json:"playing"`
	Listening     bool `json:"listening"`
	PlaybackError bool `json:"playback_error"`
}

// State is everything the view renders.
type State struct {
	Flags
	Input           string                     `json:"input"`
	SpeechSupported bool                       `json:"speech_supported"`
	Voices          []tts.Voice                `json:"voices"`
	SelectedVoice   string                     `json:"selected_voice"`
	Interactions    []conversation.Interaction `json:"interactions"`
}

type status struct {
	mu       sync.Mutex
	flags    Flags
	onChange func()
}

// update applies fn and fires onChange when any flag actually changed.
func (s *status) update(fn func(*Flags)) {
	s.mu.Lock()
	before := s.flags
	fn(&s.flags)
	changed := before != s.flags
	cb := s.onChange
	s.mu.Unlock()

	if changed && cb != nil {
		cb()
	}
}

func (s *status) get() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

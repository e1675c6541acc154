package assistant

import (
	"sync"

	"github.com/tahcohcat/voicechat-web/internal/tts"
)

// voiceSelection holds the voices fetched at startup and the chosen voice id.
type voiceSelection struct {
	mu       sync.RWMutex
	voices   []tts.Voice
	selected string
}

// set stores voices and selects the first preferred voice that resolves,
// otherwise the first voice.
func (v *voiceSelection) set(voices []tts.Voice, preferred []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.voices = append([]tts.Voice(nil), voices...)
	v.selected = ""
	for _, p := range preferred {
		if voice, ok := tts.ResolveVoice(v.voices, p); ok {
			v.selected = voice.VoiceID
			return
		}
	}
	if len(v.voices) > 0 {
		v.selected = v.voices[0].VoiceID
	}
}

func (v *voiceSelection) choose(query string) (tts.Voice, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	voice, ok := tts.ResolveVoice(v.voices, query)
	if ok {
		v.selected = voice.VoiceID
	}
	return voice, ok
}

func (v *voiceSelection) selectedID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selected
}

func (v *voiceSelection) list() []tts.Voice {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]tts.Voice(nil), v.voices...)
}

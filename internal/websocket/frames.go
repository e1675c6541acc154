package websocket

import (
	"github.com/bytedance/sonic"

	"github.com/tahcohcat/voicechat-web/internal/assistant"
)

// Frames sent by the browser.
const (
	frameInput          = "input"
	frameSubmit         = "submit"
	frameListen         = "listen"
	frameStopListening  = "stop_listening"
	framePlay           = "play"
	frameRetry          = "retry"
	frameStopPlayback   = "stop_playback"
	frameSelectVoice    = "select_voice"
	frameSpeechResult   = "speech_result"
	frameSpeechError    = "speech_error"
	frameSpeechEnd      = "speech_end"
	framePlaybackResult = "playback_result"
)

// Frames sent by the server.
const (
	frameState            = "state"
	frameNotice           = "notice"
	frameRecognitionStart = "recognition_start"
	frameRecognitionStop  = "recognition_stop"
	frameAudioLoad        = "audio_load"
	frameAudioPlay        = "audio_play"
	frameAudioPause       = "audio_pause"
	frameAudioRewind      = "audio_rewind"
	frameAudioReset       = "audio_reset"
)

type inbound struct {
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	ID       string   `json:"id,omitempty"`
	VoiceID  string   `json:"voice_id,omitempty"`
	Seq      uint64   `json:"seq,omitempty"`
	Segments []string `json:"segments,omitempty"`
	Error    string   `json:"error,omitempty"`
	Blocked  bool     `json:"blocked,omitempty"`
}

type outbound struct {
	Type   string            `json:"type"`
	Seq    uint64            `json:"seq,omitempty"`
	URL    string            `json:"url,omitempty"`
	State  *assistant.State  `json:"state,omitempty"`
	Notice *assistant.Notice `json:"notice,omitempty"`
}

func decodeFrame(data []byte) (inbound, error) {
	var in inbound
	err := sonic.Unmarshal(data, &in)
	return in, err
}

func encodeFrame(out outbound) ([]byte, error) {
	return sonic.Marshal(out)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/voicechat-web/internal/tts"
)

type TTSRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

// POST /api/v1/text-to-speech - Generate and stream TTS audio
func (h *Handler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Text == "" || req.VoiceID == "" {
		writeError(w, http.StatusBadRequest, "Text and voice_id are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	audioData, err := h.tts.Synthesize(ctx, req.Text, req.VoiceID)
	if err != nil {
		var statusErr *tts.StatusError
		switch {
		case errors.As(err, &statusErr):
			h.log.WithError(err).Warn("Speech provider rejected the request")
			writeError(w, statusErr.StatusCode, "Failed to synthesize speech.")
		case errors.Is(err, tts.ErrDisabled):
			writeError(w, http.StatusServiceUnavailable, "Text-to-speech is disabled")
		case errors.Is(err, tts.ErrEmptyAudio):
			h.log.Warn("Speech provider returned no audio")
			writeError(w, http.StatusBadGateway, "Empty audio received")
		default:
			h.log.WithError(err).Error("Error synthesizing speech")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	writeAudio(w, audioData)
}

// GET /api/v1/audio/{id} - Serve a live synthesized clip to the audio element
func (h *Handler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	clip, ok := h.audio.Get(id)
	if !ok {
		http.Error(w, "Audio not found", http.StatusNotFound)
		return
	}

	writeAudio(w, clip)
}

func writeAudio(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

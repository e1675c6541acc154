// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/voicechat-web/internal/audio"
	"github.com/tahcohcat/voicechat-web/internal/llm/chat"
	"github.com/tahcohcat/voicechat-web/internal/logger"
	"github.com/tahcohcat/voicechat-web/internal/tts"
)

// ChatClient is the chat-completion provider behind the chat route.
type ChatClient interface {
	ChatCompletion(ctx context.Context, req chat.Request) (*chat.Response, error)
}

// Handler serves the JSON API. Provider credentials stay inside the
// providers and are never written to a response.
type Handler struct {
	chat         ChatClient
	defaultModel string
	tts          tts.Provider
	audio        *audio.Registry
	prefs        *VoicePreferences
	log          *logger.Log
}

func NewHandler(chatClient ChatClient, defaultModel string, provider tts.Provider, registry *audio.Registry, prefs *VoicePreferences) *Handler {
	return &Handler{
		chat:         chatClient,
		defaultModel: defaultModel,
		tts:          provider,
		audio:        registry,
		prefs:        prefs,
		log:          logger.New().WithField("component", "api"),
	}
}

// GET /api/v1/voices - List the voices the TTS provider offers
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	voices, err := h.tts.ListVoices(ctx)
	if err != nil {
		var statusErr *tts.StatusError
		if errors.As(err, &statusErr) {
			h.log.WithError(err).Warn("Voice provider rejected the request")
			writeError(w, statusErr.StatusCode, "Failed to fetch voices.")
			return
		}
		h.log.WithError(err).Error("Error fetching voices")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if voices == nil {
		voices = []tts.Voice{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"voices": voices,
	})
}

// POST /api/v1/chat/completions - Forward a conversation to the chat provider
func (h *Handler) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Messages are required")
		return
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	resp, err := h.chat.ChatCompletion(ctx, req)
	if err != nil {
		var statusErr *chat.StatusError
		if errors.As(err, &statusErr) {
			h.log.WithError(err).Warn("Chat provider rejected the request")
			writeError(w, statusErr.StatusCode, "Failed to complete chat.")
			return
		}
		h.log.WithError(err).Error("Error completing chat")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if resp.Choices == nil {
		resp.Choices = []chat.Choice{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"tts":    h.tts.Name(),
		"clips":  h.audio.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// RegisterRoutes mounts the API under r, which is expected to be the
// /api/v1 subrouter.
func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/voices", h.ListVoices).Methods("GET")
	r.HandleFunc("/chat/completions", h.ChatCompletions).Methods("POST")
	r.HandleFunc("/text-to-speech", h.TextToSpeech).Methods("POST")
	r.HandleFunc("/audio/{id}", h.ServeAudio).Methods("GET")
	r.HandleFunc("/preferences/voice", h.RememberVoice).Methods("POST")
}

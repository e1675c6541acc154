package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/tahcohcat/voicechat-web/config"
)

const voiceKey = "voice_id"

// VoicePreferences remembers the browser's chosen voice in a signed cookie.
// It is a UI preference only; conversations are never stored.
type VoicePreferences struct {
	store sessions.Store
	name  string
}

func NewVoicePreferences(cfg *config.SessionConfig) *VoicePreferences {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &VoicePreferences{store: store, name: cfg.CookieName}
}

// Voice returns the remembered voice id, or "" when there is none or the
// cookie does not verify.
func (p *VoicePreferences) Voice(r *http.Request) string {
	session, err := p.store.Get(r, p.name)
	if err != nil {
		return ""
	}
	voiceID, _ := session.Values[voiceKey].(string)
	return voiceID
}

func (p *VoicePreferences) Remember(w http.ResponseWriter, r *http.Request, voiceID string) error {
	// a stale or tampered cookie still yields a fresh session to overwrite
	session, _ := p.store.Get(r, p.name)
	session.Values[voiceKey] = voiceID
	return session.Save(r, w)
}

// POST /api/v1/preferences/voice - Remember the selected voice
func (h *Handler) RememberVoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.VoiceID == "" {
		writeError(w, http.StatusBadRequest, "voice_id is required")
		return
	}

	if err := h.prefs.Remember(w, r, req.VoiceID); err != nil {
		h.log.WithError(err).Error("Failed to save voice preference")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{voiceKey: req.VoiceID})
}

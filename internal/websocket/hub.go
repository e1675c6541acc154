package websocket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tahcohcat/voicechat-web/internal/assistant"
	"github.com/tahcohcat/voicechat-web/internal/audio"
	"github.com/tahcohcat/voicechat-web/internal/logger"
	"github.com/tahcohcat/voicechat-web/internal/tts"
)

// VoicePreferences looks up the voice a browser chose on an earlier visit.
type VoicePreferences interface {
	Voice(r *http.Request) string
}

// Deps are the collaborators every session's controller is built from.
type Deps struct {
	Chat           assistant.ChatClient
	TTS            tts.Provider
	Audio          *audio.Registry
	Preferences    VoicePreferences
	Model          string
	PreferredVoice string
	// How long the audio element may take to confirm playback.
	PlaybackAckTimeout time.Duration
	AllowedOrigins     []string
}

// Hub tracks live sessions and tears them all down on shutdown.
type Hub struct {
	deps     Deps
	upgrader websocket.Upgrader
	log      *logger.Log

	sessions   map[*Session]bool
	register   chan *Session
	unregister chan *Session
	done       chan struct{}
	active     atomic.Int64
}

func NewHub(deps Deps) *Hub {
	if deps.PlaybackAckTimeout <= 0 {
		deps.PlaybackAckTimeout = 5 * time.Second
	}

	h := &Hub{
		deps:       deps,
		log:        logger.New().WithField("component", "hub"),
		sessions:   make(map[*Session]bool),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// Run owns the session set until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case s := <-h.register:
			h.sessions[s] = true
			h.active.Store(int64(len(h.sessions)))
			h.log.WithField("session", s.id).Info(fmt.Sprintf("Client connected. Total: %d", len(h.sessions)))

		case s := <-h.unregister:
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				h.active.Store(int64(len(h.sessions)))
				h.log.WithField("session", s.id).Info(fmt.Sprintf("Client disconnected. Total: %d", len(h.sessions)))
			}

		case <-ctx.Done():
			for s := range h.sessions {
				s.Close()
				delete(h.sessions, s)
			}
			h.active.Store(0)
			h.log.Info("All sessions closed")
			return
		}
	}
}

// Active reports the number of connected sessions.
func (h *Hub) Active() int {
	return int(h.active.Load())
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.deps.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ServeWS upgrades the request and runs one View session on it. The browser
// passes speech=1 when it has a speech recognition engine.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Error("WebSocket upgrade error")
		return
	}

	s := newSession(h, conn, r)

	select {
	case h.register <- s:
	case <-h.done:
		s.Close()
		return
	}

	go s.writePump()
	go s.readPump()
	s.start()
}

func (h *Hub) leave(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

func RegisterRoutes(r *mux.Router, h *Hub) {
	r.HandleFunc("/ws", h.ServeWS)
}

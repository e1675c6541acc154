package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tahcohcat/voicechat-web/internal/assistant"
	"github.com/tahcohcat/voicechat-web/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Session is one browser tab: a websocket connection and the controller
// holding that tab's conversation.
type Session struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	ctrl   *assistant.Controller
	player *socketPlayer
	speech *socketSpeech

	log       *logger.Log
	closeOnce sync.Once
}

func newSession(h *Hub, conn *websocket.Conn, r *http.Request) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	id := uuid.NewString()
	s := &Session{
		id:     id,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		log:    logger.New().WithField("session", id),
	}

	s.player = newSocketPlayer(s.emit, h.deps.Audio, h.deps.PlaybackAckTimeout)

	support := assistant.Unavailable()
	if r.URL.Query().Get("speech") == "1" {
		s.speech = newSocketSpeech(s.emit)
		support = assistant.Available(s.speech)
	}

	var preferred []string
	if h.deps.Preferences != nil {
		if v := h.deps.Preferences.Voice(r); v != "" {
			preferred = append(preferred, v)
		}
	}
	if h.deps.PreferredVoice != "" {
		preferred = append(preferred, h.deps.PreferredVoice)
	}

	s.ctrl = assistant.NewController(ctx, assistant.Options{
		Chat:            h.deps.Chat,
		Synthesizer:     h.deps.TTS,
		Voices:          h.deps.TTS,
		Player:          s.player,
		Speech:          support,
		Notifier:        assistant.NotifierFunc(s.notify),
		Model:           h.deps.Model,
		PreferredVoices: preferred,
	})
	s.ctrl.Subscribe(s.pushState)

	return s
}

// start renders the initial state and loads the voice list.
func (s *Session) start() {
	s.pushState(s.ctrl.State())
	go s.ctrl.LoadVoices(s.ctx)
}

func (s *Session) pushState(st assistant.State) {
	s.emit(outbound{Type: frameState, State: &st})
}

func (s *Session) notify(n assistant.Notice) {
	s.emit(outbound{Type: frameNotice, Notice: &n})
}

// emit queues a frame for the write pump. Frames are dropped once the
// session is closed or when the browser stops reading.
func (s *Session) emit(out outbound) {
	data, err := encodeFrame(out)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode frame")
		return
	}

	select {
	case <-s.ctx.Done():
	case s.send <- data:
	default:
		s.log.WithField("frame", out.Type).Warn("Send buffer full, dropping frame")
	}
}

func (s *Session) readPump() {
	defer func() {
		s.hub.leave(s)
		s.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.WithError(err).Warn("WebSocket error")
			}
			return
		}

		in, err := decodeFrame(data)
		if err != nil {
			s.log.WithError(err).Warn("Ignoring malformed frame")
			continue
		}
		s.dispatch(in)
	}
}

// dispatch applies one intent. Chat and playback run on their own goroutines
// so the read pump keeps delivering speech and playback acknowledgements.
func (s *Session) dispatch(in inbound) {
	switch in.Type {
	case frameInput:
		s.ctrl.SetInput(in.Text)

	case frameSubmit:
		if in.Text != "" {
			s.ctrl.SetInput(in.Text)
		}
		go s.ctrl.Submit(s.ctx)

	case frameListen:
		s.ctrl.StartListening()

	case frameStopListening:
		s.ctrl.StopListening()

	case framePlay:
		go s.ctrl.Play(s.ctx, in.ID)

	case frameRetry:
		go s.ctrl.Retry(s.ctx, in.ID)

	case frameStopPlayback:
		s.ctrl.StopPlayback()

	case frameSelectVoice:
		if err := s.ctrl.SelectVoice(in.VoiceID); err != nil {
			s.notify(assistant.Notice{Level: assistant.LevelError, Message: "Unknown voice: " + in.VoiceID})
		}

	case frameSpeechResult:
		if s.speech != nil {
			s.speech.result(in.Seq, in.Segments)
		}

	case frameSpeechError:
		if s.speech != nil {
			s.speech.fail(in.Seq, in.Error)
		}

	case frameSpeechEnd:
		if s.speech != nil {
			s.speech.end(in.Seq)
		}

	case framePlaybackResult:
		s.player.resolve(in.Seq, playbackResult{blocked: in.Blocked, err: in.Error})

	default:
		s.log.WithField("frame", in.Type).Debug("Unknown frame type")
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.WithError(err).Warn("WebSocket write error")
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.ctx.Done():
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				s.log.WithError(err).Debug("Close frame not sent")
			}
			return
		}
	}
}

// Close tears the session down: capture stops, audio is detached and its
// clip released, and outstanding chat or synthesis calls are cancelled.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.ctrl.Close()
		s.cancel()
		s.conn.Close()
		s.log.Debug("Session closed")
	})
}

// Package assistant implements the voice chat widget: the controller that
// turns typed or spoken input into chat requests, the playback of replies and
// the speech capture state machine.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tahcohcat/voicechat-web/internal/conversation"
	"github.com/tahcohcat/voicechat-web/internal/llm/chat"
	"github.com/tahcohcat/voicechat-web/internal/logger"
	"github.com/tahcohcat/voicechat-web/internal/tts"
)

// DefaultModel is the chat model requested when none is configured.
const DefaultModel = "llama-3.1-8b-instant"

// ChatClient is the chat-completion collaborator.
type ChatClient interface {
	ChatCompletion(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type Options struct {
	Chat        ChatClient
	Synthesizer Synthesizer
	Voices      tts.VoiceLister
	Player      Player
	Speech      SpeechSupport
	Notifier    Notifier
	Model       string
	// Tried in order when voices load; the first voice is used otherwise.
	PreferredVoices []string
}

type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	chat      ChatClient
	model     string
	lister    tts.VoiceLister
	preferred []string

	store    *conversation.Store
	status   *status
	voices   *voiceSelection
	playback *Playback
	speech   *Speech
	notifier Notifier
	log      *logger.Log

	mu    sync.Mutex
	input string

	subMu       sync.Mutex
	subscribers []func(State)

	closeOnce sync.Once
}

// NewController wires a widget. ctx bounds every call the controller starts
// on its own (voice loading, speech capture); Close cancels it.
func NewController(ctx context.Context, opts Options) *Controller {
	ctx, cancel := context.WithCancel(ctx)

	notifier := opts.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	c := &Controller{
		ctx:       ctx,
		cancel:    cancel,
		chat:      opts.Chat,
		model:     model,
		lister:    opts.Voices,
		preferred: opts.PreferredVoices,
		store:     conversation.NewStore(),
		status:    &status{},
		voices:    &voiceSelection{},
		notifier:  notifier,
		log:       logger.New().WithField("component", "controller"),
	}
	c.status.onChange = c.emit
	c.playback = newPlayback(opts.Synthesizer, opts.Player, c.status, notifier)
	c.speech = newSpeech(opts.Speech, c.status, notifier, c.handleTranscript)

	return c
}

// HandleUserInput records content, asks the chat model for a reply, records
// the reply and plays it back.
func (c *Controller) HandleUserInput(ctx context.Context, content string, typ conversation.Type) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	history := c.store.Context()
	c.store.AddInteraction(typ, content, conversation.RoleUser)
	c.setInput("")
	c.emit()

	c.status.update(func(f *Flags) {
		f.Loading = true
		f.PlaybackError = false
	})
	defer c.status.update(func(f *Flags) { f.Loading = false })

	c.log.Info("Sending request to chat API...")

	reply, err := c.complete(ctx, history, content)
	if err != nil {
		c.log.WithError(err).Error("Error handling user input")
		c.notifier.Notify(Notice{Level: LevelError, Message: "Failed to process message: " + err.Error()})
		c.status.update(func(f *Flags) { f.PlaybackError = true })
		return err
	}

	c.store.AddInteraction(conversation.TypeLLM, reply, conversation.RoleAssistant)
	c.emit()

	c.log.Debug("Attempting to play voice response...")
	if err := c.playback.Play(ctx, reply, c.voices.selectedID()); err != nil && !errors.Is(err, ErrAutoplayBlocked) {
		c.status.update(func(f *Flags) { f.PlaybackError = true })
	}
	return nil
}

func (c *Controller) complete(ctx context.Context, history []conversation.ContextMessage, content string) (string, error) {
	messages := make([]chat.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, chat.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, chat.Message{Role: chat.RoleUser, Content: content})

	resp, err := c.chat.ChatCompletion(ctx, chat.Request{Messages: messages, Model: c.model})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrChatRequest, err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrChatFormat
	}

	c.log.Debug(fmt.Sprintf("Received %d choices from chat API", len(resp.Choices)))
	return resp.Choices[0].Message.Content, nil
}

func (c *Controller) handleTranscript(transcript string) {
	c.SetInput(transcript)
	_ = c.HandleUserInput(c.ctx, transcript, conversation.TypeSpeech)
}

// SetInput stores the pending text field value.
func (c *Controller) SetInput(text string) {
	c.setInput(text)
}

func (c *Controller) setInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Submit sends the pending input as a typed message (Enter / Send).
func (c *Controller) Submit(ctx context.Context) error {
	return c.HandleUserInput(ctx, c.Input(), conversation.TypeText)
}

// LoadVoices fetches the voice list and picks the initial selection.
func (c *Controller) LoadVoices(ctx context.Context) error {
	if c.lister == nil {
		return fmt.Errorf("%w: no voice provider", ErrVoiceFetch)
	}

	voices, err := c.lister.ListVoices(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrVoiceFetch, err)
		c.log.WithError(err).Error("Error fetching voices")
		c.notifier.Notify(Notice{Level: LevelError, Message: "An error occurred while fetching voices."})
		return err
	}

	c.voices.set(voices, c.preferred)
	c.log.Debug(fmt.Sprintf("Loaded %d voices, selected %q", len(voices), c.voices.selectedID()))
	c.emit()
	return nil
}

func (c *Controller) SelectVoice(query string) error {
	if _, ok := c.voices.choose(query); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVoice, query)
	}
	c.emit()
	return nil
}

func (c *Controller) SelectedVoice() string {
	return c.voices.selectedID()
}

func (c *Controller) StartListening() error {
	return c.speech.Start(c.ctx)
}

func (c *Controller) StopListening() {
	c.speech.Stop()
}

// Play speaks an assistant interaction again with the selected voice.
func (c *Controller) Play(ctx context.Context, interactionID string) error {
	in, ok := c.store.Find(interactionID)
	if !ok || in.Role != conversation.RoleAssistant {
		return fmt.Errorf("%w: %s", ErrUnknownInteraction, interactionID)
	}
	return c.playback.Play(ctx, in.Content, c.voices.selectedID())
}

// Retry replays a reply whose playback failed.
func (c *Controller) Retry(ctx context.Context, interactionID string) error {
	in, ok := c.store.Find(interactionID)
	if !ok || in.Role != conversation.RoleAssistant {
		return fmt.Errorf("%w: %s", ErrUnknownInteraction, interactionID)
	}
	return c.playback.Retry(ctx, in, c.voices.selectedID())
}

func (c *Controller) StopPlayback() {
	c.playback.Stop()
}

func (c *Controller) Flags() Flags {
	return c.status.get()
}

func (c *Controller) Interactions() []conversation.Interaction {
	return c.store.Interactions()
}

func (c *Controller) State() State {
	return State{
		Flags:           c.status.get(),
		Input:           c.Input(),
		SpeechSupported: c.speech.Supported(),
		Voices:          c.voices.list(),
		SelectedVoice:   c.voices.selectedID(),
		Interactions:    c.store.Interactions(),
	}
}

// Subscribe registers fn to receive a State after every change.
func (c *Controller) Subscribe(fn func(State)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Controller) emit() {
	c.subMu.Lock()
	subs := append(([]func(State))(nil), c.subscribers...)
	c.subMu.Unlock()

	if len(subs) == 0 {
		return
	}
	st := c.State()
	for _, fn := range subs {
		fn(st)
	}
}

// Close stops capture, detaches audio and cancels outstanding calls.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.speech.Close()
		c.playback.Close()
		c.log.Debug("Controller closed")
	})
}

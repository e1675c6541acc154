// Package conversation keeps the session transcript: the displayed
// interaction log and the role-tagged history sent to the chat model.
package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeText   Type = "text"
	TypeSpeech Type = "speech"
	TypeLLM    Type = "llm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Interaction is one logged turn. It is never modified after creation.
type Interaction struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"type"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
}

// ContextMessage is the reduced projection of an Interaction sent as chat history.
type ContextMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Snapshot is a consistent view of both sequences.
type Snapshot struct {
	Interactions []Interaction
	Context      []ContextMessage
}

// Store is append-only. interactions[i] and context[i] always describe the
// same turn.
type Store struct {
	mu           sync.RWMutex
	interactions []Interaction
	context      []ContextMessage

	now   func() time.Time
	newID func() string
}

func NewStore() *Store {
	return &Store{
		now:   time.Now,
		newID: newInteractionID,
	}
}

// UUIDv7 ids sort by creation time.
func newInteractionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// AddInteraction appends one Interaction and its ContextMessage.
func (s *Store) AddInteraction(typ Type, content string, role Role) Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	interaction := Interaction{
		ID:        s.newID(),
		Timestamp: s.now().UTC(),
		Type:      typ,
		Content:   content,
		Role:      role,
	}
	s.interactions = append(s.interactions, interaction)
	s.context = append(s.context, ContextMessage{Role: role, Content: content})

	return interaction
}

func (s *Store) Interactions() []Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Interaction(nil), s.interactions...)
}

func (s *Store) Context() []ContextMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ContextMessage(nil), s.context...)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Interactions: append([]Interaction(nil), s.interactions...),
		Context:      append([]ContextMessage(nil), s.context...),
	}
}

func (s *Store) Find(id string) (Interaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, in := range s.interactions {
		if in.ID == id {
			return in, true
		}
	}
	return Interaction{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.interactions)
}

// Package audio keeps synthesized clips addressable by URL for as long as the
// browser's audio element may load them.
package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// PathPrefix is where clips are served; the clip id follows it.
const PathPrefix = "/api/v1/audio/"

var ErrEmpty = errors.New("audio clip is empty")

// Registry maps clip ids to audio bytes.
type Registry struct {
	mu    sync.RWMutex
	clips map[string][]byte
}

func NewRegistry() *Registry {
	return &Registry{clips: make(map[string][]byte)}
}

// Create stores audio under a fresh id. The clip stays reachable until the
// returned Source is released.
func (r *Registry) Create(audio []byte) (*Source, error) {
	if len(audio) == 0 {
		return nil, ErrEmpty
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate clip id: %w", err)
	}

	r.mu.Lock()
	r.clips[id.String()] = audio
	r.mu.Unlock()

	return &Source{id: id.String(), registry: r}, nil
}

func (r *Registry) Get(id string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clip, ok := r.clips[id]
	return clip, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clips)
}

func (r *Registry) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clips, id)
}

// Source is a live clip. Release is idempotent.
type Source struct {
	id       string
	registry *Registry
	once     sync.Once
}

func (s *Source) ID() string { return s.id }

func (s *Source) URL() string { return PathPrefix + s.id }

func (s *Source) Release() {
	s.once.Do(func() { s.registry.delete(s.id) })
}

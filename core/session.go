package core

import (
	"sync"
	"time"
)

// Session represents a conversational container tracking mutable key/value
// state plus an ordered message history. It is safe for concurrent access.
//
// Contract:
//   - Mutations update the Updated timestamp
//   - History returns a defensive copy to avoid external mutation
//   - Clone performs deep copies of maps/slices for safe divergence.
type Session struct {
	ID      string            `json:"id"`
	State   map[string]any    `json:"state"`
	Entries []Content         `json:"entries"`
	Created time.Time         `json:"created"`
	Updated time.Time         `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates a new session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, State: map[string]any{}, Entries: []Content{}, Created: now, Updated: now}
}

// GetState returns the value and existence flag for a state key.
func (s *Session) GetState(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.State[key]
	return v, ok
}

// SetState sets a key/value pair in session state updating the Updated timestamp.
func (s *Session) SetState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State[key] = value
	s.Updated = time.Now()
}

// MergeState merges the provided key/value pairs into State.
func (s *Session) MergeState(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range delta {
		s.State[k] = v
	}
	s.Updated = time.Now()
}

// Append adds content to the history updating the Updated timestamp.
func (s *Session) Append(c Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries = append(s.Entries, c)
	s.Updated = time.Now()
}

// History returns a defensive copy of the full message history.
func (s *Session) History() []Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Content, len(s.Entries))
	copy(entries, s.Entries)
	return entries
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:      s.ID,
		State:   make(map[string]any, len(s.State)),
		Entries: make([]Content, len(s.Entries)),
		Created: s.Created,
		Updated: s.Updated,
	}
	for k, v := range s.State {
		clone.State[k] = v
	}
	copy(clone.Entries, s.Entries)
	return clone
}

// SessionStore persists sessions and their evolving state / message history.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	Append(sessionID string, c Content) error
	ApplyDelta(sessionID string, delta map[string]any) error
}

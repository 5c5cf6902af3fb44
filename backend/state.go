package backend

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// State is the ephemeral backend: a process-local file map whose contents do
// not outlive the enclosing session. It keeps all files in a map guarded by
// an RWMutex; data is copied on write / read to avoid accidental external
// mutation of internal buffers.
type State struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewState returns an empty ephemeral backend.
func NewState() *State {
	return &State{files: make(map[string][]byte)}
}

// Read returns a copy of the file contents or ErrNotFound.
func (s *State) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[path]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Write stores a copy of data at path.
func (s *State) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.files[path] = cp
	return nil
}

// List returns the sorted paths matching prefix.
func (s *State) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes the file if present or returns ErrNotFound.
func (s *State) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[path]; !ok {
		return ErrNotFound
	}
	delete(s.files, path)
	return nil
}

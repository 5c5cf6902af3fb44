package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryKV is a process-local KV useful for tests, examples and running
// without a Redis instance. Contents vanish when the process exits, so agent
// memories routed through it survive threads but not restarts. Data is copied
// on save / retrieval to avoid accidental external mutation of internal
// buffers.
//
// Layout: namespace -> key -> raw bytes
type InMemoryKV struct {
	mu     sync.RWMutex
	values map[string]map[string][]byte
}

// NewInMemoryKV returns an empty in-memory store.
func NewInMemoryKV() *InMemoryKV {
	return &InMemoryKV{values: make(map[string]map[string][]byte)}
}

// Get returns a copy of the stored value or ErrNotFound.
func (s *InMemoryKV) Get(_ context.Context, namespace, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.values[namespace]
	if !ok {
		return nil, ErrNotFound
	}
	value, ok := ns[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Set stores a copy of value under namespace/key.
func (s *InMemoryKV) Set(_ context.Context, namespace, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[namespace]; !ok {
		s.values[namespace] = make(map[string][]byte)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[namespace][key] = cp
	return nil
}

// List returns the sorted keys in the namespace matching prefix.
func (s *InMemoryKV) List(_ context.Context, namespace, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.values[namespace]
	if !ok {
		return []string{}, nil
	}
	keys := make([]string, 0, len(ns))
	for k := range ns {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the key if present or returns ErrNotFound.
func (s *InMemoryKV) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.values[namespace]
	if !ok {
		return ErrNotFound
	}
	if _, ok := ns[key]; !ok {
		return ErrNotFound
	}
	delete(ns, key)
	return nil
}

// Close implements KV; nothing to release.
func (s *InMemoryKV) Close() error { return nil }

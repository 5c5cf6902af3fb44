package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/gisard/deepresearch/store"
)

// Store is the persistent backend: file paths map directly to keys in a KV
// store under a caller-supplied namespace, typically derived from the route
// prefix so the memory is shared across threads. Contents survive across
// sessions as long as the underlying KV does.
type Store struct {
	kv        store.KV
	namespace string
}

// NewStore binds a KV store to a namespace.
func NewStore(kv store.KV, namespace string) *Store {
	return &Store{kv: kv, namespace: namespace}
}

// Read returns the contents stored at path or ErrNotFound.
func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := s.kv.Get(ctx, s.namespace, path)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Write stores the contents at path.
func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	if err := s.kv.Set(ctx, s.namespace, path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// List returns the sorted paths matching prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	paths, err := s.kv.List(ctx, s.namespace, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	return paths, nil
}

// Delete removes the file at path or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, path string) error {
	err := s.kv.Delete(ctx, s.namespace, path)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

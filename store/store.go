// Package store provides the key-value persistence boundary behind the
// persistent file backend. Values are grouped by a caller-supplied namespace
// (typically a research thread id) so memories survive across sessions.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist in the given namespace.
var ErrNotFound = errors.New("store: key not found")

// KV is the minimal key-value contract required by the persistent backend.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under namespace/key or ErrNotFound.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Set stores (or overwrites) the value under namespace/key.
	Set(ctx context.Context, namespace, key string, value []byte) error

	// List returns all keys in the namespace starting with prefix.
	// An empty prefix matches every key.
	List(ctx context.Context, namespace, prefix string) ([]string, error)

	// Delete removes namespace/key or returns ErrNotFound.
	Delete(ctx context.Context, namespace, key string) error

	// Close releases any underlying resources.
	Close() error
}

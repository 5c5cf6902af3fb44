// Package backend presents a unified logical file namespace over storage
// backends with different durability guarantees. Agents address files by
// slash-delimited paths; a Composite routes each path to the ephemeral state
// backend or a persistent store backend by configured prefix, so calling code
// never needs to know which backend serves a given path.
package backend

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a path does not exist in the resolved backend.
var ErrNotFound = errors.New("backend: file not found")

// Backend is the file-like storage contract shared by all backends.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Read returns the contents stored at path or ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores (or overwrites) the contents at path.
	Write(ctx context.Context, path string, data []byte) error

	// List returns the paths starting with prefix, sorted. An empty prefix
	// matches everything.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the file at path or returns ErrNotFound.
	Delete(ctx context.Context, path string) error
}

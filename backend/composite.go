package backend

import (
	"context"
	"sort"
	"strings"
)

// Route binds a path prefix to the backend serving it.
type Route struct {
	Prefix  string
	Backend Backend
}

// Composite routes file operations to one of several backends by path prefix.
// Routes are consulted in configuration order and the first prefix match
// wins; paths matching no route fall through to the default backend.
// Configuration should avoid overlapping prefixes, but resolution stays
// deterministic either way.
type Composite struct {
	routes []Route
	def    Backend
}

// NewComposite creates a router with the given default backend and ordered
// routes.
func NewComposite(def Backend, routes ...Route) *Composite {
	return &Composite{routes: routes, def: def}
}

// Resolve returns the backend serving path. It is a pure function of the
// configuration and the path string: no I/O, no failure modes. An explicitly
// configured empty prefix matches every path, including the empty one.
func (c *Composite) Resolve(path string) Backend {
	for _, r := range c.routes {
		if strings.HasPrefix(path, r.Prefix) {
			return r.Backend
		}
	}
	return c.def
}

// Read reads from the backend serving path.
func (c *Composite) Read(ctx context.Context, path string) ([]byte, error) {
	return c.Resolve(path).Read(ctx, path)
}

// Write writes to the backend serving path.
func (c *Composite) Write(ctx context.Context, path string, data []byte) error {
	return c.Resolve(path).Write(ctx, path, data)
}

// Delete deletes from the backend serving path.
func (c *Composite) Delete(ctx context.Context, path string) error {
	return c.Resolve(path).Delete(ctx, path)
}

// List merges listings from every backend, keeping only paths the router
// would actually serve from that backend. This prevents shadowed duplicates
// when a path exists in more than one backend.
func (c *Composite) List(ctx context.Context, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	var merged []string

	collect := func(b Backend) error {
		paths, err := b.List(ctx, prefix)
		if err != nil {
			return err
		}
		for _, p := range paths {
			if c.Resolve(p) != b {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			merged = append(merged, p)
		}
		return nil
	}

	for _, r := range c.routes {
		if err := collect(r.Backend); err != nil {
			return nil, err
		}
	}
	if err := collect(c.def); err != nil {
		return nil, err
	}

	sort.Strings(merged)
	return merged, nil
}

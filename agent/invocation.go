package agent

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/gisard/deepresearch/core"
	"github.com/gisard/deepresearch/logging"
	"github.com/gisard/deepresearch/session"
	"github.com/gisard/deepresearch/telemetry"
)

// Invocation carries everything an agent needs for a single run: the session
// store holding conversation state, structured logging and tracing. The same
// invocation flows through coordinator hierarchies; parallel coordinators
// hand each child a branch-scoped copy.
type Invocation struct {
	Context   context.Context
	ID        string // Unique id for this invocation
	SessionID string // Conversation thread the agents operate on
	Branch    string // Hierarchical branch path for parallel isolation
	Sessions  core.SessionStore
	Logger    logging.Logger
	Tracer    trace.Tracer
}

// InvocationOptions configures optional invocation collaborators.
type InvocationOptions struct {
	Sessions core.SessionStore
	Logger   logging.Logger
	Tracer   trace.Tracer
}

// NewInvocation builds an invocation for the given conversation thread with
// sensible defaults: a fresh in-memory session store, no-op logging and a
// no-op tracer.
func NewInvocation(ctx context.Context, sessionID string, optFns ...func(o *InvocationOptions)) *Invocation {
	opts := InvocationOptions{
		Sessions: session.NewInMemoryStore(),
		Logger:   logging.NoOpLogger{},
		Tracer:   telemetry.NoopTracer(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Invocation{
		Context:   ctx,
		ID:        core.NewID(),
		SessionID: sessionID,
		Sessions:  opts.Sessions,
		Logger:    opts.Logger,
		Tracer:    opts.Tracer,
	}
}

// withBranch returns a copy of the invocation scoped to a child branch path.
// The session store is shared; only the branch identity diverges.
func (inv *Invocation) withBranch(branch string) *Invocation {
	clone := *inv
	if inv.Branch != "" {
		branch = inv.Branch + "." + branch
	}
	clone.Branch = branch
	clone.Logger = logging.With(inv.Logger, "branch", branch)
	return &clone
}

// Package agent implements the execution layer: model-backed agents with a
// tool calling loop, plus sequential and parallel coordinators for composing
// them into multi-agent research workflows.
package agent

import (
	"fmt"
	"sync"

	"github.com/gisard/deepresearch/core"
)

// Agent is the behavioral contract for every runnable agent. Run drives the
// agent to completion against the invocation's session and returns the final
// assistant content.
type Agent interface {
	// Name returns the unique identifier for this agent.
	Name() string

	// Description returns a detailed description of the agent's purpose.
	Description() string

	// Run executes the agent's behavior within the given invocation.
	Run(inv *Invocation) (core.Content, error)
}

// BaseAgent bundles shared identity and hierarchy helpers. Embed it in
// concrete agent implementations and supply a Run method to satisfy the
// Agent interface. All exported methods are goroutine-safe.
type BaseAgent struct {
	name        string
	description string
	mu          sync.Mutex
	subAgents   []Agent
}

// NewBaseAgent constructs a BaseAgent with generated description (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// SetSubAgents atomically replaces the child agent set.
func (b *BaseAgent) SetSubAgents(children ...Agent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subAgents = append([]Agent(nil), children...)
}

// SubAgents returns a shallow copy of current child agents for safe iteration.
func (b *BaseAgent) SubAgents() []Agent {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]Agent, len(b.subAgents))
	copy(result, b.subAgents)
	return result
}

// FindAgent performs a depth-first search over the subtree rooted at this
// agent returning the first agent whose Name matches. Returns nil if no
// match is found.
func (b *BaseAgent) FindAgent(name string) Agent {
	for _, child := range b.SubAgents() {
		if child.Name() == name {
			return child
		}
		if finder, ok := child.(interface{ FindAgent(string) Agent }); ok {
			if found := finder.FindAgent(name); found != nil {
				return found
			}
		}
	}
	return nil
}

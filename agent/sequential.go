package agent

import (
	"fmt"

	"github.com/gisard/deepresearch/core"
)

// SequentialAgent coordinates the execution of multiple child agents in sequence.
//
// This agent type enables multi-step workflows by executing child agents one
// after another over the same session. Each agent's output becomes available
// to subsequent agents through the shared conversation history and any
// output keys written to session state.
//
// SequentialAgent is ideal for:
//   - Multi-step research pipelines (plan, gather, synthesize)
//   - Workflows requiring specific execution order
//   - Scenarios where agent outputs build upon each other
type SequentialAgent struct {
	BaseAgent
	children []Agent
}

// NewSequentialAgent creates a new sequential execution coordinator. The
// child agents run in the order they are specified, sharing session state.
func NewSequentialAgent(name string, children ...Agent) *SequentialAgent {
	a := &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
	a.SetSubAgents(children...)
	return a
}

// Run executes each child agent in order; errors stop further processing
// immediately. The final child's content is returned as the overall result.
func (s *SequentialAgent) Run(inv *Invocation) (core.Content, error) {
	var last core.Content
	for _, child := range s.children {
		out, err := child.Run(inv)
		if err != nil {
			return core.Content{}, fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}
		last = out
	}
	return last, nil
}

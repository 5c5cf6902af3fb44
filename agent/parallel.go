package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gisard/deepresearch/core"
)

// ParallelAgent coordinates the concurrent execution of multiple child agents.
//
// Each child runs in its own goroutine against the shared session store with
// a branch-scoped invocation so logs and traces identify the originating
// child. Successful children continue even if siblings fail; the first error
// encountered is returned after all children complete.
//
// ParallelAgent is ideal for:
//   - Independent research tasks fanned out to specialists
//   - I/O bound operations that can run concurrently
//   - Data gathering from multiple sources
type ParallelAgent struct {
	BaseAgent
	children []Agent
	timeout  time.Duration
}

// NewParallelAgent creates a new parallel execution coordinator. A zero
// timeout means the children inherit the invocation deadline unchanged.
func NewParallelAgent(name string, timeout time.Duration, children ...Agent) *ParallelAgent {
	a := &ParallelAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
		timeout:   timeout,
	}
	a.SetSubAgents(children...)
	return a
}

// Run launches all children concurrently and waits for completion. The
// combined result concatenates each child's output in configuration order.
func (p *ParallelAgent) Run(inv *Invocation) (core.Content, error) {
	ctx := inv.Context
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(p.children))
	outputs := make([]core.Content, len(p.children))

	for i, child := range p.children {
		wg.Add(1)
		go func(idx int, c Agent) {
			defer wg.Done()

			branchInv := inv.withBranch(fmt.Sprintf("%s.%s", p.Name(), c.Name()))
			branchInv.Context = ctx

			out, err := c.Run(branchInv)
			if err != nil {
				errCh <- fmt.Errorf("parallel execution failed for agent %s: %w", c.Name(), err)
				return
			}
			outputs[idx] = out
		}(i, child)
	}

	wg.Wait()
	close(errCh)

	if len(errCh) > 0 {
		return core.Content{}, <-errCh
	}

	var sections []string
	for _, out := range outputs {
		if text := out.Text(); text != "" {
			sections = append(sections, text)
		}
	}
	return core.NewAssistantText(strings.Join(sections, "\n\n")), nil
}

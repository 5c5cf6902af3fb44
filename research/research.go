package research

import (
	"strings"
	"time"

	"github.com/gisard/deepresearch/agent"
	"github.com/gisard/deepresearch/backend"
	"github.com/gisard/deepresearch/model"
	"github.com/gisard/deepresearch/retry"
	"github.com/gisard/deepresearch/store"
	"github.com/gisard/deepresearch/tool"
)

// DefaultMemoryPrefixes are the path prefixes routed to persistent storage
// when no explicit routing configuration is supplied.
var DefaultMemoryPrefixes = []string{"/memories/"}

// NewWorkspace builds the agents' file namespace: an ephemeral state backend
// as default, with every configured prefix routed to a store-backed backend
// on the given KV store. Earlier prefixes win when they overlap.
func NewWorkspace(kv store.KV, prefixes []string) *backend.Composite {
	if len(prefixes) == 0 {
		prefixes = DefaultMemoryPrefixes
	}
	routes := make([]backend.Route, 0, len(prefixes))
	for _, prefix := range prefixes {
		routes = append(routes, backend.Route{
			Prefix:  prefix,
			Backend: backend.NewStore(kv, namespaceFor(prefix)),
		})
	}
	return backend.NewComposite(backend.NewState(), routes...)
}

// namespaceFor derives a KV namespace from a path prefix, e.g.
// "/memories/research/" becomes "memories.research".
func namespaceFor(prefix string) string {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return "root"
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}

// AgentOptions configures the research agent factories.
type AgentOptions struct {
	Prompt        string       // Overrides the default system prompt
	Retry         retry.Policy // Retry policy applied to model calls
	OutputKey     string       // Session state key for the final answer
	MaxIterations int          // Tool loop cap (0 uses the agent default)
}

func (o AgentOptions) apply(base string) func(mo *agent.ModelAgentOptions) {
	return func(mo *agent.ModelAgentOptions) {
		prompt := base
		if o.Prompt != "" {
			prompt = o.Prompt
		}
		mo.Instruction = agent.NewInstructionFromText(prompt)
		mo.Retry = o.Retry
		mo.OutputKey = o.OutputKey
		if o.MaxIterations > 0 {
			mo.MaxIterations = o.MaxIterations
		}
	}
}

// NewResearchAgent creates a simple research agent without memory. Each run
// starts fresh; suited to one-off queries and quick fact-checking.
func NewResearchAgent(llm model.Model, search tool.Tool, optFns ...func(o *AgentOptions)) *agent.ModelAgent {
	opts := AgentOptions{OutputKey: "final_answer"}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := agent.NewModelAgent("researcher", llm, opts.apply(SimplePrompt))
	a.SetDescription("One-shot research agent with internet search.")
	a.RegisterTool(search)
	return a
}

// NewMemoryResearchAgent creates a research agent with long-term memory.
// It carries the file toolset over the given workspace so paths under the
// persistent prefixes survive across threads and restarts.
func NewMemoryResearchAgent(llm model.Model, search tool.Tool, files backend.Backend, optFns ...func(o *AgentOptions)) *agent.ModelAgent {
	opts := AgentOptions{Prompt: BalancedMemoryPrompt, OutputKey: "final_answer"}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := agent.NewModelAgent("memory-researcher", llm, opts.apply(BalancedMemoryPrompt))
	a.SetDescription("Research agent with persistent memory under /memories/.")
	a.RegisterTool(search)
	a.RegisterTools(tool.FileTools(files)...)
	return a
}

// NewSequentialCoordinator creates the sequential research workflow: a
// research executor gathers sourced notes into the shared namespace, then a
// synthesizer reads them back and produces the final answer.
func NewSequentialCoordinator(llm model.Model, search tool.Tool, files backend.Backend, optFns ...func(o *AgentOptions)) *agent.SequentialAgent {
	opts := AgentOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	executor := agent.NewModelAgent("research-executor", llm, opts.apply(executorPrompt))
	executor.SetDescription("Executes a focused research task and saves notes to shared memory.")
	executor.RegisterTool(search)
	executor.RegisterTools(tool.FileTools(files)...)

	synthOpts := opts
	synthOpts.Prompt = ""
	if opts.OutputKey == "" {
		synthOpts.OutputKey = "final_answer"
	}
	synthesizer := agent.NewModelAgent("synthesizer", llm, synthOpts.apply(synthesizerPrompt))
	synthesizer.SetDescription("Synthesizes shared notes into the final answer.")
	synthesizer.RegisterTools(tool.FileTools(files)...)

	return agent.NewSequentialAgent("research-coordinator-simple", executor, synthesizer)
}

// NewParallelCoordinator creates the specialised research workflow: the
// tech, market and competition specialists fan out concurrently over the
// shared namespace, then a synthesizer reconciles their notes.
func NewParallelCoordinator(llm model.Model, search tool.Tool, files backend.Backend, timeout time.Duration, optFns ...func(o *AgentOptions)) *agent.SequentialAgent {
	opts := AgentOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	specialist := func(name, description, prompt string) *agent.ModelAgent {
		sOpts := opts
		sOpts.OutputKey = ""
		a := agent.NewModelAgent(name, llm, sOpts.apply(prompt))
		a.SetDescription(description)
		a.RegisterTool(search)
		a.RegisterTools(tool.FileTools(files)...)
		return a
	}

	specialists := agent.NewParallelAgent("specialists", timeout,
		specialist("tech-specialist", "Deep technical product research and architectural analysis.", techSpecialistPrompt),
		specialist("market-analyst", "Market sizing, pricing, and customer landscape research.", marketAnalystPrompt),
		specialist("competition-analyst", "Competitive landscape comparisons and differentiation insights.", competitionAnalystPrompt),
	)

	synthOpts := opts
	synthOpts.Prompt = ""
	if opts.OutputKey == "" {
		synthOpts.OutputKey = "final_answer"
	}
	synthesizer := agent.NewModelAgent("synthesizer", llm, synthOpts.apply(synthesizerPrompt))
	synthesizer.SetDescription("Reconciles specialist notes into a coherent synthesis.")
	synthesizer.RegisterTools(tool.FileTools(files)...)

	return agent.NewSequentialAgent("research-coordinator-specialised", specialists, synthesizer)
}

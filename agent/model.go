package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gisard/deepresearch/core"
	"github.com/gisard/deepresearch/internal/util"
	"github.com/gisard/deepresearch/logging"
	"github.com/gisard/deepresearch/model"
	"github.com/gisard/deepresearch/retry"
	"github.com/gisard/deepresearch/tool"
)

// agentLogger scopes the invocation logger to a named agent.
func agentLogger(inv *Invocation, name string) logging.Logger {
	return logging.With(inv.Logger, "agent", name)
}

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Description        string
	Instruction        Instruction
	Tools              []tool.Tool
	Retry              retry.Policy
	OutputKey          string
	MaxIterations      int
	MaxHistoryMessages int
}

// ModelAgent integrates with language models to provide intelligent text
// processing capabilities.
//
// This agent implementation supports:
//   - Natural language conversation through system prompts
//   - Function calling with registered tools
//   - Retry of transient model failures per the configured policy
//   - Session state management with output keys
//   - Template-based prompt customization against session state
type ModelAgent struct {
	BaseAgent
	llm        model.Model
	instruct   Instruction
	tools      map[string]tool.Tool
	toolOrder  []string
	policy     retry.Policy
	outputKey  string
	maxIters   int
	maxHistory int
}

// NewModelAgent creates a new model-based agent with sensible defaults:
// no tools, a generic assistant instruction, a 10-iteration tool loop cap
// and a 20-message conversation history window.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		MaxIterations:      10,
		MaxHistoryMessages: 20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:  NewBaseAgent(name),
		llm:        llm,
		instruct:   opts.Instruction,
		tools:      make(map[string]tool.Tool),
		policy:     opts.Retry,
		outputKey:  opts.OutputKey,
		maxIters:   opts.MaxIterations,
		maxHistory: opts.MaxHistoryMessages,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	a.RegisterTools(opts.Tools...)
	return a
}

// RegisterTool adds a function tool to the agent's capability set.
//
// Registered tools become available for the language model to call during
// conversations. Tools should implement the tool.Tool interface with proper
// JSON schema definitions.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	if _, exists := a.tools[t.Name()]; !exists {
		a.toolOrder = append(a.toolOrder, t.Name())
	}
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// ListTools returns the names of all registered tools in registration order.
func (a *ModelAgent) ListTools() []string {
	return append([]string(nil), a.toolOrder...)
}

// ResolveInstructions produces the final instruction string (system prompt)
// by resolving static or dynamic instruction sources, then rendering any
// template markers against session state.
func (a *ModelAgent) ResolveInstructions(inv *Invocation) (string, error) {
	text, err := a.instruct.Resolve(inv)
	if err != nil {
		return "", fmt.Errorf("resolve instruction: %w", err)
	}

	sess, err := inv.Sessions.Get(inv.SessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return util.RenderTemplate(text, sess.State)
}

// Run drives the generate/tool-call loop until the model produces a final
// answer or the iteration cap is hit. Tool failures are reported back to the
// model rather than aborting the run; transient model failures are retried
// per the configured policy.
func (a *ModelAgent) Run(inv *Invocation) (core.Content, error) {
	ctx, span := inv.Tracer.Start(inv.Context, "agent.run",
		trace.WithAttributes(
			attribute.String("agent.name", a.Name()),
			attribute.String("session.id", inv.SessionID),
		))
	defer span.End()

	logger := agentLogger(inv, a.Name())
	logger.Debug("agent run start", "invocation", inv.ID)

	toolDefs := a.toolDefinitions()

	for iteration := 1; iteration <= a.maxIters; iteration++ {
		sess, err := inv.Sessions.Get(inv.SessionID)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return core.Content{}, fmt.Errorf("load session: %w", err)
		}

		instructions, err := a.ResolveInstructions(inv)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return core.Content{}, err
		}

		req := model.Request{
			Instructions: instructions,
			Contents:     trimHistory(sess.History(), a.maxHistory),
			Tools:        toolDefs,
		}

		resp, err := a.generate(ctx, inv, req)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return core.Content{}, err
		}

		if err := inv.Sessions.Append(inv.SessionID, resp.Content); err != nil {
			return core.Content{}, fmt.Errorf("append assistant content: %w", err)
		}

		calls := resp.Content.FunctionCalls()
		if len(calls) == 0 {
			if a.outputKey != "" {
				if err := inv.Sessions.ApplyDelta(inv.SessionID, map[string]any{a.outputKey: resp.Content.Text()}); err != nil {
					return core.Content{}, fmt.Errorf("store output: %w", err)
				}
			}
			logger.Debug("agent run complete", "iterations", iteration, "finish_reason", resp.FinishReason)
			return resp.Content, nil
		}

		logger.Debug("executing tool calls", "count", len(calls), "iteration", iteration)
		for _, call := range calls {
			fr := a.executeCall(ctx, inv, call)
			if err := inv.Sessions.Append(inv.SessionID, core.NewToolResponse(fr)); err != nil {
				return core.Content{}, fmt.Errorf("append tool response: %w", err)
			}
		}
	}

	err := fmt.Errorf("agent %s exceeded %d tool iterations", a.Name(), a.maxIters)
	span.SetStatus(codes.Error, err.Error())
	return core.Content{}, err
}

// generate performs a single retried model call with its own span.
func (a *ModelAgent) generate(ctx context.Context, inv *Invocation, req model.Request) (*model.Response, error) {
	genCtx, span := inv.Tracer.Start(ctx, "model.generate",
		trace.WithAttributes(
			attribute.String("model.name", a.llm.Info().Name),
			attribute.String("model.provider", a.llm.Info().Provider),
		))
	defer span.End()

	policy := a.policy
	policy.Logger = agentLogger(inv, a.Name())

	resp, err := retry.Do(genCtx, policy, func(ctx context.Context) (*model.Response, error) {
		return a.llm.Generate(ctx, req)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("model generation failed: %w", err)
	}
	if resp.Usage != nil {
		span.SetAttributes(
			attribute.Int("usage.prompt_tokens", resp.Usage.PromptTokens),
			attribute.Int("usage.completion_tokens", resp.Usage.CompletionTokens),
		)
	}
	return resp, nil
}

// executeCall runs one tool call, converting failures into an error-bearing
// function response so the model can react instead of the run aborting.
func (a *ModelAgent) executeCall(ctx context.Context, inv *Invocation, call core.FunctionCall) core.FunctionResponse {
	toolCtx, span := inv.Tracer.Start(ctx, "tool.call",
		trace.WithAttributes(attribute.String("tool.name", call.Name)))
	defer span.End()

	fr := core.FunctionResponse{ID: call.ID, Name: call.Name}

	t, exists := a.tools[call.Name]
	if !exists {
		fr.Error = fmt.Sprintf("tool %s not found", call.Name)
		span.SetStatus(codes.Error, fr.Error)
		return fr
	}

	args := make(map[string]interface{})
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			fr.Error = fmt.Sprintf("invalid tool arguments: %v", err)
			span.SetStatus(codes.Error, fr.Error)
			return fr
		}
	}

	result, err := t.Call(toolCtx, args)
	if err != nil {
		fr.Error = err.Error()
		span.SetStatus(codes.Error, fr.Error)
		agentLogger(inv, a.Name()).Warn("tool call failed", "tool", call.Name, "error", err)
		return fr
	}

	fr.Response = result
	return fr
}

// toolDefinitions converts registered tools into model tool definitions.
func (a *ModelAgent) toolDefinitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(a.toolOrder))
	for _, name := range a.toolOrder {
		t := a.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// trimHistory keeps the most recent messages within the window, cut at a
// conversation-turn boundary. A cut landing mid-turn would strand tool
// responses (or an assistant continuation) at the window start, which the
// provider APIs reject; the window is advanced to the next user message.
func trimHistory(history []core.Content, max int) []core.Content {
	if max <= 0 || len(history) <= max {
		return history
	}
	window := history[len(history)-max:]
	for i, c := range window {
		if c.Role == "user" {
			return window[i:]
		}
	}
	return window
}

// Package model defines the provider-neutral generation interface plus the
// request/response structures shared by all model adapters.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/gisard/deepresearch/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by agents.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt for the model
	Contents     []core.Content   `json:"contents"`     // Conversation history converted to provider messages
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed output of a single generation call.
type Response struct {
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
// Generate blocks until the provider returns a complete response.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// scripted is a single queued MockModel outcome.
type scripted struct {
	resp *Response
	err  error
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Outcomes queued via Enqueue take priority; otherwise canned prompt
// responses registered via AddResponse are matched against the last user text.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	script    []scripted
	requests  []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends a scripted outcome returned by the next Generate call.
func (m *MockModel) Enqueue(resp *Response, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{resp: resp, err: err})
}

// Requests returns a copy of every request seen so far, in call order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model; replays scripted outcomes, then canned responses.
func (m *MockModel) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next.resp, next.err
	}

	if len(req.Contents) == 0 {
		return nil, fmt.Errorf("no contents provided")
	}
	last := req.Contents[len(req.Contents)-1]
	var inputText string
	for _, p := range last.Parts {
		if tp, ok := p.(core.TextPart); ok {
			inputText += tp.Text
		}
	}
	full, ok := m.responses[inputText]
	if !ok {
		full = "Mock response to: " + inputText
	}
	return &Response{
		Content:      core.NewAssistantText(full),
		FinishReason: "stop",
	}, nil
}

// Info returns metadata describing this mock implementation.
func (m *MockModel) Info() Info { return m.info }

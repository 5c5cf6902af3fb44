package deepresearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisard/deepresearch/config"
	"github.com/gisard/deepresearch/core"
	"github.com/gisard/deepresearch/logging"
	"github.com/gisard/deepresearch/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Provider:        config.ProviderAnthropic,
		MaxAttempts:     3,
		AnthropicAPIKey: "sk-ant-test",
		TavilyAPIKey:    "tvly-test",
		Logging:         config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func newTestApp(t *testing.T, llm model.Model) *App {
	t.Helper()
	app, err := New(context.Background(), testConfig(), func(o *Options) {
		o.Model = llm
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func TestApp_RunSimpleAgent(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(&model.Response{Content: core.NewAssistantText("the answer")}, nil)

	app := newTestApp(t, llm)

	result, err := app.Run(context.Background(), AgentSimple, "thread-1", "what is Go?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", result.Answer)
	assert.Equal(t, "thread-1", result.SessionID)
	assert.Zero(t, result.QueryID)
}

func TestApp_RunThreadContinuity(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(&model.Response{Content: core.NewAssistantText("first")}, nil)
	llm.Enqueue(&model.Response{Content: core.NewAssistantText("second")}, nil)

	app := newTestApp(t, llm)

	_, err := app.Run(context.Background(), AgentSimple, "thread-1", "question one")
	require.NoError(t, err)
	_, err = app.Run(context.Background(), AgentSimple, "thread-1", "question two")
	require.NoError(t, err)

	// The second request carries the whole thread so far.
	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[0].Contents, 1)
	assert.Len(t, reqs[1].Contents, 3)
}

func TestApp_UnknownAgentKind(t *testing.T) {
	app := newTestApp(t, model.NewMockModel("mock", "test"))

	_, err := app.Run(context.Background(), "recursive", "thread-1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown agent kind")
}

func TestApp_AgentKinds(t *testing.T) {
	app := newTestApp(t, model.NewMockModel("mock", "test"))

	for _, kind := range []string{AgentSimple, AgentMemory, AgentSequential, AgentParallel} {
		ag, err := app.Agent(kind)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, ag.Name(), kind)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = "bedrock"

	_, err := New(context.Background(), cfg, func(o *Options) {
		o.Logger = logging.NoOpLogger{}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model provider")
}

func TestApp_WorkspaceRoutesMemoryPrefixes(t *testing.T) {
	app := newTestApp(t, model.NewMockModel("mock", "test"))

	ws := app.Workspace()
	require.NotNil(t, ws)
	require.NoError(t, ws.Write(context.Background(), "/memories/fact.md", []byte("go is fun")))

	data, err := ws.Read(context.Background(), "/memories/fact.md")
	require.NoError(t, err)
	assert.Equal(t, "go is fun", string(data))
}

package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisard/deepresearch/agent"
	"github.com/gisard/deepresearch/core"
	"github.com/gisard/deepresearch/model"
	"github.com/gisard/deepresearch/store"
)

// stubSearch satisfies tool.Tool without hitting the network.
type stubSearch struct{}

func (stubSearch) Name() string                            { return "internet_search" }
func (stubSearch) Description() string                     { return "stub" }
func (stubSearch) Parameters() map[string]interface{}      { return map[string]interface{}{"type": "object"} }
func (stubSearch) Call(context.Context, map[string]interface{}) (string, error) {
	return `{"results":[]}`, nil
}

func TestNamespaceFor(t *testing.T) {
	assert.Equal(t, "memories", namespaceFor("/memories/"))
	assert.Equal(t, "memories.research", namespaceFor("/memories/research/"))
	assert.Equal(t, "root", namespaceFor("/"))
}

func TestNewWorkspace_RoutesMemoryPrefix(t *testing.T) {
	ctx := context.Background()
	kv := store.NewInMemoryKV()
	ws := NewWorkspace(kv, nil)

	require.NoError(t, ws.Write(ctx, "/memories/notes.md", []byte("kept")))
	require.NoError(t, ws.Write(ctx, "/scratch/tmp.md", []byte("gone")))

	// The memory path landed in the KV store under the derived namespace.
	data, err := kv.Get(ctx, "memories", "/memories/notes.md")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))

	// The scratch path stayed in the ephemeral default backend.
	_, err = kv.Get(ctx, "memories", "/scratch/tmp.md")
	assert.Error(t, err)

	data, err = ws.Read(ctx, "/scratch/tmp.md")
	require.NoError(t, err)
	assert.Equal(t, "gone", string(data))
}

func TestNewWorkspace_ConfiguredPrefixOrder(t *testing.T) {
	ctx := context.Background()
	kv := store.NewInMemoryKV()
	ws := NewWorkspace(kv, []string{"/memories/research/", "/memories/"})

	require.NoError(t, ws.Write(ctx, "/memories/research/x.json", []byte("r")))
	require.NoError(t, ws.Write(ctx, "/memories/y.json", []byte("m")))

	_, err := kv.Get(ctx, "memories.research", "/memories/research/x.json")
	assert.NoError(t, err)
	_, err = kv.Get(ctx, "memories", "/memories/y.json")
	assert.NoError(t, err)
}

func TestMemoryPrompt_Variants(t *testing.T) {
	assert.Equal(t, MinimalMemoryPrompt, MemoryPrompt(PromptMinimal))
	assert.Equal(t, DetailedMemoryPrompt, MemoryPrompt(PromptDetailed))
	assert.Equal(t, SimplePrompt, MemoryPrompt(PromptSimple))
	// Unknown variants fall back to balanced.
	assert.Equal(t, BalancedMemoryPrompt, MemoryPrompt("whatever"))
}

func TestPromptNames_StableOrder(t *testing.T) {
	assert.Equal(t, []string{"balanced", "detailed", "minimal", "simple"}, PromptNames())
}

func TestNewResearchAgent_Toolset(t *testing.T) {
	a := NewResearchAgent(model.NewMockModel("m", "mock"), stubSearch{})
	assert.Equal(t, "researcher", a.Name())
	assert.True(t, a.HasTool("internet_search"))
	assert.False(t, a.HasTool("write_file"))
}

func TestNewMemoryResearchAgent_Toolset(t *testing.T) {
	kv := store.NewInMemoryKV()
	ws := NewWorkspace(kv, nil)
	a := NewMemoryResearchAgent(model.NewMockModel("m", "mock"), stubSearch{}, ws)

	assert.Equal(t, "memory-researcher", a.Name())
	for _, name := range []string{"internet_search", "ls", "read_file", "write_file", "edit_file"} {
		assert.True(t, a.HasTool(name), "missing tool %s", name)
	}
}

func TestSequentialCoordinator_RunsExecutorThenSynthesizer(t *testing.T) {
	llm := model.NewMockModel("m", "mock")
	llm.Enqueue(&model.Response{Content: core.NewAssistantText("notes saved"), FinishReason: "stop"}, nil)
	llm.Enqueue(&model.Response{Content: core.NewAssistantText("final synthesis"), FinishReason: "stop"}, nil)

	kv := store.NewInMemoryKV()
	coord := NewSequentialCoordinator(llm, stubSearch{}, NewWorkspace(kv, nil))
	assert.Equal(t, "research-coordinator-simple", coord.Name())

	inv := agent.NewInvocation(context.Background(), "thread-1")
	require.NoError(t, inv.Sessions.Append("thread-1", core.NewUserText("research Go generics")))

	out, err := coord.Run(inv)
	require.NoError(t, err)
	assert.Equal(t, "final synthesis", out.Text())

	sess, _ := inv.Sessions.Get("thread-1")
	v, ok := sess.GetState("final_answer")
	require.True(t, ok)
	assert.Equal(t, "final synthesis", v)
}

func TestParallelCoordinator_Shape(t *testing.T) {
	llm := model.NewMockModel("m", "mock")
	kv := store.NewInMemoryKV()
	coord := NewParallelCoordinator(llm, stubSearch{}, NewWorkspace(kv, nil), 0)

	assert.Equal(t, "research-coordinator-specialised", coord.Name())
	for _, name := range []string{"tech-specialist", "market-analyst", "competition-analyst", "synthesizer"} {
		assert.NotNil(t, coord.FindAgent(name), "missing agent %s", name)
	}
}

func TestParallelCoordinator_EndToEnd(t *testing.T) {
	llm := model.NewMockModel("m", "mock")
	// Three specialists plus the synthesizer, scripted in order of demand.
	for i := 0; i < 3; i++ {
		llm.Enqueue(&model.Response{Content: core.NewAssistantText("specialist findings"), FinishReason: "stop"}, nil)
	}
	llm.Enqueue(&model.Response{Content: core.NewAssistantText("combined report"), FinishReason: "stop"}, nil)

	kv := store.NewInMemoryKV()
	coord := NewParallelCoordinator(llm, stubSearch{}, NewWorkspace(kv, nil), 0)

	inv := agent.NewInvocation(context.Background(), "thread-2")
	require.NoError(t, inv.Sessions.Append("thread-2", core.NewUserText("analyse the vector db market")))

	out, err := coord.Run(inv)
	require.NoError(t, err)
	assert.Equal(t, "combined report", out.Text())
}

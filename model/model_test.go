package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisard/deepresearch/core"
)

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	m.AddResponse("what is langgraph?", "a graph runtime")

	resp, err := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserText("what is langgraph?")},
	})
	require.NoError(t, err)
	assert.Equal(t, "a graph runtime", resp.Content.Text())
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestMockModel_ScriptedOutcomesTakePriority(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	scriptedErr := errors.New("boom")
	m.Enqueue(nil, scriptedErr)
	m.Enqueue(&Response{Content: core.NewAssistantText("recovered"), FinishReason: "stop"}, nil)

	_, err := m.Generate(context.Background(), Request{Contents: []core.Content{core.NewUserText("q")}})
	assert.ErrorIs(t, err, scriptedErr)

	resp, err := m.Generate(context.Background(), Request{Contents: []core.Content{core.NewUserText("q")}})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content.Text())

	// Script drained: falls back to echo behavior.
	resp, err = m.Generate(context.Background(), Request{Contents: []core.Content{core.NewUserText("q")}})
	require.NoError(t, err)
	assert.Contains(t, resp.Content.Text(), "q")
}

func TestMockModel_RecordsRequests(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	_, _ = m.Generate(context.Background(), Request{
		Instructions: "be brief",
		Contents:     []core.Content{core.NewUserText("one")},
	})
	_, _ = m.Generate(context.Background(), Request{Contents: []core.Content{core.NewUserText("two")}})

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "be brief", reqs[0].Instructions)
	assert.Equal(t, "two", reqs[1].Contents[0].Text())
}

func TestMockModel_EmptyContents(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	_, err := m.Generate(context.Background(), Request{})
	assert.Error(t, err)
}

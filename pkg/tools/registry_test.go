package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTool is a minimal Tool for registry tests.
type stubTool struct {
	name    string
	reply   string
	sources []string

	lastArgs map[string]any
	resets   int
}

func (s *stubTool) Info() ToolInfo {
	return ToolInfo{Name: s.name, Description: "stub"}
}

func (s *stubTool) Execute(_ context.Context, args map[string]any) string {
	s.lastArgs = args
	return s.reply
}

func (s *stubTool) LastSources() []string { return s.sources }
func (s *stubTool) ResetSources()         { s.resets++; s.sources = nil }

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&stubTool{name: "alpha"}))
	err := r.Register(&stubTool{name: "alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryRejectsUnnamedTool(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register(&stubTool{}))
}

func TestRegistryDefinitionsKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{name: "beta"}))
	require.NoError(t, r.Register(&stubTool{name: "alpha"}))

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "beta", defs[0].Name)
	assert.Equal(t, "alpha", defs[1].Name)
}

func TestRegistryExecuteDispatches(t *testing.T) {
	tool := &stubTool{name: "echo", reply: "tool output"}
	r := NewRegistry()
	require.NoError(t, r.Register(tool))

	args := map[string]any{"query": "hello"}
	output := r.Execute(context.Background(), "echo", args)

	assert.Equal(t, "tool output", output)
	assert.Equal(t, args, tool.lastArgs)
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()

	output := r.Execute(context.Background(), "nope", nil)

	assert.Equal(t, "Tool 'nope' not found", output)
}

func TestRegistrySourceAggregation(t *testing.T) {
	first := &stubTool{name: "first", sources: []string{"Course A - Lesson 1"}}
	second := &stubTool{name: "second", sources: []string{"Course B"}}
	r := NewRegistry()
	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	assert.Equal(t, []string{"Course A - Lesson 1", "Course B"}, r.CollectSources())

	r.ResetSources()
	assert.Equal(t, 1, first.resets)
	assert.Equal(t, 1, second.resets)
	assert.Empty(t, r.CollectSources())
}

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coursechat/coursechat/pkg/llms"
)

// Registry holds the tools offered to the model for one system. It hands
// out their API definitions, dispatches executions by name, and aggregates
// source attributions across tools after a turn.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering two tools with the same name is a
// wiring bug and fails loudly.
func (r *Registry) Register(tool Tool) error {
	name := tool.Info().Name
	if name == "" {
		return fmt.Errorf("tool must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q is already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Definitions returns the model API tool definitions in registration order.
func (r *Registry) Definitions() []llms.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llms.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Info().Definition())
	}
	return defs
}

// Execute dispatches a tool call by name. An unknown name produces
// model-facing text rather than an error, so the model can recover within
// the conversation.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) string {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		slog.Warn("model requested unknown tool", "tool", name)
		return fmt.Sprintf("Tool '%s' not found", name)
	}
	return tool.Execute(ctx, args)
}

// CollectSources gathers the source attributions recorded by all tools
// since the last reset, in registration order.
func (r *Registry) CollectSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sources []string
	for _, name := range r.order {
		sources = append(sources, r.tools[name].LastSources()...)
	}
	return sources
}

// ResetSources clears attributions on every tool.
func (r *Registry) ResetSources() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tool := range r.tools {
		tool.ResetSources()
	}
}

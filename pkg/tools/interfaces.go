package tools

import (
	"context"

	"github.com/coursechat/coursechat/pkg/llms"
)

// ToolInfo describes a tool so it can be offered to the model.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters,omitempty"`
}

// ToolParameter describes one input parameter of a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Definition converts the tool description to the model API's tool shape
// (JSON schema input_schema with properties and required lists).
func (i ToolInfo) Definition() llms.ToolDefinition {
	properties := make(map[string]any, len(i.Parameters))
	required := make([]string, 0, len(i.Parameters))

	for _, p := range i.Parameters {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return llms.ToolDefinition{
		Name:        i.Name,
		Description: i.Description,
		InputSchema: schema,
	}
}

// Tool is a capability the model can invoke mid-response. Execute returns
// model-facing text: failures are reported as text so the model can explain
// them to the user, never as Go errors that would abort the turn.
//
// Tools that quote retrieved material track the provenance of their last
// execution; LastSources returns it and ResetSources clears it so stale
// attributions never leak into the next query.
type Tool interface {
	Info() ToolInfo
	Execute(ctx context.Context, args map[string]any) string
	LastSources() []string
	ResetSources()
}

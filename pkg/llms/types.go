package llms

import "context"

// StopReason reports why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// Content block types as they appear on the wire.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ContentBlock is one segment of a message: plain text, a tool invocation
// requested by the model, or a tool result fed back to it.
type ContentBlock struct {
	Type string `json:"type"`

	// Text, for type "text".
	Text string `json:"text,omitempty"`

	// ID, Name and Input, for type "tool_use".
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// ToolUseID and Content, for type "tool_result".
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ToolResultBlock builds a tool_result block referencing the originating
// tool_use call identifier.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content}
}

// Message is a role-tagged sequence of content blocks.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// UserText builds a single-block user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// ToolDefinition describes a callable tool in the shape the model expects:
// a name, a natural-language description and a JSON Schema for the input.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// CompletionRequest is a single model invocation. Tools may be nil, in which
// case the model cannot request tool use.
type CompletionRequest struct {
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// Completion is the model's response to one invocation.
type Completion struct {
	StopReason StopReason
	Content    []ContentBlock
}

// Text concatenates all text blocks of the completion, in order.
func (c *Completion) Text() string {
	var out string
	for _, block := range c.Content {
		if block.Type == BlockText {
			out += block.Text
		}
	}
	return out
}

// ToolUses returns the tool_use blocks of the completion, in order.
func (c *Completion) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, block := range c.Content {
		if block.Type == BlockToolUse {
			uses = append(uses, block)
		}
	}
	return uses
}

// Provider is a model client. Complete blocks until the model responds or the
// context is done. Transport and API failures surface as errors; callers are
// expected to treat them as fatal for the current turn.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	ModelName() string
	Close() error
}

// Package generator drives the two-phase model protocol: one model call
// with tool definitions attached, an optional tool-execution round, and one
// follow-up call without tools that produces the final answer.
package generator

import (
	"context"
	"log/slog"

	"github.com/coursechat/coursechat/pkg/llms"
)

// systemPrompt frames every model call. Tool guidance lives here rather
// than per-request so both calls of a turn share identical instructions.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content, with a search tool for course information.

Search Tool Usage:
- Use the search tool only for questions about specific course content or detailed educational materials
- One search per query maximum
- Synthesize search results into accurate, fact-based responses
- If the search yields no results, state this clearly without offering alternatives

Response Protocol:
- General knowledge questions: answer using existing knowledge without searching
- Course-specific questions: search first, then answer
- No meta-commentary: provide direct answers only, without reasoning process, search explanations, or question-type analysis

All responses must be brief, concise and focused. Provide only the direct answer to what was asked.`

// historyLabel introduces the prior-turns block appended to the system
// prompt when a session has history.
const historyLabel = "Previous conversation:"

// ToolExecutor dispatches a model-requested tool call and returns its
// model-facing text. Failures are reported in the text, never as errors.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) string
}

// Generator produces answers through a model provider.
type Generator struct {
	provider llms.Provider
}

// New builds a Generator on a model provider.
func New(provider llms.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate runs one turn. The first model call carries the tool
// definitions; if the model requests tool use, every requested call is
// executed in order and the results are fed into a second call that carries
// the same system prompt but no tools. Tool-use requests in the second
// response are ignored. Model transport errors propagate unmodified.
func (g *Generator) Generate(ctx context.Context, query, history string, tools []llms.ToolDefinition, exec ToolExecutor) (string, error) {
	system := systemPrompt
	if history != "" {
		system += "\n\n" + historyLabel + "\n" + history
	}

	messages := []llms.Message{llms.UserText(query)}

	first, err := g.provider.Complete(ctx, llms.CompletionRequest{
		System:   system,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return "", err
	}

	if first.StopReason != llms.StopToolUse || exec == nil {
		return first.Text(), nil
	}

	messages = append(messages, llms.Message{
		Role:    llms.RoleAssistant,
		Content: first.Content,
	})

	results := make([]llms.ContentBlock, 0, 1)
	for _, use := range first.ToolUses() {
		slog.Debug("executing tool call", "tool", use.Name, "call_id", use.ID)
		output := exec.Execute(ctx, use.Name, use.Input)
		results = append(results, llms.ToolResultBlock(use.ID, output))
	}
	messages = append(messages, llms.Message{
		Role:    llms.RoleUser,
		Content: results,
	})

	// Exactly one tool round: no tools are offered on the follow-up call,
	// so the model cannot loop back into tool use.
	second, err := g.provider.Complete(ctx, llms.CompletionRequest{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	return second.Text(), nil
}

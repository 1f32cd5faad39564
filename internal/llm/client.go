// Package llm holds the language-model integration: the completion client
// abstraction, the Gemini implementation, and the planner that turns model
// output into a structured action for the assistant.
package llm

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of model-visible conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Request struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type Response struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// Client is the completion interface the planner depends on. Tests inject a
// stub; production wires the Gemini implementation.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Package chatmodel gives a flow a single Go type to call regardless of
// which LLM provider answers the request. A flow step never imports
// anthropic-sdk-go, openai-go, or google's generative-ai-go directly; it
// constructs a Model for a Provider and calls Chat.
package chatmodel

import "context"

// Role identifies a message's sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of an LLM conversation.
type Message struct {
	Role    Role
	Content string
}

// ToolSpec describes a tool the model may call, JSON-Schema shaped.
type ToolSpec struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ToolCall is a request from the model to invoke one of the offered tools.
type ToolCall struct {
	Name  string
	Input map[string]any
}

// Reply is an LLM's response to a Chat call: generated text, tool calls
// requested by the model, or both.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// Model is implemented once per provider. A step calls Chat through this
// interface so the same step body works against any provider swapped in
// via configuration.
type Model interface {
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (Reply, error)
}

// Provider names a supported backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

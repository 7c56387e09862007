package chatmodel

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicModel is a chatmodel.Model backed by Claude.
type AnthropicModel struct {
	apiKey    string
	modelName string
}

// NewAnthropic builds a Model for Anthropic's Messages API. An empty
// modelName defaults to Claude Sonnet.
func NewAnthropic(apiKey, modelName string) *AnthropicModel {
	if modelName == "" {
		modelName = "claude-sonnet-4-5-20250929"
	}
	return &AnthropicModel{apiKey: apiKey, modelName: modelName}
}

func (m *AnthropicModel) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (Reply, error) {
	if ctx.Err() != nil {
		return Reply{}, ctx.Err()
	}
	if m.apiKey == "" {
		return Reply{}, fmt.Errorf("chatmodel: anthropic API key is required")
	}

	systemPrompt, turns := splitSystemPrompt(messages)
	client := anthropicsdk.NewClient(option.WithAPIKey(m.apiKey))

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(m.modelName),
		Messages:  anthropicMessages(turns),
		MaxTokens: 4096,
	}
	if systemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: systemPrompt}}
	}
	if len(tools) > 0 {
		params.Tools = anthropicTools(tools)
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("chatmodel: anthropic: %w", err)
	}
	return anthropicReply(resp), nil
}

func splitSystemPrompt(messages []Message) (string, []Message) {
	var system string
	var rest []Message
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
			continue
		}
		rest = append(rest, msg)
	}
	return system, rest
}

func anthropicMessages(messages []Message) []anthropicsdk.MessageParam {
	out := make([]anthropicsdk.MessageParam, len(messages))
	for i, msg := range messages {
		block := anthropicsdk.NewTextBlock(msg.Content)
		if msg.Role == RoleAssistant {
			out[i] = anthropicsdk.NewAssistantMessage(block)
		} else {
			out[i] = anthropicsdk.NewUserMessage(block)
		}
	}
	return out
}

func anthropicTools(tools []ToolSpec) []anthropicsdk.ToolUnionParam {
	out := make([]anthropicsdk.ToolUnionParam, len(tools))
	for i, tool := range tools {
		var properties any
		var required []string
		if tool.Schema != nil {
			properties = tool.Schema["properties"]
			if req, ok := tool.Schema["required"].([]string); ok {
				required = req
			}
		}
		out[i] = anthropicsdk.ToolUnionParam{
			OfTool: &anthropicsdk.ToolParam{
				Name:        tool.Name,
				Description: anthropicsdk.String(tool.Description),
				InputSchema: anthropicsdk.ToolInputSchemaParam{Properties: properties, Required: required},
			},
		}
	}
	return out
}

func anthropicReply(resp *anthropicsdk.Message) Reply {
	var out Reply
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropicsdk.TextBlock:
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += b.Text
		case anthropicsdk.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: b.Name, Input: asToolInput(b.Input)})
		}
	}
	return out
}

func asToolInput(input any) map[string]any {
	if input == nil {
		return nil
	}
	if m, ok := input.(map[string]any); ok {
		return m
	}
	return map[string]any{"_raw": input}
}

package chatmodel

import (
	"context"
	"encoding/json"
	"fmt"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIModel is a chatmodel.Model backed by OpenAI's chat completions API.
type OpenAIModel struct {
	apiKey    string
	modelName string
}

// NewOpenAI builds a Model for OpenAI. An empty modelName defaults to
// gpt-4o.
func NewOpenAI(apiKey, modelName string) *OpenAIModel {
	if modelName == "" {
		modelName = "gpt-4o"
	}
	return &OpenAIModel{apiKey: apiKey, modelName: modelName}
}

func (m *OpenAIModel) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (Reply, error) {
	if ctx.Err() != nil {
		return Reply{}, ctx.Err()
	}
	if m.apiKey == "" {
		return Reply{}, fmt.Errorf("chatmodel: openai API key is required")
	}

	client := openaisdk.NewClient(option.WithAPIKey(m.apiKey))
	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(m.modelName),
		Messages: openaiMessages(messages),
	}
	if len(tools) > 0 {
		params.Tools = openaiTools(tools)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("chatmodel: openai: %w", err)
	}
	return openaiReply(resp), nil
}

func openaiMessages(messages []Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out[i] = openaisdk.SystemMessage(msg.Content)
		case RoleAssistant:
			out[i] = openaisdk.AssistantMessage(msg.Content)
		default:
			out[i] = openaisdk.UserMessage(msg.Content)
		}
	}
	return out
}

func openaiTools(tools []ToolSpec) []openaisdk.ChatCompletionToolParam {
	out := make([]openaisdk.ChatCompletionToolParam, len(tools))
	for i, tool := range tools {
		out[i] = openaisdk.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openaisdk.String(tool.Description),
				Parameters:  shared.FunctionParameters(tool.Schema),
			},
		}
	}
	return out
}

func openaiReply(resp *openaisdk.ChatCompletion) Reply {
	var out Reply
	if len(resp.Choices) == 0 {
		return out
	}
	msg := resp.Choices[0].Message
	out.Text = msg.Content
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			Name:  tc.Function.Name,
			Input: parseToolArguments(tc.Function.Arguments),
		})
	}
	return out
}

func parseToolArguments(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return map[string]any{"_raw": raw}
	}
	return parsed
}

package chatmodel

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleModel is a chatmodel.Model backed by Gemini.
type GoogleModel struct {
	apiKey    string
	modelName string
}

// NewGoogle builds a Model for Google's generative AI API. An empty
// modelName defaults to gemini-2.5-flash.
func NewGoogle(apiKey, modelName string) *GoogleModel {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &GoogleModel{apiKey: apiKey, modelName: modelName}
}

func (m *GoogleModel) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (Reply, error) {
	if ctx.Err() != nil {
		return Reply{}, ctx.Err()
	}
	if m.apiKey == "" {
		return Reply{}, fmt.Errorf("chatmodel: google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(m.apiKey))
	if err != nil {
		return Reply{}, fmt.Errorf("chatmodel: google: creating client: %w", err)
	}
	defer client.Close()

	genModel := client.GenerativeModel(m.modelName)
	if len(tools) > 0 {
		genModel.Tools = googleTools(tools)
	}

	resp, err := genModel.GenerateContent(ctx, googleParts(messages)...)
	if err != nil {
		return Reply{}, fmt.Errorf("chatmodel: google: %w", err)
	}
	return googleReply(resp), nil
}

func googleParts(messages []Message) []genai.Part {
	var parts []genai.Part
	for _, msg := range messages {
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
	}
	return parts
}

func googleTools(tools []ToolSpec) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, tool := range tools {
		decls[i] = &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  googleSchema(tool.Schema),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func googleSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}
	out := &genai.Schema{Type: genai.TypeObject}
	if props, ok := schema["properties"].(map[string]any); ok {
		properties := make(map[string]*genai.Schema, len(props))
		for key, val := range props {
			propMap, ok := val.(map[string]any)
			if !ok {
				continue
			}
			prop := &genai.Schema{}
			if typeStr, ok := propMap["type"].(string); ok {
				prop.Type = googleType(typeStr)
			}
			if desc, ok := propMap["description"].(string); ok {
				prop.Description = desc
			}
			properties[key] = prop
		}
		out.Properties = properties
	}
	if required, ok := schema["required"].([]string); ok {
		out.Required = required
	}
	return out
}

func googleType(typeStr string) genai.Type {
	switch typeStr {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

func googleReply(resp *genai.GenerateContentResponse) Reply {
	var out Reply
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += string(p)
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: p.Name, Input: p.Args})
		}
	}
	return out
}

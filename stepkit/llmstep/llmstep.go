// Package llmstep is a reference step procedure for a durable node that
// calls an LLM. The flow calls Ask exactly as it would any other step: a
// plain function taking a prompt and returning a result. The model itself
// is not constructed inline (unlike httpstep's client), since which
// provider answers is a deployment choice, not something the flow source
// should hardcode: the host program sets Default once at startup (for
// example from flowcraftcfg's Config.BuildModel), and every Ask call after
// that uses it.
package llmstep

import (
	"context"
	"fmt"

	"github.com/flowcraft-dev/flowcraft-go/stepkit/chatmodel"
)

// Default is the model Ask calls through. Unset until the host program
// configures it (cmd/flowcraft's build command sets it to the model
// flowcraftcfg builds from flowcraft.yaml's llm provider/model/api-key
// settings).
var Default chatmodel.Model

// Ask sends a single user-role prompt to Default and returns its reply.
//
//	reply, err := llmstep.Ask(ctx, "Summarize this order", nil)
func Ask(ctx context.Context, prompt string, tools []chatmodel.ToolSpec) (chatmodel.Reply, error) {
	return Converse(ctx, []chatmodel.Message{{Role: chatmodel.RoleUser, Content: prompt}}, tools)
}

// Converse sends a full message history to Default, for steps that need
// to carry prior turns (system prompt, earlier assistant replies) rather
// than a single user prompt.
func Converse(ctx context.Context, messages []chatmodel.Message, tools []chatmodel.ToolSpec) (chatmodel.Reply, error) {
	if Default == nil {
		return chatmodel.Reply{}, fmt.Errorf("llmstep: no model configured; set llmstep.Default before running a blueprint")
	}
	return Default.Chat(ctx, messages, tools)
}

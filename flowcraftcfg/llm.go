package flowcraftcfg

import (
	"fmt"

	"github.com/flowcraft-dev/flowcraft-go/stepkit/chatmodel"
)

// BuildModel constructs the chatmodel.Model an LLMConfig describes, or nil
// if no LLM config was set (a project with no LLM-calling steps).
func (c *Config) BuildModel() (chatmodel.Model, error) {
	if c.LLM == nil {
		return nil, nil
	}
	key := c.LLM.resolveKey()
	if key == "" {
		return nil, fmt.Errorf("flowcraftcfg: no API key resolved for llm provider %q", c.LLM.Provider)
	}
	model, err := chatmodel.New(chatmodel.Provider(c.LLM.Provider), key, c.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("flowcraftcfg: %w", err)
	}
	return model, nil
}

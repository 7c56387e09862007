package chatmodel

import "fmt"

// New builds the Model for a configured provider, so a flow or config file
// can select a backend by name rather than importing a specific adapter.
func New(provider Provider, apiKey, modelName string) (Model, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropic(apiKey, modelName), nil
	case ProviderOpenAI:
		return NewOpenAI(apiKey, modelName), nil
	case ProviderGoogle:
		return NewGoogle(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("chatmodel: unknown provider %q", provider)
	}
}

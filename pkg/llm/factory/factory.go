package factory

import (
	"fmt"

	"policy-intel-be/pkg/llm"
	"policy-intel-be/pkg/llm/ollama"
	"policy-intel-be/pkg/llm/openai"
)

// NewLLMProvider selects a backend by name. Supported: "ollama", "openai".
func NewLLMProvider(providerName, modelName, ollamaBaseURL, openAIKey string) (llm.Provider, error) {
	switch providerName {
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(openAIKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", providerName)
	}
}

package llm

import (
	"context"
	"fmt"

	"github.com/automenta/mcr/internal/config"
	"github.com/automenta/mcr/internal/logging"
)

// NewFromConfig builds the provider client selected by configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	llmCfg := cfg.LLM
	logging.LLM("Creating LLM client: provider=%s model=%s", llmCfg.Provider, llmCfg.Model)

	switch llmCfg.Provider {
	case "openai", "openrouter", "":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  llmCfg.APIKey,
			BaseURL: llmCfg.BaseURL,
			Model:   llmCfg.Model,
			Timeout: cfg.LLMTimeout(),
		}), nil
	case "anthropic":
		return NewAnthropicClient(AnthropicConfig{
			APIKey:  llmCfg.APIKey,
			BaseURL: llmCfg.BaseURL,
			Model:   llmCfg.Model,
			Timeout: cfg.LLMTimeout(),
		}), nil
	case "gemini":
		return NewGeminiClient(ctx, llmCfg.APIKey, llmCfg.Model)
	case "mock":
		return NewStub(llmCfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", llmCfg.Provider)
	}
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/types"
)

// GeminiClient implements Client using the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends a prompt pair and returns the completion with token cost.
func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*Response, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, types.NewError(types.ErrLLMRequestFailed, "GenAI request failed: %v", err)
	}

	var cost types.Cost
	cost.Calls = 1
	if result.UsageMetadata != nil {
		cost.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		cost.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
		cost.TotalTokens = int(result.UsageMetadata.TotalTokenCount)
	}

	text := strings.TrimSpace(result.Text())
	logging.LLMDebug("gemini completion: model=%s total_tokens=%d", c.model, cost.TotalTokens)

	return &Response{Text: text, Cost: cost}, nil
}

// Model returns the configured model identifier.
func (c *GeminiClient) Model() string {
	return c.model
}

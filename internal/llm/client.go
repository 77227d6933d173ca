// Package llm provides the gateway to LLM providers. Each provider adapter
// turns a (system, user) prompt pair into text plus token cost; everything
// above this package is provider-agnostic.
package llm

import (
	"context"

	"github.com/automenta/mcr/internal/types"
)

// Response is the result of a single completion call.
type Response struct {
	Text string
	Cost types.Cost
}

// Client is the provider contract. Text may legitimately be empty; callers
// map that to LLM_EMPTY_RESPONSE.
type Client interface {
	// Generate sends a prompt pair and returns the completion with cost.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*Response, error)

	// Model returns the provider model identifier, used as the llm_model_id
	// key in routing and performance lookups.
	Model() string
}

// Package embedding provides text embedding engines for the semantic input
// router. Engines are interchangeable behind a small interface so the router
// does not care whether vectors come from a local Ollama daemon or the Gemini
// API.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Engine produces dense vector embeddings for text.
type Engine interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the vector size this engine produces.
	Dimensions() int

	// Name identifies the engine for logging and cache keys.
	Name() string
}

// Config selects and parameterizes an embedding engine.
type Config struct {
	Provider string `yaml:"provider"` // "ollama" or "genai"
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"` // ollama only
	APIKey   string `yaml:"api_key"`  // genai only
}

// NewEngine constructs the engine selected by cfg.
func NewEngine(ctx context.Context, cfg Config) (Engine, error) {
	switch cfg.Provider {
	case "ollama", "":
		return NewOllamaEngine(cfg.Endpoint, cfg.Model), nil
	case "genai", "gemini":
		return NewGenAIEngine(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero magnitude or the lengths differ.
// The result is clamped to [-1, 1] to absorb float rounding.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

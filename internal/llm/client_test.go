package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automenta/mcr/internal/config"
	"github.com/automenta/mcr/internal/types"
)

func TestOpenAIGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  man(socrates).  "}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16},
		})
	}))
	defer server.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/v1", Model: "gpt-4o-mini"})
	resp, err := c.Generate(context.Background(), "translate", "Socrates is a man.")
	require.NoError(t, err)
	assert.Equal(t, "man(socrates).", resp.Text)
	assert.Equal(t, types.Cost{PromptTokens: 12, CompletionTokens: 4, TotalTokens: 16, Calls: 1}, resp.Cost)
}

func TestOpenAIGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL, Model: "m"})
	_, err := c.Generate(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Equal(t, types.ErrLLMRequestFailed, types.AsMCRError(err).Code)
}

func TestOpenAIRequiresAPIKey(t *testing.T) {
	c := NewOpenAIClient(OpenAIConfig{Model: "m"})
	_, err := c.Generate(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Equal(t, types.ErrLLMRequestFailed, types.AsMCRError(err).Code)
}

func TestAnthropicGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "translate", req.System)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "mortal(socrates)."},
			},
			"usage": map[string]int{"input_tokens": 20, "output_tokens": 6},
		})
	}))
	defer server.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL, Model: "claude"})
	resp, err := c.Generate(context.Background(), "translate", "Is Socrates mortal?")
	require.NoError(t, err)
	assert.Equal(t, "mortal(socrates).", resp.Text)
	assert.Equal(t, 26, resp.Cost.TotalTokens)
	assert.Equal(t, 1, resp.Cost.Calls)
}

func TestStubMatchesBySubstring(t *testing.T) {
	stub := NewStub("m").
		Respond("SIR", "sir-response").
		Respond("query", "query-response").
		RespondDefault("fallback")

	resp, err := stub.Generate(context.Background(), "emit SIR records", "text")
	require.NoError(t, err)
	assert.Equal(t, "sir-response", resp.Text)

	resp, err = stub.Generate(context.Background(), "", "translate the query please")
	require.NoError(t, err)
	assert.Equal(t, "query-response", resp.Text)

	resp, err = stub.Generate(context.Background(), "", "unrelated")
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)

	assert.Len(t, stub.Calls(), 3)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "mock"
	cfg.LLM.Model = "scripted"

	client, err := NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "scripted", client.Model())

	cfg.LLM.Provider = "smoke-signals"
	_, err = NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

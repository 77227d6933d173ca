package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.SessionStore.Type)
	assert.Equal(t, "SIR-R1", cfg.TranslationStrategy)
	assert.Equal(t, "keyword", cfg.Router.Variant)
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout())
	assert.Equal(t, 30*time.Second, cfg.ReasonerTimeout())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  provider: anthropic
  model: claude-sonnet-4-20250514
  timeout: 45s
session_store:
  type: file
  directory: ` + dir + `
translation_strategy: Direct-S1
debug_level: verbose
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "file", cfg.SessionStore.Type)
	assert.Equal(t, "Direct-S1", cfg.TranslationStrategy)
	assert.Equal(t, "verbose", cfg.DebugLevel)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MCR_LLM_API_KEY", "sk-test")
	t.Setenv("MCR_LLM_PROVIDER", "gemini")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.SessionStore.Type = "file"
	assert.Error(t, cfg.Validate(), "file store without directory must fail")

	cfg = Default()
	cfg.SessionStore.Type = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DebugLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.TranslationStrategy = ""
	assert.Error(t, cfg.Validate())
}

// Package config loads MCR configuration from YAML with environment
// variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all MCR configuration.
type Config struct {
	// LLM provider used by the translation pipelines
	LLM LLMConfig `yaml:"llm"`

	// Embedding engine for the semantic router
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Session persistence
	SessionStore SessionStoreConfig `yaml:"session_store"`

	// Reasoner engine
	Reasoner ReasonerConfig `yaml:"reasoner"`

	// Input router
	Router RouterConfig `yaml:"router"`

	// Ontology directory (optional)
	OntologyDir string `yaml:"ontology_dir"`

	// TranslationStrategy is the system default base strategy ID
	TranslationStrategy string `yaml:"translation_strategy"`

	// DebugLevel controls debugInfo fidelity: none | basic | verbose
	DebugLevel string `yaml:"debug_level"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic, gemini, mock
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"` // per-call timeout, e.g. "120s"
}

// EmbeddingConfig configures the embedding engine.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // ollama, genai, none
	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`
	GenAIAPIKey    string `yaml:"genai_api_key"`
	GenAIModel     string `yaml:"genai_model"`
}

// SessionStoreConfig configures session persistence.
type SessionStoreConfig struct {
	Type      string `yaml:"type"` // memory | file
	Directory string `yaml:"directory"`
}

// ReasonerConfig configures the symbolic engine.
type ReasonerConfig struct {
	Provider     string `yaml:"provider"`      // mangle
	QueryTimeout string `yaml:"query_timeout"` // e.g. "30s"
}

// RouterConfig configures input routing.
type RouterConfig struct {
	Variant string `yaml:"variant"` // keyword | semantic | none
	PerfDB  string `yaml:"perf_db"` // path to the performance_results SQLite DB
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Directory  string          `yaml:"directory"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  "120s",
		},
		Embedding: EmbeddingConfig{
			Provider:       "none",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
			GenAIModel:     "gemini-embedding-001",
		},
		SessionStore: SessionStoreConfig{
			Type: "memory",
		},
		Reasoner: ReasonerConfig{
			Provider:     "mangle",
			QueryTimeout: "30s",
		},
		Router: RouterConfig{
			Variant: "keyword",
		},
		TranslationStrategy: "SIR-R1",
		DebugLevel:          "basic",
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, layering file values over defaults
// and environment overrides over both. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets secrets come from the environment instead of disk.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MCR_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("MCR_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("MCR_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("MCR_LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("MCR_EMBEDDING_API_KEY"); v != "" {
		c.Embedding.GenAIAPIKey = v
	}
	if v := os.Getenv("MCR_SESSION_DIR"); v != "" {
		c.SessionStore.Type = "file"
		c.SessionStore.Directory = v
	}
	if v := os.Getenv("MCR_PERF_DB"); v != "" {
		c.Router.PerfDB = v
	}
}

// Validate checks settings that would otherwise fail deep inside the stack.
func (c *Config) Validate() error {
	switch c.SessionStore.Type {
	case "memory":
	case "file":
		if c.SessionStore.Directory == "" {
			return fmt.Errorf("session_store.directory required for file store")
		}
	default:
		return fmt.Errorf("unknown session_store.type %q (use memory or file)", c.SessionStore.Type)
	}

	switch c.DebugLevel {
	case "", "none", "basic", "verbose":
	default:
		return fmt.Errorf("unknown debug_level %q (use none, basic, or verbose)", c.DebugLevel)
	}

	if c.TranslationStrategy == "" {
		return fmt.Errorf("translation_strategy must not be empty")
	}
	return nil
}

// LLMTimeout parses the per-call LLM timeout, defaulting to 120s.
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// ReasonerTimeout parses the per-query reasoner timeout, defaulting to 30s.
func (c *Config) ReasonerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Reasoner.QueryTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// DefaultPath returns the conventional config location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mcr.yaml"
	}
	return filepath.Join(home, ".mcr", "config.yaml")
}

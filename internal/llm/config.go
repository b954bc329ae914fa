package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Providers.
const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Providers lists the providers to generate with, in preference
	// order. The first entry is tried first by the sequential strategy
	// and preferred by the parallel one.
	Providers []string `yaml:"providers"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Ollama     OllamaConfig     `yaml:"ollama"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-flash-lite"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.0-flash-exp"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"

	// StrictSchema sends the candidate schema as json_schema. Many routed
	// models only honour json_object, so it is off by default.
	StrictSchema bool `yaml:"strict_schema"`

	// Referer and Title identify the app on OpenRouter's dashboards.
	Referer string `yaml:"referer"`
	Title   string `yaml:"title"` // Default: "wikiquiz"
}

// OllamaConfig holds configuration for a local Ollama server.
type OllamaConfig struct {
	ServerURL string `yaml:"server_url"` // Default: "http://localhost:11434"
	Model     string `yaml:"model"`      // Default: "llama3.2"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Providers: []string{ProviderOpenAI, ProviderGemini},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash-lite",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
			Title: "wikiquiz",
		},
		Ollama: OllamaConfig{
			ServerURL: "http://localhost:11434",
			Model:     "llama3.2",
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ApplyEnv overrides cfg with values from environment variables. Both the
// WIKIQUIZ_-prefixed names and the standard vendor key names are honored;
// the prefixed names win.
func ApplyEnv(cfg *Config) {
	if p := os.Getenv("WIKIQUIZ_PROVIDERS"); p != "" {
		cfg.Providers = splitList(p)
	}

	setFirst(&cfg.OpenAI.APIKey, "WIKIQUIZ_OPENAI_API_KEY", "OPENAI_API_KEY")
	setFirst(&cfg.OpenAI.Model, "WIKIQUIZ_OPENAI_MODEL")
	setFirst(&cfg.OpenAI.BaseURL, "WIKIQUIZ_OPENAI_BASE_URL")

	setFirst(&cfg.Gemini.APIKey, "WIKIQUIZ_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	setFirst(&cfg.Gemini.Model, "WIKIQUIZ_GEMINI_MODEL")

	setFirst(&cfg.Anthropic.APIKey, "WIKIQUIZ_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	setFirst(&cfg.Anthropic.Model, "WIKIQUIZ_ANTHROPIC_MODEL")

	setFirst(&cfg.OpenRouter.APIKey, "WIKIQUIZ_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	setFirst(&cfg.OpenRouter.Model, "WIKIQUIZ_OPENROUTER_MODEL")

	setFirst(&cfg.Ollama.ServerURL, "WIKIQUIZ_OLLAMA_HOST", "OLLAMA_HOST")
	setFirst(&cfg.Ollama.Model, "WIKIQUIZ_OLLAMA_MODEL")
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// Validate checks that every selected provider has its required settings.
func (c Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one LLM provider is required")
	}
	seen := make(map[string]bool)
	for _, p := range c.Providers {
		if seen[p] {
			return fmt.Errorf("LLM provider %q listed twice", p)
		}
		seen[p] = true
		if err := c.validateProvider(p); err != nil {
			return err
		}
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}
	return nil
}

func (c Config) validateProvider(name string) error {
	switch name {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY or GOOGLE_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("a model is required for the ollama provider")
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", name)
	}
	return nil
}

func setFirst(dst *string, keys ...string) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			*dst = v
			return
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

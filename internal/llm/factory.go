package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/wikiquiz/internal/store"
	"github.com/rs/zerolog"
)

// NamedProvider pairs a provider with the configuration name it was
// built from.
type NamedProvider struct {
	Name     string
	Provider Provider
}

// NewProvider creates the named Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, name string, cfg Config, eventRepo store.EventRepo, logger zerolog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch name {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderOllama:
		base, err = NewOllamaProvider(cfg.Ollama)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}

	// Wrap with middleware: caller → timeout → retry → logging → base
	logged := WithLogging(base, name, eventRepo, logger)
	retried := WithRetry(logged, cfg.Retry)

	return WithTimeout(retried, cfg.Timeout), nil
}

// NewProviders builds every provider listed in cfg.Providers, in order.
func NewProviders(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger zerolog.Logger) ([]NamedProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := make([]NamedProvider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		p, err := NewProvider(ctx, name, cfg, eventRepo, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedProvider{Name: name, Provider: p})
	}
	return out, nil
}

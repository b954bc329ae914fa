package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaProvider implements Provider against a local Ollama server through
// langchaingo. Ollama has no native schema enforcement, so JSON mode is
// requested and the reply is validated against the schema afterwards.
type OllamaProvider struct {
	client llms.Model
	model  string
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create Ollama client: %w", err)
	}

	return &OllamaProvider{client: client, model: cfg.Model}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := buildOllamaMessages(req)

	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Schema != nil {
		opts = append(opts, llms.WithJSONMode())
	}

	result, err := p.client.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, mapOllamaError(err)
	}
	if len(result.Choices) == 0 {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("no choices in Ollama response"),
		}
	}

	choice := result.Choices[0]
	content, err := conformResponse(req.Schema, json.RawMessage(choice.Content))
	if err != nil {
		return nil, err
	}

	in := intInfo(choice.GenerationInfo, "PromptTokens")
	out := intInfo(choice.GenerationInfo, "CompletionTokens")

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  in,
			OutputTokens: out,
			TotalTokens:  in + out,
		},
		Model:      p.model,
		StopReason: mapOllamaStopReason(choice.StopReason),
	}, nil
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

func buildOllamaMessages(req Request) []llms.MessageContent {
	var out []llms.MessageContent
	if req.System != "" {
		out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		t := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			t = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(t, m.Content))
	}
	return out
}

func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func mapOllamaStopReason(reason string) string {
	if reason == "length" {
		return "max_tokens"
	}
	return "end"
}

func mapOllamaError(err error) error {
	if isContextErr(err) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}

package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/wikiquiz/internal/llm"
)

// Purposes recorded with every llm_requests row.
const (
	PurposeQuestionGen  = "question-gen"
	PurposeGenerateOnce = "generate-once"
)

// WithPurpose labels the LLM requests made under ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return llm.WithPurpose(ctx, purpose)
}

// LLMGenerator implements CandidateGenerator using an LLM provider.
type LLMGenerator struct {
	name     string
	provider llm.Provider
	config   GeneratorConfig
	slicer   *ContextSlicer
}

// NewLLMGenerator creates a generator tagged name. A nil slicer uses the
// configured slice policy with the default random source.
func NewLLMGenerator(name string, provider llm.Provider, cfg GeneratorConfig, slicer *ContextSlicer) *LLMGenerator {
	if slicer == nil {
		slicer = NewContextSlicer(cfg.Slice, nil)
	}
	return &LLMGenerator{name: name, provider: provider, config: cfg, slicer: slicer}
}

func (g *LLMGenerator) Name() string { return g.name }

// Generate prompts the provider with a slice of the article and parses
// the structured reply. The candidate is not validated here.
func (g *LLMGenerator) Generate(ctx context.Context, article Article) (*Candidate, error) {
	ctx = llm.WithDefaultPurpose(ctx, PurposeQuestionGen)

	slice := g.slicer.PickSlice(article.Text)

	req := llm.Request{
		System:      buildSystemPrompt(article),
		Messages:    []llm.Message{llm.UserMessage(buildUserMessage(article, slice))},
		Schema:      CandidateSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	content, model, err := g.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	c, err := ParseCandidate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: parse response: %w", g.name, err)
	}
	c.Provider = g.name
	c.Model = model
	c.ContextSlice = slice
	return c, nil
}

// complete returns the reply content and the model that produced it. A
// reply the provider rejected against CandidateSchema is still handed on
// when ParseCandidate can read it: some models answer with correct_index
// or a "sets" envelope, and the validator chain judges the result anyway.
func (g *LLMGenerator) complete(ctx context.Context, req llm.Request) (json.RawMessage, string, error) {
	resp, err := g.provider.Generate(ctx, req)
	if err == nil {
		return resp.Content, resp.Model, nil
	}

	var inv *llm.ErrInvalidResponse
	if errors.As(err, &inv) && len(inv.Content) > 0 {
		if _, perr := ParseCandidate(inv.Content); perr == nil {
			return inv.Content, g.provider.ModelID(), nil
		}
	}
	return nil, "", fmt.Errorf("%s generation failed: %w", g.name, err)
}

package llm

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ModelCost is a model's list price in USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of one or more calls.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost prices the model IDs recorded in llm_requests. It accepts
// OpenRouter slugs ("google/gemini-2.0-flash-001"), dated snapshots
// ("gpt-4o-mini-2024-07-18") and treats ":free" routes and local Ollama
// models as free. Unknown models return nil.
func LookupCost(modelID string) *ModelCost {
	id := strings.ToLower(strings.TrimSpace(modelID))
	if id == "" || id == "mock" {
		return nil
	}
	if strings.HasSuffix(id, ":free") {
		return &ModelCost{}
	}
	if _, model, ok := strings.Cut(id, "/"); ok {
		id = model
	}
	id = strings.TrimPrefix(id, "models/")

	if c, ok := modelCosts[id]; ok {
		return &c
	}
	// Longest listed prefix wins, so "gpt-4o-mini-2024-07-18" is not
	// priced as "gpt-4o".
	for _, name := range costPrefixes {
		if strings.HasPrefix(id, name) {
			c := modelCosts[name]
			return &c
		}
	}
	if isLocalModel(id) {
		return &ModelCost{}
	}
	return nil
}

func isLocalModel(id string) bool {
	for _, family := range []string{"llama", "mistral", "qwen", "gemma", "phi"} {
		if strings.HasPrefix(id, family) {
			return true
		}
	}
	return false
}

// modelCosts lists the models the generator is configured with in
// practice. Prices from models.dev, 2026-02.
var modelCosts = map[string]ModelCost{
	// OpenAI
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4o":       {2.5, 10},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},

	// Google
	"gemini-2.0-flash-lite":    {0.075, 0.3},
	"gemini-2.0-flash":         {0.1, 0.4},
	"gemini-2.5-flash-lite":    {0.1, 0.4},
	"gemini-2.5-flash":         {0.3, 2.5},
	"gemini-flash-lite-latest": {0.1, 0.4},

	// Anthropic
	"claude-3-5-haiku":  {0.8, 4},
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
}

// costPrefixes holds the keys of modelCosts, longest first.
var costPrefixes = func() []string {
	keys := lo.Keys(modelCosts)
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

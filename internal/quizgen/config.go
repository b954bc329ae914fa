package quizgen

import "fmt"

// FilterConfig holds the tunable quality thresholds.
type FilterConfig struct {
	// TitleOverlapRatio is the share of title words an answer may not
	// reach. Valid range (0, 1]; values around 0.15 are lenient, 0.5 strict.
	TitleOverlapRatio float64 `yaml:"title_overlap_ratio"`

	// Distractors configures the numeric distractor check.
	Distractors DistractorThresholds `yaml:"numeric_distractors"`

	// MetaFragments maps a language code to meta-reference fragments.
	MetaFragments map[string][]string `yaml:"meta_fragments"`
}

// DefaultFilterConfig returns the standard thresholds.
func DefaultFilterConfig() FilterConfig {
	frags := make(map[string][]string, len(DefaultMetaFragments))
	for lang, list := range DefaultMetaFragments {
		frags[lang] = append([]string(nil), list...)
	}
	return FilterConfig{
		TitleOverlapRatio: DefaultTitleOverlapRatio,
		Distractors:       DefaultDistractorThresholds(),
		MetaFragments:     frags,
	}
}

// Validate checks the thresholds for usable values.
func (c FilterConfig) Validate() error {
	if c.TitleOverlapRatio <= 0 || c.TitleOverlapRatio > 1 {
		return fmt.Errorf("title_overlap_ratio must be in (0, 1], got %v", c.TitleOverlapRatio)
	}
	return c.Distractors.Validate()
}

// SliceConfig controls how long articles are cut down before prompting.
type SliceConfig struct {
	// MinLength is the rune length below which text is never sliced.
	MinLength int `yaml:"min_length"`

	// WindowMin and WindowSpread give the window length range
	// [WindowMin, WindowMin+WindowSpread).
	WindowMin    int `yaml:"window_min"`
	WindowSpread int `yaml:"window_spread"`

	// FullTextChance is the probability of sending the full text even
	// when it is long enough to slice.
	FullTextChance float64 `yaml:"full_text_chance"`
}

// DefaultSliceConfig returns the 3500 / [3000, 3600) / 0.5 policy.
func DefaultSliceConfig() SliceConfig {
	return SliceConfig{
		MinLength:      3500,
		WindowMin:      3000,
		WindowSpread:   600,
		FullTextChance: 0.5,
	}
}

// Validate checks the slicing bounds.
func (c SliceConfig) Validate() error {
	if c.WindowMin <= 0 || c.WindowSpread <= 0 {
		return fmt.Errorf("slice window_min and window_spread must be positive")
	}
	if c.FullTextChance < 0 || c.FullTextChance > 1 {
		return fmt.Errorf("slice full_text_chance must be in [0, 1], got %v", c.FullTextChance)
	}
	return nil
}

// GeneratorConfig controls the behavior of the LLMGenerator.
type GeneratorConfig struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`

	Slice SliceConfig `yaml:"slice"`
}

// DefaultGeneratorConfig returns a GeneratorConfig with recommended defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxTokens:   400,
		Temperature: 0.7,
		Slice:       DefaultSliceConfig(),
	}
}

// Validate checks the generator settings.
func (c GeneratorConfig) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("generator max_tokens must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("generator temperature must be in [0, 1], got %v", c.Temperature)
	}
	return c.Slice.Validate()
}

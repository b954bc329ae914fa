package quizcache

import (
	"fmt"
	"time"
)

// Strategy selects how the generators of one round are combined.
type Strategy string

const (
	// SequentialFallback calls generators in preference order and stops at
	// the first one that returns a candidate.
	SequentialFallback Strategy = "sequential-fallback"

	// ParallelPreferFirst calls every generator concurrently, waits for all
	// of them and keeps the most preferred candidate.
	ParallelPreferFirst Strategy = "parallel-prefer-first"
)

// Config holds the cache-warmth policy of the orchestrator.
type Config struct {
	// LookupLimit caps how many cached questions are read per request.
	LookupLimit int `yaml:"lookup_limit"`

	// SufficiencyThreshold is the cached count at which generation is skipped.
	SufficiencyThreshold int `yaml:"sufficiency_threshold"`

	// TargetPoolSize is the count generation tries to fill up to; a request
	// with n cached questions runs TargetPoolSize-n rounds.
	TargetPoolSize int `yaml:"target_pool_size"`

	Strategy Strategy `yaml:"strategy"`

	// AttemptsPerRound is how many times a round is retried when it yields
	// no accepted candidate.
	AttemptsPerRound int `yaml:"attempts_per_round"`

	// ProviderTimeout bounds every single generator call. Zero disables it.
	ProviderTimeout time.Duration `yaml:"provider_timeout"`

	// RoundConcurrency is how many rounds may run at once.
	RoundConcurrency int `yaml:"round_concurrency"`

	// NearDuplicateRatio drops an accepted question whose normalized text is
	// within this Levenshtein ratio of one already pooled. Zero disables it.
	NearDuplicateRatio float64 `yaml:"near_duplicate_ratio"`
}

// DefaultConfig returns the policy used by the game front-end.
func DefaultConfig() Config {
	return Config{
		LookupLimit:          12,
		SufficiencyThreshold: 8,
		TargetPoolSize:       12,
		Strategy:             SequentialFallback,
		AttemptsPerRound:     1,
		ProviderTimeout:      45 * time.Second,
		RoundConcurrency:     1,
		NearDuplicateRatio:   0.1,
	}
}

// Validate checks the policy for values the orchestrator cannot honour.
func (c Config) Validate() error {
	if c.LookupLimit <= 0 {
		return fmt.Errorf("lookup_limit must be positive, got %d", c.LookupLimit)
	}
	if c.SufficiencyThreshold < 0 {
		return fmt.Errorf("sufficiency_threshold must not be negative, got %d", c.SufficiencyThreshold)
	}
	if c.SufficiencyThreshold > c.LookupLimit {
		return fmt.Errorf("sufficiency_threshold (%d) cannot exceed lookup_limit (%d)", c.SufficiencyThreshold, c.LookupLimit)
	}
	if c.TargetPoolSize < 0 {
		return fmt.Errorf("target_pool_size must not be negative, got %d", c.TargetPoolSize)
	}
	switch c.Strategy {
	case SequentialFallback, ParallelPreferFirst:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.AttemptsPerRound < 1 {
		return fmt.Errorf("attempts_per_round must be at least 1, got %d", c.AttemptsPerRound)
	}
	if c.ProviderTimeout < 0 {
		return fmt.Errorf("provider_timeout must not be negative, got %s", c.ProviderTimeout)
	}
	if c.RoundConcurrency < 1 {
		return fmt.Errorf("round_concurrency must be at least 1, got %d", c.RoundConcurrency)
	}
	if c.NearDuplicateRatio < 0 || c.NearDuplicateRatio >= 1 {
		return fmt.Errorf("near_duplicate_ratio must be in [0, 1), got %v", c.NearDuplicateRatio)
	}
	return nil
}

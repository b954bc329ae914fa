package quizgen

import "math/rand/v2"

// RandSource is the randomness used for slicing and sampling.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// DefaultRand returns a RandSource backed by the math/rand/v2 top-level
// functions, which are safe for concurrent use.
func DefaultRand() RandSource { return globalRand{} }

// ContextSlicer bounds prompt size by sending a random window of long
// articles. Lengths are measured in runes.
type ContextSlicer struct {
	cfg SliceConfig
	rnd RandSource
}

// NewContextSlicer creates a slicer. A nil rnd uses DefaultRand.
func NewContextSlicer(cfg SliceConfig, rnd RandSource) *ContextSlicer {
	if rnd == nil {
		rnd = DefaultRand()
	}
	return &ContextSlicer{cfg: cfg, rnd: rnd}
}

// PickSlice returns text unchanged when it is shorter than MinLength.
// Otherwise it returns the full text with probability FullTextChance, or
// a window of [WindowMin, WindowMin+WindowSpread) runes at a uniformly
// random offset.
func (s *ContextSlicer) PickSlice(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < s.cfg.MinLength {
		return text
	}
	if s.rnd.Float64() < s.cfg.FullTextChance {
		return text
	}

	window := s.cfg.WindowMin + s.rnd.IntN(s.cfg.WindowSpread)
	if window >= n {
		return text
	}
	start := s.rnd.IntN(n - window + 1)
	return string(runes[start : start+window])
}

package quizgen

import "context"

// CandidateGenerator produces raw, unvalidated candidates from one
// backend. Ordinary provider failures (rate limits, timeouts, malformed
// output) are reported as errors and mean "no candidate this round"; the
// caller decides whether to fall back.
type CandidateGenerator interface {
	// Name returns the provider tag recorded on generated candidates,
	// e.g. "openai" or "gemini".
	Name() string

	// Generate produces one candidate for the article.
	Generate(ctx context.Context, article Article) (*Candidate, error)
}

package quizcache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/wikiquiz/internal/quizgen"
)

var errProviderDown = errors.New("provider unavailable")

// fakeStore is an in-memory QuestionStore with call accounting.
type fakeStore struct {
	mu          sync.Mutex
	cached      []*quizgen.AcceptedQuestion
	lookupErr   error
	insertErr   error
	lookups     int
	insertCalls int
	rows        map[string]*quizgen.AcceptedQuestion
}

func newFakeStore(cached ...*quizgen.AcceptedQuestion) *fakeStore {
	s := &fakeStore{rows: make(map[string]*quizgen.AcceptedQuestion)}
	for _, q := range cached {
		s.cached = append(s.cached, q)
		s.rows[q.QuestionHash] = q
	}
	return s
}

func (s *fakeStore) Lookup(_ context.Context, articleHash, lang string, limit int) ([]*quizgen.AcceptedQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	var out []*quizgen.AcceptedQuestion
	for _, q := range s.cached {
		if q.ArticleHash == articleHash && q.Lang == lang {
			out = append(out, q)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) Insert(_ context.Context, q *quizgen.AcceptedQuestion) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, ok := s.rows[q.QuestionHash]; ok {
		return false, nil
	}
	s.rows[q.QuestionHash] = q
	s.cached = append(s.cached, q)
	return true, nil
}

func (s *fakeStore) inserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCalls
}

// fakeGenerator returns whatever fn produces for the n-th call (1-based).
type fakeGenerator struct {
	name string
	fn   func(ctx context.Context, call int) (*quizgen.Candidate, error)

	mu    sync.Mutex
	calls int
}

func (g *fakeGenerator) Name() string { return g.name }

func (g *fakeGenerator) Generate(ctx context.Context, _ quizgen.Article) (*quizgen.Candidate, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	return g.fn(ctx, n)
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// failingGenerator always reports a provider failure.
func failingGenerator(name string) *fakeGenerator {
	return &fakeGenerator{name: name, fn: func(context.Context, int) (*quizgen.Candidate, error) {
		return nil, errProviderDown
	}}
}

// nullGenerator always returns no candidate and no error.
func nullGenerator(name string) *fakeGenerator {
	return &fakeGenerator{name: name, fn: func(context.Context, int) (*quizgen.Candidate, error) {
		return nil, nil
	}}
}

// distinctGenerator returns a valid, textually distinct candidate per call.
func distinctGenerator(name string) *fakeGenerator {
	return &fakeGenerator{name: name, fn: func(_ context.Context, n int) (*quizgen.Candidate, error) {
		return distinctCandidate(name, n), nil
	}}
}

var questionStems = []string{
	"What country is Prague the capital of?",
	"Which state has Prague as its seat of government?",
	"Prague serves as the capital city of which nation?",
	"In which European republic is Prague the largest city?",
	"Which country's parliament sits in Prague?",
	"Prague is the political centre of which state?",
	"Where is Prague located as national capital?",
	"Which nation governs from Prague Castle?",
	"Of which modern country is Prague the chief city?",
	"Prague hosts the government of which country?",
	"Which central European country lists Prague as capital?",
	"The capital Prague belongs to which sovereign state?",
	"Which land has its president residing in Prague?",
	"Prague became capital of which republic in 1993?",
}

func distinctCandidate(provider string, n int) *quizgen.Candidate {
	q := questionStems[(n-1)%len(questionStems)]
	if n > len(questionStems) {
		q = fmt.Sprintf("%s Round %d of %s.", q, n, provider)
	}
	return &quizgen.Candidate{
		Question:     q,
		Answers:      []string{"Czech Republic", "Germany", "Austria"},
		CorrectIndex: 0,
		Provider:     provider,
	}
}

func rejectedCandidate() *quizgen.Candidate {
	return &quizgen.Candidate{
		Question:     "What is Prague?",
		Answers:      []string{"Prague", "a city", "a river"},
		CorrectIndex: 0,
	}
}

func pragueArticle() quizgen.Article {
	return quizgen.Article{
		Text:  "Prague is the capital of the Czech Republic.",
		Title: "Prague",
		Lang:  "en",
	}
}

// cachedQuestions builds n accepted questions for the article.
func cachedQuestions(a quizgen.Article, n int) []*quizgen.AcceptedQuestion {
	out := make([]*quizgen.AcceptedQuestion, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, quizgen.NewAcceptedQuestion(distinctCandidate("openai", i), a))
	}
	return out
}

// stubRand returns fixed values.
type stubRand struct {
	f float64
	i int
}

func (r stubRand) Float64() float64 { return r.f }

func (r stubRand) IntN(n int) int {
	if r.i >= n {
		return n - 1
	}
	return r.i
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ProviderTimeout = 0
	cfg.NearDuplicateRatio = 0
	return cfg
}

func newTestOrchestrator(s QuestionStore, cfg Config, gens ...quizgen.CandidateGenerator) *Orchestrator {
	return New(s, gens, quizgen.NewQuestionValidator(quizgen.DefaultFilterConfig()), cfg, WithRand(stubRand{}))
}

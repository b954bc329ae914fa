package quizcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/wikiquiz/internal/quizgen"
)

func TestServe_SufficientCacheSkipsGeneration(t *testing.T) {
	a := pragueArticle()
	s := newFakeStore(cachedQuestions(a, 9)...)
	gpt := distinctGenerator("openai")
	gemini := distinctGenerator("gemini")

	o := newTestOrchestrator(s, testConfig(), gpt, gemini)
	res, err := o.Serve(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gpt.callCount() != 0 || gemini.callCount() != 0 {
		t.Errorf("generators called %d/%d times, want 0", gpt.callCount(), gemini.callCount())
	}
	if s.inserts() != 0 {
		t.Errorf("insert called %d times, want 0", s.inserts())
	}
	if !res.FromCache {
		t.Error("expected question served from cache")
	}
	if res.Cached != 9 || res.Generated != 0 || res.PoolSize != 9 {
		t.Errorf("result = cached %d generated %d pool %d, want 9/0/9", res.Cached, res.Generated, res.PoolSize)
	}
}

func TestServe_ExhaustionWhenGeneratorsReturnNothing(t *testing.T) {
	s := newFakeStore()
	gpt := nullGenerator("openai")
	gemini := failingGenerator("gemini")

	o := newTestOrchestrator(s, testConfig(), gpt, gemini)
	_, err := o.Serve(context.Background(), pragueArticle())
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	if s.inserts() != 0 {
		t.Errorf("insert called %d times, want 0", s.inserts())
	}
	// Exactly target-count rounds, each falling through to the second provider.
	if gpt.callCount() != 12 || gemini.callCount() != 12 {
		t.Errorf("calls = %d/%d, want 12/12", gpt.callCount(), gemini.callCount())
	}
}

func TestServe_SequentialFallback(t *testing.T) {
	s := newFakeStore()
	gpt := failingGenerator("openai")
	gemini := distinctGenerator("gemini")

	o := newTestOrchestrator(s, testConfig(), gpt, gemini)
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Generated != 12 {
		t.Errorf("Generated = %d, want 12", res.Generated)
	}
	if res.FromCache {
		t.Error("expected a freshly generated question")
	}
	if res.Question.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", res.Question.Provider)
	}
	if s.inserts() != 12 {
		t.Errorf("inserts = %d, want 12", s.inserts())
	}
}

func TestServe_SequentialStopsAtFirstSuccess(t *testing.T) {
	s := newFakeStore()
	gpt := distinctGenerator("openai")
	gemini := distinctGenerator("gemini")

	o := newTestOrchestrator(s, testConfig(), gpt, gemini)
	if _, err := o.Serve(context.Background(), pragueArticle()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gemini.callCount() != 0 {
		t.Errorf("fallback called %d times, want 0", gemini.callCount())
	}
	if gpt.callCount() != 12 {
		t.Errorf("primary called %d times, want 12", gpt.callCount())
	}
}

func TestServe_ParallelPreferFirst(t *testing.T) {
	s := newFakeStore()
	gpt := distinctGenerator("openai")
	gemini := distinctGenerator("gemini")

	cfg := testConfig()
	cfg.Strategy = ParallelPreferFirst
	cfg.TargetPoolSize = 4

	o := newTestOrchestrator(s, cfg, gpt, gemini)
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gpt.callCount() != 4 || gemini.callCount() != 4 {
		t.Errorf("calls = %d/%d, want 4/4", gpt.callCount(), gemini.callCount())
	}
	for _, q := range s.cached {
		if q.Provider != "openai" {
			t.Errorf("stored question from %q, want only the preferred provider", q.Provider)
		}
	}
	if res.Generated != 4 {
		t.Errorf("Generated = %d, want 4", res.Generated)
	}
}

func TestServe_ParallelFallsBackWhenPreferredFails(t *testing.T) {
	cfg := testConfig()
	cfg.Strategy = ParallelPreferFirst
	cfg.TargetPoolSize = 2

	o := newTestOrchestrator(newFakeStore(), cfg, failingGenerator("openai"), distinctGenerator("gemini"))
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Question.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", res.Question.Provider)
	}
}

func TestServe_RejectedCandidatesAreDiscarded(t *testing.T) {
	s := newFakeStore()
	bad := &fakeGenerator{name: "openai", fn: func(context.Context, int) (*quizgen.Candidate, error) {
		return rejectedCandidate(), nil
	}}

	o := newTestOrchestrator(s, testConfig(), bad)
	_, err := o.Serve(context.Background(), pragueArticle())
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	if s.inserts() != 0 {
		t.Errorf("inserts = %d, want 0", s.inserts())
	}
}

func TestServe_PartialFillIsNotAnError(t *testing.T) {
	a := pragueArticle()
	s := newFakeStore(cachedQuestions(a, 3)...)
	flaky := &fakeGenerator{name: "openai", fn: func(_ context.Context, n int) (*quizgen.Candidate, error) {
		if n%2 == 0 {
			return nil, errProviderDown
		}
		// Offset past the cached stems.
		return distinctCandidate("openai", n+3), nil
	}}

	o := newTestOrchestrator(s, testConfig(), flaky)
	res, err := o.Serve(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 12 - 3 = 9 rounds, odd calls succeed.
	if flaky.callCount() != 9 {
		t.Errorf("calls = %d, want 9", flaky.callCount())
	}
	if res.Generated != 5 {
		t.Errorf("Generated = %d, want 5", res.Generated)
	}
	if res.PoolSize != 8 {
		t.Errorf("PoolSize = %d, want 8", res.PoolSize)
	}
}

func TestServe_DuplicateOfCachedIsNotReinserted(t *testing.T) {
	a := pragueArticle()
	s := newFakeStore(cachedQuestions(a, 1)...)
	// Always returns the same question as the cached one.
	same := &fakeGenerator{name: "openai", fn: func(context.Context, int) (*quizgen.Candidate, error) {
		return distinctCandidate("openai", 1), nil
	}}

	o := newTestOrchestrator(s, testConfig(), same)
	res, err := o.Serve(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Generated != 0 || res.PoolSize != 1 {
		t.Errorf("Generated %d PoolSize %d, want 0 and 1", res.Generated, res.PoolSize)
	}
	if s.inserts() != 0 {
		t.Errorf("inserts = %d, want 0", s.inserts())
	}
}

func TestServe_StoreDuplicateIsBenign(t *testing.T) {
	a := pragueArticle()
	s := newFakeStore()
	// Pre-populate a row for another language so Lookup misses it but the
	// hash collides on insert.
	other := quizgen.NewAcceptedQuestion(distinctCandidate("openai", 1), a)
	s.rows[other.QuestionHash] = other

	cfg := testConfig()
	cfg.TargetPoolSize = 1
	o := newTestOrchestrator(s, cfg, distinctGenerator("openai"))
	res, err := o.Serve(context.Background(), a)
	if err != nil {
		t.Fatalf("duplicate insert must not fail the request: %v", err)
	}
	if res.Question.QuestionHash != other.QuestionHash {
		t.Error("expected the generated question to be served")
	}
	if s.inserts() != 1 {
		t.Errorf("inserts = %d, want 1", s.inserts())
	}
}

func TestServe_InsertFailureKeepsQuestion(t *testing.T) {
	s := newFakeStore()
	s.insertErr = errors.New("disk full")

	cfg := testConfig()
	cfg.TargetPoolSize = 2
	o := newTestOrchestrator(s, cfg, distinctGenerator("openai"))
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Generated != 2 {
		t.Errorf("Generated = %d, want 2", res.Generated)
	}
}

func TestServe_LookupFailureIsStoreError(t *testing.T) {
	s := newFakeStore()
	s.lookupErr = errors.New("connection refused")
	gpt := distinctGenerator("openai")

	o := newTestOrchestrator(s, testConfig(), gpt)
	_, err := o.Serve(context.Background(), pragueArticle())

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want *StoreError", err)
	}
	if storeErr.Op != "lookup" {
		t.Errorf("Op = %q, want lookup", storeErr.Op)
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("store failure must be distinct from exhaustion")
	}
	if gpt.callCount() != 0 {
		t.Error("no generation should happen after a lookup failure")
	}
}

func TestServe_EmptyArticle(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		s := newFakeStore()
		gpt := distinctGenerator("openai")
		o := newTestOrchestrator(s, testConfig(), gpt)

		_, err := o.Serve(context.Background(), quizgen.Article{Text: text, Lang: "en"})
		if !errors.Is(err, ErrEmptyArticle) {
			t.Errorf("text %q: err = %v, want ErrEmptyArticle", text, err)
		}
		if s.lookups != 0 || gpt.callCount() != 0 {
			t.Errorf("text %q: no collaborator should be called", text)
		}
	}
}

func TestServe_NearDuplicatesDropped(t *testing.T) {
	s := newFakeStore()
	echo := &fakeGenerator{name: "openai", fn: func(_ context.Context, n int) (*quizgen.Candidate, error) {
		c := distinctCandidate("openai", 1)
		if n > 1 {
			// One character off: a new hash, but the same question.
			c.Question = "What country is Prague the capitol of?"
		}
		return c, nil
	}}

	cfg := testConfig()
	cfg.NearDuplicateRatio = 0.1
	cfg.TargetPoolSize = 3
	o := newTestOrchestrator(s, cfg, echo)
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Generated != 1 || s.inserts() != 1 {
		t.Errorf("Generated %d inserts %d, want 1 and 1", res.Generated, s.inserts())
	}
}

func TestServe_ProviderTimeoutFallsBack(t *testing.T) {
	slow := &fakeGenerator{name: "openai", fn: func(ctx context.Context, _ int) (*quizgen.Candidate, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	gemini := distinctGenerator("gemini")

	cfg := testConfig()
	cfg.ProviderTimeout = 20 * time.Millisecond
	cfg.TargetPoolSize = 1

	o := newTestOrchestrator(newFakeStore(), cfg, slow, gemini)
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Question.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", res.Question.Provider)
	}
}

func TestServe_CancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newFakeStore()
	gpt := distinctGenerator("openai")
	o := newTestOrchestrator(s, testConfig(), gpt)

	_, err := o.Serve(ctx, pragueArticle())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if gpt.callCount() != 0 {
		t.Errorf("calls = %d, want 0", gpt.callCount())
	}
}

func TestServe_AttemptsPerRound(t *testing.T) {
	gen := &fakeGenerator{name: "openai", fn: func(_ context.Context, n int) (*quizgen.Candidate, error) {
		if n == 1 {
			return rejectedCandidate(), nil
		}
		return distinctCandidate("openai", n), nil
	}}

	cfg := testConfig()
	cfg.TargetPoolSize = 1
	cfg.AttemptsPerRound = 2

	o := newTestOrchestrator(newFakeStore(), cfg, gen)
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.callCount() != 2 || res.Generated != 1 {
		t.Errorf("calls %d generated %d, want 2 and 1", gen.callCount(), res.Generated)
	}
}

func TestServe_ConcurrentRounds(t *testing.T) {
	s := newFakeStore()
	gen := distinctGenerator("openai")

	cfg := testConfig()
	cfg.RoundConcurrency = 4

	o := newTestOrchestrator(s, cfg, gen)
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Generated != 12 || s.inserts() != 12 {
		t.Errorf("Generated %d inserts %d, want 12 and 12", res.Generated, s.inserts())
	}
}

func TestServe_SelectionUsesRandSource(t *testing.T) {
	a := pragueArticle()
	cached := cachedQuestions(a, 9)
	s := newFakeStore(cached...)

	o := New(s, nil, quizgen.NewQuestionValidator(quizgen.DefaultFilterConfig()), testConfig(), WithRand(stubRand{i: 4}))
	res, err := o.Serve(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Question.QuestionHash != cached[4].QuestionHash {
		t.Error("expected the question at the index drawn from the rand source")
	}
}

func TestServe_ScenarioA(t *testing.T) {
	s := newFakeStore()
	gen := &fakeGenerator{name: "openai", fn: func(context.Context, int) (*quizgen.Candidate, error) {
		return &quizgen.Candidate{
			Question:     "What country is Prague the capital of?",
			Answers:      []string{"Czech Republic", "Germany", "Austria"},
			CorrectIndex: 0,
		}, nil
	}}

	o := newTestOrchestrator(s, testConfig(), gen)
	res, err := o.Serve(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := res.Question
	if q.Question != "What country is Prague the capital of?" || q.CorrectIndex != 0 {
		t.Errorf("unexpected question %+v", q.Candidate)
	}
	if q.Provider != "openai" {
		t.Errorf("Provider = %q, want tag filled from generator name", q.Provider)
	}
	if q.ArticleHash != pragueArticle().Hash() {
		t.Error("article hash not stamped")
	}
	// The same question every round is stored once.
	if res.Generated != 1 || s.inserts() != 1 {
		t.Errorf("Generated %d inserts %d, want 1 and 1", res.Generated, s.inserts())
	}
}

func TestGenerateOnce(t *testing.T) {
	s := newFakeStore()
	gpt := failingGenerator("openai")
	gemini := distinctGenerator("gemini")

	o := newTestOrchestrator(s, testConfig(), gpt, gemini)
	q, err := o.GenerateOnce(context.Background(), pragueArticle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", q.Provider)
	}
	if q.QuestionHash == "" {
		t.Error("expected question hash")
	}
	if gpt.callCount() != 1 || gemini.callCount() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", gpt.callCount(), gemini.callCount())
	}
	if s.lookups != 0 || s.inserts() != 0 {
		t.Error("GenerateOnce must not touch the store")
	}
}

func TestGenerateOnce_Errors(t *testing.T) {
	o := newTestOrchestrator(newFakeStore(), testConfig(), failingGenerator("openai"), nullGenerator("gemini"))

	if _, err := o.GenerateOnce(context.Background(), quizgen.Article{}); !errors.Is(err, ErrEmptyArticle) {
		t.Errorf("err = %v, want ErrEmptyArticle", err)
	}
	if _, err := o.GenerateOnce(context.Background(), pragueArticle()); !errors.Is(err, ErrExhausted) {
		t.Errorf("err = %v, want ErrExhausted", err)
	}
}

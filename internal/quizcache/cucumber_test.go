package quizcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/abhisek/wikiquiz/internal/quizgen"
)

func TestCucumberFeatures(t *testing.T) {
	options := godog.Options{
		Format:   "progress",
		Paths:    []string{filepath.Join("testdata", "features")},
		Output:   io.Discard,
		Strict:   true,
		TestingT: t,
	}

	suite := godog.TestSuite{
		Name:                "quizcache-features",
		ScenarioInitializer: initializeScenario,
		Options:             &options,
	}

	if suite.Run() != 0 {
		t.Fatalf("cucumber features failed")
	}
}

type featureState struct {
	article    quizgen.Article
	store      *fakeStore
	generators map[string]*fakeGenerator
	order      []string
	result     *Result
	err        error
}

func initializeScenario(sc *godog.ScenarioContext) {
	s := &featureState{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*s = featureState{generators: make(map[string]*fakeGenerator)}
		for _, name := range []string{"openai", "gemini"} {
			s.order = append(s.order, name)
			s.generators[name] = nullGenerator(name)
		}
		return ctx, nil
	})

	sc.Step(`^the article "([^"]*)" titled "([^"]*)" in "([^"]*)"$`, s.theArticle)
	sc.Step(`^the cache holds (\d+) questions for the article$`, s.theCacheHolds)
	sc.Step(`^every provider returns a valid question$`, s.everyProviderReturnsValid)
	sc.Step(`^every provider returns nothing$`, s.everyProviderReturnsNothing)
	sc.Step(`^every provider returns:$`, s.everyProviderReturns)
	sc.Step(`^provider "([^"]*)" fails$`, s.providerFails)
	sc.Step(`^provider "([^"]*)" returns a valid question$`, s.providerReturnsValid)
	sc.Step(`^a question is requested$`, s.aQuestionIsRequested)
	sc.Step(`^a question is served from the cache$`, s.servedFromCache)
	sc.Step(`^a freshly generated question from "([^"]*)" is served$`, s.freshFrom)
	sc.Step(`^the served question is "([^"]*)"$`, s.theServedQuestionIs)
	sc.Step(`^no provider was called$`, s.noProviderCalled)
	sc.Step(`^nothing was stored$`, s.nothingStored)
	sc.Step(`^(\d+) questions were stored$`, s.questionsStored)
	sc.Step(`^the request fails with exhaustion$`, s.failsWithExhaustion)
}

func (s *featureState) theArticle(text, title, lang string) error {
	s.article = quizgen.Article{Text: text, Title: title, Lang: lang}
	return nil
}

func (s *featureState) theCacheHolds(n int) error {
	s.store = newFakeStore(cachedQuestions(s.article, n)...)
	return nil
}

func (s *featureState) everyProviderReturnsValid() error {
	for _, name := range s.order {
		s.generators[name] = distinctGenerator(name)
	}
	return nil
}

func (s *featureState) everyProviderReturnsNothing() error {
	for _, name := range s.order {
		s.generators[name] = nullGenerator(name)
	}
	return nil
}

func (s *featureState) everyProviderReturns(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("expected a header and one candidate row")
	}
	row := table.Rows[1].Cells
	correct, err := strconv.Atoi(strings.TrimSpace(row[2].Value))
	if err != nil {
		return fmt.Errorf("parse correct index: %w", err)
	}
	question := row[0].Value
	answers := strings.Split(row[1].Value, ";")
	for i := range answers {
		answers[i] = strings.TrimSpace(answers[i])
	}

	for _, name := range s.order {
		s.generators[name] = &fakeGenerator{name: name, fn: func(context.Context, int) (*quizgen.Candidate, error) {
			return &quizgen.Candidate{Question: question, Answers: answers, CorrectIndex: correct}, nil
		}}
	}
	return nil
}

func (s *featureState) providerFails(name string) error {
	s.generators[name] = failingGenerator(name)
	return nil
}

func (s *featureState) providerReturnsValid(name string) error {
	s.generators[name] = distinctGenerator(name)
	return nil
}

func (s *featureState) aQuestionIsRequested() error {
	gens := make([]quizgen.CandidateGenerator, 0, len(s.order))
	for _, name := range s.order {
		gens = append(gens, s.generators[name])
	}
	o := newTestOrchestrator(s.store, testConfig(), gens...)
	s.result, s.err = o.Serve(context.Background(), s.article)
	return nil
}

func (s *featureState) served() error {
	if s.err != nil {
		return fmt.Errorf("expected a question, got error %v", s.err)
	}
	if s.result == nil || s.result.Question == nil {
		return fmt.Errorf("expected a question")
	}
	return nil
}

func (s *featureState) servedFromCache() error {
	if err := s.served(); err != nil {
		return err
	}
	if !s.result.FromCache {
		return fmt.Errorf("expected the question to come from the cache")
	}
	return nil
}

func (s *featureState) freshFrom(provider string) error {
	if err := s.served(); err != nil {
		return err
	}
	if s.result.FromCache {
		return fmt.Errorf("expected a generated question")
	}
	if got := s.result.Question.Provider; got != provider {
		return fmt.Errorf("provider = %q, want %q", got, provider)
	}
	return nil
}

func (s *featureState) theServedQuestionIs(text string) error {
	if err := s.served(); err != nil {
		return err
	}
	if got := s.result.Question.Question; got != text {
		return fmt.Errorf("question = %q, want %q", got, text)
	}
	return nil
}

func (s *featureState) noProviderCalled() error {
	for _, name := range s.order {
		if n := s.generators[name].callCount(); n != 0 {
			return fmt.Errorf("provider %s called %d times", name, n)
		}
	}
	return nil
}

func (s *featureState) nothingStored() error {
	if n := s.store.inserts(); n != 0 {
		return fmt.Errorf("insert called %d times", n)
	}
	return nil
}

func (s *featureState) questionsStored(n int) error {
	if got := len(s.store.rows); got != n {
		return fmt.Errorf("stored %d questions, want %d", got, n)
	}
	return nil
}

func (s *featureState) failsWithExhaustion() error {
	if !errors.Is(s.err, ErrExhausted) {
		return fmt.Errorf("err = %v, want ErrExhausted", s.err)
	}
	return nil
}

package quizcache

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/wikiquiz/internal/quizgen"
)

// Orchestrator serves questions for an article from the cache, generating
// and persisting new ones when the cache is not warm enough.
type Orchestrator struct {
	store      QuestionStore
	generators []quizgen.CandidateGenerator
	validator  *quizgen.QuestionValidator
	cfg        Config
	rnd        quizgen.RandSource
	logger     zerolog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithRand sets the random source used to pick the served question.
func WithRand(r quizgen.RandSource) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.rnd = r
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator. Generators are listed in preference order.
func New(qs QuestionStore, generators []quizgen.CandidateGenerator, validator *quizgen.QuestionValidator, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      qs,
		generators: generators,
		validator:  validator,
		cfg:        cfg,
		rnd:        quizgen.DefaultRand(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result describes how a served question was obtained.
type Result struct {
	Question *quizgen.AcceptedQuestion

	// FromCache is true when Question was read from the store rather than
	// generated during this request.
	FromCache bool

	Cached    int
	Generated int
	PoolSize  int
}

// Serve returns one question for the article, drawn uniformly from the
// cached questions plus whatever this request managed to generate.
//
// Only ErrEmptyArticle, ErrExhausted, a *StoreError from the lookup, or the
// context's error when it ends before anything could be served are
// returned. Provider failures and rejected candidates are absorbed.
func (o *Orchestrator) Serve(ctx context.Context, article quizgen.Article) (*Result, error) {
	if strings.TrimSpace(article.Text) == "" {
		return nil, ErrEmptyArticle
	}

	articleHash := article.Hash()
	logger := o.baseLogger(ctx).With().
		Str("article_hash", articleHash[:12]).
		Str("lang", article.Lang).
		Logger()
	ctx = logger.WithContext(ctx)

	cached, err := o.store.Lookup(ctx, articleHash, article.Lang, o.cfg.LookupLimit)
	if err != nil {
		return nil, &StoreError{Op: "lookup", Err: err}
	}

	p := newPool(o.cfg.NearDuplicateRatio)
	p.seed(cached)

	res := &Result{Cached: len(cached)}

	if len(cached) > 0 && len(cached) >= o.cfg.SufficiencyThreshold {
		logger.Debug().Int("cached", len(cached)).Msg("cache sufficient")
	} else {
		missing := o.cfg.TargetPoolSize - len(cached)
		logger.Debug().Int("cached", len(cached)).Int("rounds", missing).Msg("cache insufficient, generating")
		res.Generated = o.fill(ctx, article, p, missing)
	}

	questions := p.snapshot()
	res.PoolSize = len(questions)
	if len(questions) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Warn().Msg("question pool exhausted")
		return nil, ErrExhausted
	}

	res.Question = lo.SampleBy(questions, o.rnd.IntN)
	res.FromCache = p.isCached(res.Question.QuestionHash)
	return res, nil
}

// GenerateOnce runs a single validated generation with every generator in
// parallel and skips the cache entirely.
func (o *Orchestrator) GenerateOnce(ctx context.Context, article quizgen.Article) (*quizgen.AcceptedQuestion, error) {
	if strings.TrimSpace(article.Text) == "" {
		return nil, ErrEmptyArticle
	}
	ctx = o.baseLogger(ctx).With().Str("lang", article.Lang).Logger().WithContext(ctx)
	ctx = quizgen.WithPurpose(ctx, quizgen.PurposeGenerateOnce)

	c := o.runRound(ctx, article, ParallelPreferFirst)
	if c == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrExhausted
	}
	return quizgen.NewAcceptedQuestion(c, article), nil
}

// baseLogger prefers a logger already carried by ctx, such as the
// per-request logger of the HTTP layer.
func (o *Orchestrator) baseLogger(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return o.logger
}

// fill runs the given number of generation rounds and returns how many
// questions were added to the pool.
func (o *Orchestrator) fill(ctx context.Context, article quizgen.Article, p *pool, rounds int) int {
	if rounds <= 0 || len(o.generators) == 0 {
		return 0
	}

	logger := zerolog.Ctx(ctx)
	var pooled atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.RoundConcurrency)

	for round := range rounds {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			c := o.runRound(gctx, article, o.cfg.Strategy)
			if c == nil {
				logger.Debug().Int("round", round).Msg("round produced no question")
				return nil
			}

			q := quizgen.NewAcceptedQuestion(c, article)
			if outcome := p.add(q); outcome != added {
				logger.Debug().
					Int("round", round).
					Str("provider", q.Provider).
					Stringer("outcome", outcome).
					Msg("accepted question not pooled")
				return nil
			}
			pooled.Add(1)
			o.persist(gctx, q)
			return nil
		})
	}
	_ = g.Wait()

	return int(pooled.Load())
}

// persist inserts q. The insert outlives request cancellation; a failure
// is logged and the question stays servable for this request.
func (o *Orchestrator) persist(ctx context.Context, q *quizgen.AcceptedQuestion) {
	logger := zerolog.Ctx(ctx)

	inserted, err := o.store.Insert(context.WithoutCancel(ctx), q)
	if err != nil {
		logger.Error().Err(err).Str("question_hash", q.QuestionHash).Msg("failed to store question")
		return
	}
	if !inserted {
		logger.Debug().Str("question_hash", q.QuestionHash).Msg("question already stored")
	}
}

// runRound makes up to AttemptsPerRound attempts at producing a candidate
// that passes validation.
func (o *Orchestrator) runRound(ctx context.Context, article quizgen.Article, strategy Strategy) *quizgen.Candidate {
	logger := zerolog.Ctx(ctx)

	for attempt := 1; attempt <= max(o.cfg.AttemptsPerRound, 1); attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		var c *quizgen.Candidate
		if strategy == ParallelPreferFirst {
			c = o.generateParallel(ctx, article)
		} else {
			c = o.generateSequential(ctx, article)
		}
		if c == nil {
			continue
		}

		if verr := o.validator.Validate(c, article); verr != nil {
			logger.Debug().
				Str("provider", c.Provider).
				Str("validator", verr.Validator).
				Str("reason", verr.Message).
				Int("attempt", attempt).
				Msg("candidate rejected")
			continue
		}
		return c
	}
	return nil
}

// generateSequential asks generators in preference order and returns the
// first candidate produced.
func (o *Orchestrator) generateSequential(ctx context.Context, article quizgen.Article) *quizgen.Candidate {
	for _, gen := range o.generators {
		if ctx.Err() != nil {
			return nil
		}
		if c := o.call(ctx, gen, article); c != nil {
			return c
		}
	}
	return nil
}

// generateParallel asks every generator at once, waits for all of them and
// returns the most preferred candidate.
func (o *Orchestrator) generateParallel(ctx context.Context, article quizgen.Article) *quizgen.Candidate {
	results := make([]*quizgen.Candidate, len(o.generators))

	var g errgroup.Group
	for i, gen := range o.generators {
		g.Go(func() error {
			results[i] = o.call(ctx, gen, article)
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range results {
		if c != nil {
			return c
		}
	}
	return nil
}

// call invokes one generator under the provider timeout. Any failure means
// no candidate.
func (o *Orchestrator) call(ctx context.Context, gen quizgen.CandidateGenerator, article quizgen.Article) *quizgen.Candidate {
	if o.cfg.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ProviderTimeout)
		defer cancel()
	}

	c, err := gen.Generate(ctx, article)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("provider", gen.Name()).Msg("provider produced no candidate")
		return nil
	}
	if c == nil {
		return nil
	}
	if c.Provider == "" {
		c.Provider = gen.Name()
	}
	return c
}

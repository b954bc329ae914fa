package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/config"
	"github.com/abhisek/wikiquiz/internal/llm"
	"github.com/abhisek/wikiquiz/internal/quizcache"
	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/store"
)

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if v, _ := cmd.Flags().GetString("dialect"); v != "" {
		cfg.Database.Dialect = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Database.DSN = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore opens the configured database. An embedded sqlite database
// without a DSN lives at the default data path.
func openStore(ctx context.Context, cfg store.Config) (*store.Store, error) {
	if cfg.Dialect == store.DialectSQLite && cfg.DSN == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.DSN = p
	}
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// deps holds everything a question-serving command needs.
type deps struct {
	cfg          config.Config
	logger       zerolog.Logger
	store        *store.Store
	questions    *quizcache.SQLStore
	orchestrator *quizcache.Orchestrator
}

func (d *deps) Close() error {
	return d.store.Close()
}

// buildDeps wires store, providers, generators and the orchestrator.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	providers, err := llm.NewProviders(ctx, cfg.LLM, st.Events(), logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("configure LLM providers: %w", err)
	}

	slicer := quizgen.NewContextSlicer(cfg.Generator.Slice, nil)
	generators := make([]quizgen.CandidateGenerator, 0, len(providers))
	for _, p := range providers {
		generators = append(generators, quizgen.NewLLMGenerator(p.Name, p.Provider, cfg.Generator, slicer))
	}

	questions := quizcache.NewSQLStore(st.Questions())
	orch := quizcache.New(
		questions,
		generators,
		quizgen.NewQuestionValidator(cfg.Filters),
		cfg.Cache,
		quizcache.WithLogger(logger),
	)

	logger.Debug().
		Strs("providers", cfg.LLM.Providers).
		Str("strategy", string(cfg.Cache.Strategy)).
		Str("dialect", cfg.Database.Dialect).
		Msg("dependencies ready")

	return &deps{
		cfg:          cfg,
		logger:       logger,
		store:        st,
		questions:    questions,
		orchestrator: orch,
	}, nil
}

// Package server exposes the question service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/abhisek/wikiquiz/internal/config"
	"github.com/abhisek/wikiquiz/internal/quizcache"
	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/store"
)

// QuestionService produces questions for an article.
type QuestionService interface {
	Serve(ctx context.Context, article quizgen.Article) (*quizcache.Result, error)
	GenerateOnce(ctx context.Context, article quizgen.Article) (*quizgen.AcceptedQuestion, error)
}

// QuestionSaver persists questions submitted by clients.
type QuestionSaver interface {
	Insert(ctx context.Context, q *quizgen.AcceptedQuestion) (inserted bool, err error)
}

// RatingStore records player feedback.
type RatingStore interface {
	Append(ctx context.Context, rec store.RatingRecord) (int64, error)
}

// Deps are the collaborators behind the endpoints.
type Deps struct {
	Questions QuestionService
	Saver     QuestionSaver
	Ratings   RatingStore
	Logger    zerolog.Logger
}

// Server routes HTTP requests to the question service.
type Server struct {
	engine    *gin.Engine
	questions QuestionService
	saver     QuestionSaver
	ratings   RatingStore
	cfg       config.ServerConfig
	logger    zerolog.Logger
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		engine:    gin.New(),
		questions: deps.Questions,
		saver:     deps.Saver,
		ratings:   deps.Ratings,
		cfg:       cfg,
		logger:    deps.Logger,
	}

	s.engine.Use(requestLogger(s.logger), recovery(), cors(cfg.AllowedOrigins))
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	api.GET("/questions", s.health)
	api.POST("/questions", s.handleQuestions)
	api.POST("/generate", s.handleGenerate)
	api.POST("/question-save", s.handleSave)
	api.POST("/question-rate", s.handleRate)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info().Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/wikiquiz/internal/article"
	"github.com/abhisek/wikiquiz/internal/quizcache"
	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/store"
)

// maxBodyBytes bounds request bodies. Articles are sent in full.
const maxBodyBytes = 4 << 20

type questionRequest struct {
	Context string `json:"context"`
	Lang    string `json:"lang"`
	Title   string `json:"title"`
}

type questionResponse struct {
	Question     string   `json:"question"`
	Answers      []string `json:"answers"`
	CorrectIndex int      `json:"correctIndex"`
	QuestionHash string   `json:"questionHash,omitempty"`
	Model        string   `json:"model,omitempty"`
}

type saveRequest struct {
	QuestionHash string   `json:"question_hash"`
	ArticleHash  string   `json:"article_hash"`
	Lang         string   `json:"lang"`
	TopicTitle   string   `json:"topic_title"`
	ContextSlice string   `json:"context_slice"`
	Question     string   `json:"question"`
	Answers      []string `json:"answers"`
	CorrectIndex *int     `json:"correct_index"`
	Model        string   `json:"model"`
}

type rateRequest struct {
	QuestionHash     string `json:"question_hash"`
	QualityRating    *int   `json:"quality_rating"`
	DifficultyRating *int   `json:"difficulty_rating"`
	SelectedAnswer   *int   `json:"selected_answer"`
	Correct          *bool  `json:"correct"`
	Model            string `json:"model"`
	DurationMs       *int64 `json:"duration_ms"`
	SessionID        string `json:"session_id"`
	TopicTitle       string `json:"topic_title"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleQuestions serves a cached or freshly generated question.
func (s *Server) handleQuestions(c *gin.Context) {
	a, ok := s.bindArticle(c)
	if !ok {
		return
	}

	res, err := s.questions.Serve(c.Request.Context(), a)
	if err != nil {
		s.fail(c, err)
		return
	}

	zerolog.Ctx(c.Request.Context()).Debug().
		Bool("from_cache", res.FromCache).
		Int("cached", res.Cached).
		Int("generated", res.Generated).
		Msg("question served")

	q := res.Question
	c.JSON(http.StatusOK, questionResponse{
		Question:     q.Question,
		Answers:      q.Answers,
		CorrectIndex: q.CorrectIndex,
		QuestionHash: q.QuestionHash,
	})
}

// handleGenerate runs one uncached generation round.
func (s *Server) handleGenerate(c *gin.Context) {
	a, ok := s.bindArticle(c)
	if !ok {
		return
	}

	q, err := s.questions.GenerateOnce(c.Request.Context(), a)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, questionResponse{
		Question:     q.Question,
		Answers:      q.Answers,
		CorrectIndex: q.CorrectIndex,
		QuestionHash: q.QuestionHash,
		Model:        q.Provider,
	})
}

func (s *Server) handleSave(c *gin.Context) {
	var req saveRequest
	if !bindJSON(c, &req) {
		return
	}

	switch {
	case strings.TrimSpace(req.Question) == "":
		badRequest(c, "Missing question")
		return
	case len(req.Answers) != 3:
		badRequest(c, "answers must be array of 3 items")
		return
	case req.CorrectIndex == nil:
		badRequest(c, "Missing correct_index")
		return
	case *req.CorrectIndex < 0 || *req.CorrectIndex > 2:
		badRequest(c, "correct_index must be 0, 1 or 2")
		return
	case req.Model == "":
		badRequest(c, "Missing model")
		return
	case req.Lang == "":
		badRequest(c, "Missing lang")
		return
	}

	hash := req.QuestionHash
	if hash == "" {
		hash = quizgen.HashQuestion(req.Question, req.Answers)
	}

	q := &quizgen.AcceptedQuestion{
		Candidate: quizgen.Candidate{
			Question:     req.Question,
			Answers:      req.Answers,
			CorrectIndex: *req.CorrectIndex,
			Provider:     req.Model,
			ContextSlice: req.ContextSlice,
		},
		QuestionHash: hash,
		ArticleHash:  req.ArticleHash,
		Lang:         req.Lang,
		Title:        req.TopicTitle,
	}

	inserted, err := s.saver.Insert(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}

	reason := "inserted"
	if !inserted {
		reason = "duplicate_question_hash"
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"saved":         inserted,
		"reason":        reason,
		"question_hash": hash,
	})
}

func (s *Server) handleRate(c *gin.Context) {
	var req rateRequest
	if !bindJSON(c, &req) {
		return
	}

	switch {
	case req.QuestionHash == "":
		badRequest(c, "Missing question_hash")
		return
	case req.SelectedAnswer == nil:
		badRequest(c, "Missing selected_answer")
		return
	case req.Correct == nil:
		badRequest(c, "Missing correct (true/false)")
		return
	case req.Model == "":
		badRequest(c, "Missing model")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	id, err := s.ratings.Append(c.Request.Context(), store.RatingRecord{
		QuestionHash:     req.QuestionHash,
		QualityRating:    req.QualityRating,
		DifficultyRating: req.DifficultyRating,
		SelectedAnswer:   *req.SelectedAnswer,
		Correct:          *req.Correct,
		Model:            req.Model,
		DurationMs:       req.DurationMs,
		SessionID:        sessionID,
		TopicTitle:       req.TopicTitle,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id, "session_id": sessionID})
}

// bindArticle decodes a question request into an article. HTML context is
// reduced to text first.
func (s *Server) bindArticle(c *gin.Context) (quizgen.Article, bool) {
	var req questionRequest
	if !bindJSON(c, &req) {
		return quizgen.Article{}, false
	}

	text := article.Normalize(req.Context)
	if text == "" {
		badRequest(c, "Missing context")
		return quizgen.Article{}, false
	}

	lang := strings.TrimSpace(req.Lang)
	if lang == "" {
		lang = s.cfg.DefaultLang
	}

	return quizgen.Article{
		Text:  text,
		Title: strings.TrimSpace(req.Title),
		Lang:  lang,
	}, true
}

// fail maps service errors to responses. Details of unexpected errors are
// logged, never returned.
func (s *Server) fail(c *gin.Context, err error) {
	logger := zerolog.Ctx(c.Request.Context())

	switch {
	case errors.Is(err, quizcache.ErrEmptyArticle):
		badRequest(c, "Missing context")
	case errors.Is(err, quizcache.ErrExhausted):
		logger.Warn().Msg("no valid questions generated")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No valid questions generated"})
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Err(err).Msg("request timed out")
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads the response.
		c.Status(499)
	default:
		logger.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid JSON body")
		return false
	}
	return true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

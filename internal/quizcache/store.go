package quizcache

import (
	"context"

	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/store"
)

// QuestionStore is the persistence boundary of the orchestrator.
type QuestionStore interface {
	// Lookup returns up to limit non-removed accepted questions for the
	// article hash and language.
	Lookup(ctx context.Context, articleHash, lang string, limit int) ([]*quizgen.AcceptedQuestion, error)

	// Insert persists q. A question hash collision reports inserted=false
	// with a nil error.
	Insert(ctx context.Context, q *quizgen.AcceptedQuestion) (inserted bool, err error)
}

// SQLStore adapts the relational question repository to QuestionStore.
type SQLStore struct {
	repo *store.QuestionRepo
}

var _ QuestionStore = (*SQLStore)(nil)

// NewSQLStore wraps repo.
func NewSQLStore(repo *store.QuestionRepo) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Lookup(ctx context.Context, articleHash, lang string, limit int) ([]*quizgen.AcceptedQuestion, error) {
	recs, err := s.repo.Lookup(ctx, articleHash, lang, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*quizgen.AcceptedQuestion, 0, len(recs))
	for _, r := range recs {
		out = append(out, FromRecord(r))
	}
	return out, nil
}

func (s *SQLStore) Insert(ctx context.Context, q *quizgen.AcceptedQuestion) (bool, error) {
	return s.repo.Insert(ctx, ToRecord(q))
}

// Count returns the number of cached questions for the article.
func (s *SQLStore) Count(ctx context.Context, articleHash, lang string) (int, error) {
	return s.repo.Count(ctx, articleHash, lang)
}

// ToRecord converts an accepted question into its stored form.
func ToRecord(q *quizgen.AcceptedQuestion) store.QuestionRecord {
	return store.QuestionRecord{
		QuestionHash: q.QuestionHash,
		ArticleHash:  q.ArticleHash,
		Lang:         q.Lang,
		TopicTitle:   q.Title,
		ContextSlice: q.ContextSlice,
		Question:     q.Question,
		Answers:      q.Answers,
		CorrectIndex: q.CorrectIndex,
		Model:        q.Provider,
		ModelID:      q.Model,
		CreatedAt:    q.CreatedAt,
	}
}

// FromRecord converts a stored question back into an accepted question.
func FromRecord(r store.QuestionRecord) *quizgen.AcceptedQuestion {
	return &quizgen.AcceptedQuestion{
		Candidate: quizgen.Candidate{
			Question:     r.Question,
			Answers:      r.Answers,
			CorrectIndex: r.CorrectIndex,
			Provider:     r.Model,
			Model:        r.ModelID,
			ContextSlice: r.ContextSlice,
		},
		QuestionHash: r.QuestionHash,
		ArticleHash:  r.ArticleHash,
		Lang:         r.Lang,
		Title:        r.TopicTitle,
		CreatedAt:    r.CreatedAt,
	}
}

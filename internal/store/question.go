package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// QuestionRecord is a persisted accepted question.
type QuestionRecord struct {
	ID           int64
	QuestionHash string
	ArticleHash  string
	Lang         string
	TopicTitle   string
	ContextSlice string
	Question     string
	Answers      []string
	CorrectIndex int
	// Model is the provider tag that generated the question ("openai", "gemini").
	Model string
	// ModelID is the concrete model that served the request, when known.
	ModelID   string
	IsRemoved bool
	CreatedAt time.Time
}

// QuestionRepo stores accepted questions keyed by article hash and language.
// Inserts are idempotent on QuestionHash.
type QuestionRepo struct {
	drv *entsql.Driver
}

var questionColumns = []string{
	"id", "question_hash", "article_hash", "lang", "topic_title", "context_slice",
	"question", "answers", "correct_index", "model", "model_id", "is_removed", "created_at",
}

// Lookup returns up to limit non-removed questions for the article, newest
// first. A non-positive limit returns every match.
func (r *QuestionRepo) Lookup(ctx context.Context, articleHash, lang string, limit int) ([]QuestionRecord, error) {
	b := entsql.Dialect(r.drv.Dialect())
	sel := b.Select(questionColumns...).
		From(b.Table(questionsTable)).
		Where(entsql.And(
			entsql.EQ("article_hash", articleHash),
			entsql.EQ("lang", lang),
			entsql.EQ("is_removed", false),
		)).
		OrderExprFunc(func(b *entsql.Builder) {
			b.Ident("created_at").WriteString(" DESC, ").Ident("id").WriteString(" DESC")
		})
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []QuestionRecord
	for rows.Next() {
		rec, err := scanQuestion(&rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

func scanQuestion(rows *entsql.Rows) (QuestionRecord, error) {
	var (
		rec       QuestionRecord
		slice     sql.NullString
		answers   string
		createdAt int64
	)
	err := rows.Scan(
		&rec.ID, &rec.QuestionHash, &rec.ArticleHash, &rec.Lang, &rec.TopicTitle, &slice,
		&rec.Question, &answers, &rec.CorrectIndex, &rec.Model, &rec.ModelID, &rec.IsRemoved, &createdAt,
	)
	if err != nil {
		return rec, fmt.Errorf("scan question: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return rec, fmt.Errorf("decode answers of question %d: %w", rec.ID, err)
	}
	rec.ContextSlice = slice.String
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return rec, nil
}

// Insert stores q unless a question with the same hash already exists.
// It reports whether a row was written; a duplicate is not an error.
func (r *QuestionRepo) Insert(ctx context.Context, q QuestionRecord) (bool, error) {
	if q.QuestionHash == "" {
		return false, fmt.Errorf("insert question: empty question hash")
	}
	answers, err := json.Marshal(q.Answers)
	if err != nil {
		return false, fmt.Errorf("encode answers: %w", err)
	}
	createdAt := q.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args := entsql.Dialect(r.drv.Dialect()).
		Insert(questionsTable).
		Columns(questionColumns[1:]...).
		Values(
			q.QuestionHash, q.ArticleHash, q.Lang, q.TopicTitle,
			sql.NullString{String: q.ContextSlice, Valid: q.ContextSlice != ""},
			q.Question, string(answers), q.CorrectIndex, q.Model, q.ModelID, q.IsRemoved,
			createdAt.UnixMilli(),
		).
		OnConflict(
			entsql.ConflictColumns("question_hash"),
			entsql.DoNothing(),
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("insert question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of non-removed questions for the article.
func (r *QuestionRepo) Count(ctx context.Context, articleHash, lang string) (int, error) {
	b := entsql.Dialect(r.drv.Dialect())
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(questionsTable)).
		Where(entsql.And(
			entsql.EQ("article_hash", articleHash),
			entsql.EQ("lang", lang),
			entsql.EQ("is_removed", false),
		)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(&rows)
	if err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return n, nil
}

// Remove hides a question from lookups. It reports whether a visible
// question with that hash existed.
func (r *QuestionRepo) Remove(ctx context.Context, questionHash string) (bool, error) {
	query, args := entsql.Dialect(r.drv.Dialect()).
		Update(questionsTable).
		Set("is_removed", true).
		Where(entsql.And(
			entsql.EQ("question_hash", questionHash),
			entsql.EQ("is_removed", false),
		)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("remove question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// QuestionStats counts visible questions per generating model and language.
type QuestionStats struct {
	Model     string
	Lang      string
	Questions int
}

// StatsByModel aggregates visible questions by model and language.
func (r *QuestionRepo) StatsByModel(ctx context.Context) ([]QuestionStats, error) {
	b := entsql.Dialect(r.drv.Dialect())
	query, args := b.Select("model", "lang", entsql.As(entsql.Count("*"), "questions")).
		From(b.Table(questionsTable)).
		Where(entsql.EQ("is_removed", false)).
		GroupBy("model", "lang").
		OrderBy("model", "lang").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query question stats: %w", err)
	}
	defer rows.Close()

	var out []QuestionStats
	for rows.Next() {
		var st QuestionStats
		if err := rows.Scan(&st.Model, &st.Lang, &st.Questions); err != nil {
			return nil, fmt.Errorf("scan question stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

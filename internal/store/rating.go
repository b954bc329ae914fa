package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// RatingRecord is a player's feedback on a served question. Ratings are
// append-only and never touch the question row itself.
type RatingRecord struct {
	ID               int64
	QuestionHash     string
	QualityRating    *int
	DifficultyRating *int
	SelectedAnswer   int
	Correct          bool
	Model            string
	DurationMs       *int64
	SessionID        string
	TopicTitle       string
	CreatedAt        time.Time
}

// RatingRepo stores question ratings.
type RatingRepo struct {
	drv *entsql.Driver
}

// Append stores a rating and returns its id.
func (r *RatingRepo) Append(ctx context.Context, rec RatingRecord) (int64, error) {
	if rec.QuestionHash == "" {
		return 0, fmt.Errorf("append rating: empty question hash")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ib := entsql.Dialect(r.drv.Dialect()).
		Insert(ratingsTable).
		Columns(
			"question_hash", "quality_rating", "difficulty_rating", "selected_answer", "correct",
			"model", "duration_ms", "session_id", "topic_title", "created_at",
		).
		Values(
			rec.QuestionHash, rec.QualityRating, rec.DifficultyRating, rec.SelectedAnswer, rec.Correct,
			rec.Model, rec.DurationMs, rec.SessionID, rec.TopicTitle, createdAt.UnixMilli(),
		)

	id, err := insertReturningID(ctx, r.drv, ib)
	if err != nil {
		return 0, fmt.Errorf("append rating: %w", err)
	}
	return id, nil
}

// CountFor returns how many ratings a question has received.
func (r *RatingRepo) CountFor(ctx context.Context, questionHash string) (int, error) {
	b := entsql.Dialect(r.drv.Dialect())
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(ratingsTable)).
		Where(entsql.EQ("question_hash", questionHash)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	defer rows.Close()
	return entsql.ScanInt(&rows)
}

// RatingStats summarizes player feedback for one generating model.
type RatingStats struct {
	Model   string
	Ratings int
	Correct int
	// AvgQuality averages the quality ratings given; zero when none were.
	AvgQuality float64
}

// StatsByModel aggregates ratings per model, ordered by model.
func (r *RatingRepo) StatsByModel(ctx context.Context) ([]RatingStats, error) {
	b := entsql.Dialect(r.drv.Dialect())
	query, args := b.Select(
		"model",
		"correct",
		entsql.As(entsql.Count("*"), "ratings"),
		entsql.As(entsql.Count("quality_rating"), "rated"),
		entsql.As(entsql.Sum("quality_rating"), "quality_total"),
	).
		From(b.Table(ratingsTable)).
		GroupBy("model", "correct").
		OrderBy("model").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query rating stats: %w", err)
	}
	defer rows.Close()

	type acc struct {
		RatingStats
		rated, qualityTotal int64
	}
	var order []string
	byModel := make(map[string]*acc)
	for rows.Next() {
		var (
			model          string
			correct        bool
			ratings, rated int64
			qualityTotal   sql.NullInt64
		)
		if err := rows.Scan(&model, &correct, &ratings, &rated, &qualityTotal); err != nil {
			return nil, fmt.Errorf("scan rating stats: %w", err)
		}
		a, ok := byModel[model]
		if !ok {
			a = &acc{RatingStats: RatingStats{Model: model}}
			byModel[model] = a
			order = append(order, model)
		}
		a.Ratings += int(ratings)
		if correct {
			a.Correct += int(ratings)
		}
		a.rated += rated
		a.qualityTotal += qualityTotal.Int64
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating stats: %w", err)
	}

	out := make([]RatingStats, 0, len(order))
	for _, m := range order {
		a := byModel[m]
		if a.rated > 0 {
			a.AvgQuality = float64(a.qualityTotal) / float64(a.rated)
		}
		out = append(out, a.RatingStats)
	}
	return out, nil
}

// insertReturningID executes ib and returns the generated primary key.
// Postgres has no LastInsertId, so it goes through RETURNING instead.
func insertReturningID(ctx context.Context, drv *entsql.Driver, ib *entsql.InsertBuilder) (int64, error) {
	if drv.Dialect() == dialect.Postgres {
		query, args := ib.Returning("id").Query()
		var rows entsql.Rows
		if err := drv.Query(ctx, query, args, &rows); err != nil {
			return 0, err
		}
		defer rows.Close()
		return entsql.ScanInt64(&rows)
	}

	query, args := ib.Query()
	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

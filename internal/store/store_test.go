package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	s, err := OpenSQLite(context.Background(), dsn)
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func testQuestion(hash, articleHash string) QuestionRecord {
	return QuestionRecord{
		QuestionHash: hash,
		ArticleHash:  articleHash,
		Lang:         "en",
		TopicTitle:   "Prague",
		ContextSlice: "Prague is the capital of the Czech Republic.",
		Question:     "What country is Prague the capital of?",
		Answers:      []string{"Czech Republic", "Germany", "Austria"},
		CorrectIndex: 0,
		Model:        "openai",
		ModelID:      "gpt-4o-mini",
	}
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "sqlite3", s.Dialect())
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		require.NoError(t, err, "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite without dsn", Config{Dialect: DialectSQLite}, false},
		{"postgres", Config{Dialect: DialectPostgres, DSN: "postgres://localhost/wikiquiz"}, false},
		{"mysql without dsn", Config{Dialect: DialectMySQL}, true},
		{"unknown dialect", Config{Dialect: "oracle", DSN: "x"}, true},
		{"empty", Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionInsertAndLookup(t *testing.T) {
	s := openTestStore(t)
	repo := s.Questions()
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, testQuestion("q1", "a1"))
	require.NoError(t, err)
	assert.True(t, inserted)

	got, err := repo.Lookup(ctx, "a1", "en", 12)
	require.NoError(t, err)
	require.Len(t, got, 1)

	q := got[0]
	assert.Equal(t, "q1", q.QuestionHash)
	assert.Equal(t, "a1", q.ArticleHash)
	assert.Equal(t, []string{"Czech Republic", "Germany", "Austria"}, q.Answers)
	assert.Equal(t, 0, q.CorrectIndex)
	assert.Equal(t, "openai", q.Model)
	assert.Equal(t, "gpt-4o-mini", q.ModelID)
	assert.Equal(t, "Prague is the capital of the Czech Republic.", q.ContextSlice)
	assert.False(t, q.IsRemoved)
	assert.WithinDuration(t, time.Now(), q.CreatedAt, time.Minute)
}

func TestQuestionInsertDuplicateIsNoop(t *testing.T) {
	s := openTestStore(t)
	repo := s.Questions()
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, testQuestion("dup", "a1"))
	require.NoError(t, err)
	require.True(t, inserted)

	second := testQuestion("dup", "a1")
	second.Question = "A different wording with the same hash?"
	inserted, err = repo.Insert(ctx, second)
	require.NoError(t, err, "duplicate insert must not fail")
	assert.False(t, inserted)

	n, err := repo.Count(ctx, "a1", "en")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.Lookup(ctx, "a1", "en", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "What country is Prague the capital of?", got[0].Question)
}

func TestQuestionInsertRequiresHash(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Questions().Insert(context.Background(), testQuestion("", "a1"))
	assert.Error(t, err)
}

func TestQuestionLookupFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.Questions()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		q := testQuestion(fmt.Sprintf("en-%d", i), "a1")
		q.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := repo.Insert(ctx, q)
		require.NoError(t, err)
	}

	cs := testQuestion("cs-0", "a1")
	cs.Lang = "cs"
	_, err := repo.Insert(ctx, cs)
	require.NoError(t, err)

	other := testQuestion("other-0", "a2")
	_, err = repo.Insert(ctx, other)
	require.NoError(t, err)

	removed := testQuestion("removed-0", "a1")
	removed.IsRemoved = true
	_, err = repo.Insert(ctx, removed)
	require.NoError(t, err)

	got, err := repo.Lookup(ctx, "a1", "en", 0)
	require.NoError(t, err)
	require.Len(t, got, 5, "only non-removed en questions of a1")
	assert.Equal(t, "en-4", got[0].QuestionHash, "newest first")

	limited, err := repo.Lookup(ctx, "a1", "en", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	n, err := repo.Count(ctx, "a1", "en")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = repo.Count(ctx, "a1", "cs")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	none, err := repo.Lookup(ctx, "missing", "en", 12)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRatingAppend(t *testing.T) {
	s := openTestStore(t)
	ratings := s.Ratings()
	ctx := context.Background()

	quality := 4
	duration := int64(5400)
	id1, err := ratings.Append(ctx, RatingRecord{
		QuestionHash:   "q1",
		QualityRating:  &quality,
		SelectedAnswer: 2,
		Correct:        false,
		Model:          "gemini",
		DurationMs:     &duration,
		SessionID:      "sess-1",
		TopicTitle:     "Prague",
	})
	require.NoError(t, err)
	assert.Positive(t, id1)

	id2, err := ratings.Append(ctx, RatingRecord{
		QuestionHash:   "q1",
		SelectedAnswer: 0,
		Correct:        true,
		Model:          "gemini",
	})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	n, err := ratings.CountFor(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ratings.Append(ctx, RatingRecord{Model: "gemini"})
	assert.Error(t, err, "question hash is required")
}

func TestLLMEventsAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	events := s.Events()
	ctx := context.Background()

	records := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 300, Success: true, RequestBody: "[user]\nhi", ResponseBody: `{"question":"q"}`},
		{Provider: "gemini", Model: "gemini-2.5-flash-lite", Purpose: "question-gen", InputTokens: 80, OutputTokens: 40, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "generate-once", InputTokens: 10, OutputTokens: 0, LatencyMs: 50, Success: false, ErrorMessage: "rate limited"},
	}
	for _, r := range records {
		require.NoError(t, events.AppendLLMRequest(ctx, r))
	}

	all, err := events.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "generate-once", all[0].Purpose, "newest first")
	assert.Equal(t, "rate limited", all[0].ErrorMessage)
	assert.False(t, all[0].Success)

	limited, err := events.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	gen, err := events.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen"})
	require.NoError(t, err)
	assert.Len(t, gen, 2)

	future, err := events.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)

	first := all[len(all)-1]
	got, err := events.GetLLMEvent(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "[user]\nhi", got.RequestBody)
	assert.Equal(t, `{"question":"q"}`, got.ResponseBody)

	missing, err := events.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	events := s.Events()
	ctx := context.Background()

	for _, r := range []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 200, OutputTokens: 70, LatencyMs: 400, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash-lite", Purpose: "generate-once", InputTokens: 30, OutputTokens: 20, LatencyMs: 100, Success: true},
	} {
		require.NoError(t, events.AppendLLMRequest(ctx, r))
	}

	byPurpose, err := events.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, LLMUsageStats{Purpose: "generate-once", Calls: 1, InputTokens: 30, OutputTokens: 20, AvgLatencyMs: 100}, byPurpose[0])
	assert.Equal(t, LLMUsageStats{Purpose: "question-gen", Calls: 2, InputTokens: 300, OutputTokens: 120, AvgLatencyMs: 300}, byPurpose[1])

	byModel, err := events.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, ModelUsageStats{Model: "gemini-2.5-flash-lite", Calls: 1, InputTokens: 30, OutputTokens: 20}, byModel[0])
	assert.Equal(t, ModelUsageStats{Model: "gpt-4o-mini", Calls: 2, InputTokens: 300, OutputTokens: 120}, byModel[1])
}

func TestDefaultDBPathEnvOverride(t *testing.T) {
	dir := t.TempDir()
	want := dir + "/nested/quiz.db"
	t.Setenv("WIKIQUIZ_DB", want)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.DirExists(t, dir+"/nested")
}

func TestQuestionRemove(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Questions()

	_, err := repo.Insert(ctx, testQuestion("h1", "a1"))
	require.NoError(t, err)

	removed, err := repo.Remove(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, removed)

	n, err := repo.Count(ctx, "a1", "en")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	removed, err = repo.Remove(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, removed, "second removal finds nothing visible")

	removed, err = repo.Remove(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	// The hash stays taken: re-inserting the removed question is a no-op.
	inserted, err := repo.Insert(ctx, testQuestion("h1", "a1"))
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestQuestionStatsByModel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Questions()

	q1 := testQuestion("h1", "a1")
	q2 := testQuestion("h2", "a1")
	q3 := testQuestion("h3", "a2")
	q3.Model = "gemini"
	q4 := testQuestion("h4", "a2")
	q4.Lang = "cs"
	for _, q := range []QuestionRecord{q1, q2, q3, q4} {
		_, err := repo.Insert(ctx, q)
		require.NoError(t, err)
	}
	_, err := repo.Remove(ctx, "h2")
	require.NoError(t, err)

	stats, err := repo.StatsByModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []QuestionStats{
		{Model: "gemini", Lang: "en", Questions: 1},
		{Model: "openai", Lang: "cs", Questions: 1},
		{Model: "openai", Lang: "en", Questions: 1},
	}, stats)
}

func TestRatingStatsByModel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ratings := s.Ratings()

	four, two := 4, 2
	recs := []RatingRecord{
		{QuestionHash: "h1", Model: "openai", Correct: true, QualityRating: &four},
		{QuestionHash: "h1", Model: "openai", Correct: false, QualityRating: &two},
		{QuestionHash: "h2", Model: "openai", Correct: true},
		{QuestionHash: "h3", Model: "gemini", Correct: false},
	}
	for _, rec := range recs {
		_, err := ratings.Append(ctx, rec)
		require.NoError(t, err)
	}

	stats, err := ratings.StatsByModel(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, RatingStats{Model: "gemini", Ratings: 1, Correct: 0}, stats[0])
	assert.Equal(t, "openai", stats[1].Model)
	assert.Equal(t, 3, stats[1].Ratings)
	assert.Equal(t, 2, stats[1].Correct)
	assert.InDelta(t, 3.0, stats[1].AvgQuality, 1e-9)
}

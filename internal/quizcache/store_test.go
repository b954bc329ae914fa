package quizcache

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/store"
)

func openSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.OpenSQLite(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewSQLStore(s.Questions())
}

func TestSQLStore_RoundTrip(t *testing.T) {
	qs := openSQLStore(t)
	ctx := context.Background()
	a := pragueArticle()

	c := distinctCandidate("gemini", 1)
	c.Model = "gemini-2.5-flash-lite"
	c.ContextSlice = a.Text
	q := quizgen.NewAcceptedQuestion(c, a)

	inserted, err := qs.Insert(ctx, q)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = qs.Insert(ctx, q)
	require.NoError(t, err)
	assert.False(t, inserted, "second insert of the same hash is a no-op")

	got, err := qs.Lookup(ctx, a.Hash(), "en", 12)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, q.Candidate, got[0].Candidate)
	assert.Equal(t, q.QuestionHash, got[0].QuestionHash)
	assert.Equal(t, q.ArticleHash, got[0].ArticleHash)
	assert.Equal(t, "Prague", got[0].Title)

	n, err := qs.Count(ctx, a.Hash(), "en")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLStore_OrchestratorWarmsCache(t *testing.T) {
	qs := openSQLStore(t)
	ctx := context.Background()
	a := pragueArticle()

	gen := distinctGenerator("openai")
	o := newTestOrchestrator(qs, testConfig(), gen)

	first, err := o.Serve(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 12, first.Generated)
	assert.False(t, first.FromCache)

	second, err := o.Serve(ctx, a)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 12, second.Cached)
	assert.Equal(t, 12, gen.callCount(), "a warm cache must not generate")
}

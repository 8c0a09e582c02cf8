package tfidf

import (
	"context"
	"testing"

	"github.com/opencodesearch/codesearch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPersistSnapshot_WritesPostingsAndIDF(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	e := New()
	require.NoError(t, e.AddDocument("a.go", TermFreq{"foo": 2, "bar": 1}))
	require.NoError(t, e.AddDocument("b.go", TermFreq{"foo": 1}))

	require.NoError(t, e.PersistSnapshot(ctx, s, []string{"a.go", "b.go"}, nil, true))

	postings, err := s.AllPostings(ctx)
	require.NoError(t, err)
	assert.Len(t, postings["foo"], 2)
	assert.Len(t, postings["bar"], 1)

	idf, err := s.AllIDF(ctx)
	require.NoError(t, err)
	assert.Contains(t, idf, "foo")
	assert.Contains(t, idf, "bar")
}

func TestLoadFromStore_ReconstructsEquivalentEngine(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	original := New()
	require.NoError(t, original.AddDocument("a.go", TermFreq{"foo": 2, "bar": 1}))
	require.NoError(t, original.AddDocument("b.go", TermFreq{"foo": 1}))
	require.NoError(t, original.PersistSnapshot(ctx, s, []string{"a.go", "b.go"}, nil, true))

	reloaded, err := LoadFromStore(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, original.N(), reloaded.N())

	for _, term := range []string{"foo", "bar"} {
		originalResults := original.Search([]string{term}, 10, 0, nil)
		reloadedResults := reloaded.Search([]string{term}, 10, 0, nil)
		require.Equal(t, len(originalResults), len(reloadedResults), "term %q", term)
		for i := range originalResults {
			assert.Equal(t, originalResults[i].Path, reloadedResults[i].Path, "term %q", term)
			assert.InDelta(t, originalResults[i].Score, reloadedResults[i].Score, 1e-9, "term %q", term)
		}
	}
}

func TestAllDocTerms_ReturnsIndependentCopy(t *testing.T) {
	e := New()
	require.NoError(t, e.AddDocument("a.go", TermFreq{"foo": 2}))

	docs := e.AllDocTerms()
	require.Contains(t, docs, "a.go")
	docs["a.go"]["foo"] = 999
	docs["b.go"] = TermFreq{"new": 1}

	assert.Equal(t, 2, e.AllDocTerms()["a.go"]["foo"])
	assert.NotContains(t, e.AllDocTerms(), "b.go")
}

func TestLoadFromStore_EmptyStoreYieldsEmptyEngine(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	e, err := LoadFromStore(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 0, e.N())
}

func TestPersistSnapshot_RemovalDeletesPostingsAndPurgesOrphanedIDF(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	e := New()
	require.NoError(t, e.AddDocument("a.go", TermFreq{"foo": 2, "bar": 1}))
	require.NoError(t, e.AddDocument("b.go", TermFreq{"foo": 1}))
	require.NoError(t, e.PersistSnapshot(ctx, s, []string{"a.go", "b.go"}, nil, true))

	// a.go is the only document containing "bar"; removing it should drop
	// "bar" to zero df and purge its postings and idf row, while leaving
	// "foo" (still held by b.go) intact.
	e.RemoveDocument("a.go")
	require.NoError(t, e.PersistSnapshot(ctx, s, nil, []string{"a.go"}, false))

	postings, err := s.AllPostings(ctx)
	require.NoError(t, err)
	assert.NotContains(t, postings, "bar")
	require.Len(t, postings["foo"], 1)
	assert.Equal(t, "b.go", postings["foo"][0].DocID)

	idf, err := s.AllIDF(ctx)
	require.NoError(t, err)
	assert.NotContains(t, idf, "bar")
	assert.Contains(t, idf, "foo")
}

func TestPersistSnapshot_PointUpdateReplacesChangedDocumentPostings(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	e := New()
	require.NoError(t, e.AddDocument("a.go", TermFreq{"foo": 2, "bar": 1}))
	require.NoError(t, e.PersistSnapshot(ctx, s, []string{"a.go"}, nil, true))

	e.UpdateDocument("a.go", TermFreq{"baz": 3})
	require.NoError(t, e.PersistSnapshot(ctx, s, []string{"a.go"}, nil, false))

	postings, err := s.AllPostings(ctx)
	require.NoError(t, err)
	assert.NotContains(t, postings, "foo")
	assert.NotContains(t, postings, "bar")
	require.Len(t, postings["baz"], 1)
	assert.Equal(t, "a.go", postings["baz"][0].DocID)

	idf, err := s.AllIDF(ctx)
	require.NoError(t, err)
	assert.NotContains(t, idf, "foo")
	assert.NotContains(t, idf, "bar")
	assert.Contains(t, idf, "baz")
}

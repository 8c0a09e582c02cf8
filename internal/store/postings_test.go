package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkInsertPostings_GroupsByTerm(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	postings := []Posting{
		{Term: "user", DocID: "a.go", TF: 2},
		{Term: "user", DocID: "b.go", TF: 1},
		{Term: "create", DocID: "b.go", TF: 1},
	}
	require.NoError(t, s.BulkInsertPostings(ctx, postings))

	all, err := s.AllPostings(ctx)
	require.NoError(t, err)
	assert.Len(t, all["user"], 2)
	assert.Len(t, all["create"], 1)
}

func TestBulkInsertPostings_EmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.BulkInsertPostings(context.Background(), nil))
}

func TestReplaceDocumentPostings_DeletesThenInserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceDocumentPostings(ctx, "a.go", []Posting{
		{Term: "user", DocID: "a.go", TF: 2},
		{Term: "old", DocID: "a.go", TF: 1},
	}))

	// When: document is re-indexed with different terms
	require.NoError(t, s.ReplaceDocumentPostings(ctx, "a.go", []Posting{
		{Term: "user", DocID: "a.go", TF: 5},
	}))

	all, err := s.AllPostings(ctx)
	require.NoError(t, err)
	assert.Len(t, all["user"], 1)
	assert.Equal(t, 5, all["user"][0].TF)
	assert.NotContains(t, all, "old")
}

func TestDeleteDocumentPostings_RemovesAllTermsForDoc(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceDocumentPostings(ctx, "a.go", []Posting{
		{Term: "user", DocID: "a.go", TF: 2},
	}))
	require.NoError(t, s.ReplaceDocumentPostings(ctx, "b.go", []Posting{
		{Term: "user", DocID: "b.go", TF: 1},
	}))

	require.NoError(t, s.DeleteDocumentPostings(ctx, "a.go"))

	all, err := s.AllPostings(ctx)
	require.NoError(t, err)
	require.Len(t, all["user"], 1)
	assert.Equal(t, "b.go", all["user"][0].DocID)
}

func TestAllPostings_EmptyStoreReturnsEmptyMap(t *testing.T) {
	s := openTestStore(t)

	all, err := s.AllPostings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

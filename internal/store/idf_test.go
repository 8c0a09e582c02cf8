package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceIDF_UpsertsAndPurges(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceIDF(ctx, []IDFEntry{
		{Term: "user", DF: 2, IDF: 0.5},
		{Term: "create", DF: 1, IDF: 0.9},
	}, nil))

	all, err := s.AllIDF(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all["user"].DF)

	// When: "create" reaches df=0 and is purged, "user" is updated
	require.NoError(t, s.ReplaceIDF(ctx, []IDFEntry{
		{Term: "user", DF: 1, IDF: 1.0},
	}, []string{"create"}))

	all, err = s.AllIDF(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all["user"].DF)
	assert.NotContains(t, all, "create")
}

func TestReplaceIDF_NoEntriesOrPurgeIsNoop(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.ReplaceIDF(context.Background(), nil, nil))
}

func TestAllIDF_EmptyStoreReturnsEmptyMap(t *testing.T) {
	s := openTestStore(t)

	all, err := s.AllIDF(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

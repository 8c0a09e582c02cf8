package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMeta_UnsetKeyReturnsEmptyString(t *testing.T) {
	s := openTestStore(t)

	value, err := s.GetMeta(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestSetMeta_UpsertsValue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMeta(ctx, "k", "v1"))
	value, err := s.GetMeta(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	require.NoError(t, s.SetMeta(ctx, "k", "v2"))
	value, err = s.GetMeta(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
}

func TestDocCount_ReflectsFileRecordRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	count, err := s.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.BulkUpsertFileRecords(ctx, []FileRecord{
		{Path: "a.go", AbsPath: "/repo/a.go", ContentHash: "h1", Language: "go"},
		{Path: "b.go", AbsPath: "/repo/b.go", ContentHash: "h2", Language: "go"},
	}))

	count, err = s.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

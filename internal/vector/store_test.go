package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVec(dims int, hot int) []float32 {
	v := make([]float32, dims)
	v[hot%dims] = 1.0
	return v
}

func TestAdd_RejectsDuplicateDocID(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)

	require.NoError(t, s.Add(context.Background(), "a", unitVec(4, 0), nil))
	err = s.Add(context.Background(), "a", unitVec(4, 1), nil)
	assert.Error(t, err)
}

func TestAdd_RejectsWrongDimensions(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)

	err = s.Add(context.Background(), "a", []float32{1, 2}, nil)
	assert.Error(t, err)
}

func TestSearch_FindsNearestNeighbor(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "a", unitVec(4, 0), nil))
	require.NoError(t, s.Add(ctx, "b", unitVec(4, 1), nil))
	require.NoError(t, s.Add(ctx, "c", unitVec(4, 2), nil))

	results, err := s.Search(ctx, unitVec(4, 0), 1, 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-3)
}

func TestSearch_EmptyStoreReturnsEmpty(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), unitVec(4, 0), 5, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_AppliesMetadataFilter(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "a", unitVec(4, 0), map[string]string{"lang": "go"}))
	require.NoError(t, s.Add(ctx, "b", unitVec(4, 0), map[string]string{"lang": "py"}))

	results, err := s.Search(ctx, unitVec(4, 0), 5, 0, func(md map[string]string) bool {
		return md["lang"] == "py"
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestUpdate_LogicallyDeletesOldSlotAndIsExcludedFromSearch(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "a", unitVec(4, 0), nil))
	require.NoError(t, s.Update(ctx, "a", unitVec(4, 1), nil))

	assert.True(t, s.Contains("a"))
	assert.Equal(t, 1, s.Count())

	stats := s.Stats()
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 2, stats.GraphNodes)

	results, err := s.Search(ctx, unitVec(4, 1), 5, 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestDelete_RemovesFromLiveSetAndSearch(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "a", unitVec(4, 0), nil))
	require.NoError(t, s.Delete(ctx, "a"))

	assert.False(t, s.Contains("a"))
	results, err := s.Search(ctx, unitVec(4, 0), 5, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDelete_MissingDocIDIsNoop(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)
	assert.NoError(t, s.Delete(context.Background(), "missing"))
}

func TestCompact_DropsDeletedSlotsAndPreservesLiveSearch(t *testing.T) {
	s, err := New(DefaultConfig(4))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "a", unitVec(4, 0), nil))
	require.NoError(t, s.Update(ctx, "a", unitVec(4, 1), nil))
	require.NoError(t, s.Add(ctx, "b", unitVec(4, 2), nil))

	require.NoError(t, s.Compact(ctx))

	stats := s.Stats()
	assert.Equal(t, 0, stats.Deleted)
	assert.Equal(t, 2, stats.GraphNodes)

	results, err := s.Search(ctx, unitVec(4, 1), 5, 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestStats_DeletedRatio(t *testing.T) {
	stats := Stats{Live: 7, Deleted: 3, GraphNodes: 10}
	assert.InDelta(t, 0.3, stats.DeletedRatio(), 1e-9)

	empty := Stats{}
	assert.Equal(t, 0.0, empty.DeletedRatio())
}

func TestSaveLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.hnsw")

	s, err := New(DefaultConfig(4))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "a", unitVec(4, 0), map[string]string{"lang": "go"}))
	require.NoError(t, s.Add(ctx, "b", unitVec(4, 1), nil))

	require.NoError(t, s.Save(path))
	assert.FileExists(t, path)
	assert.FileExists(t, path+".metadata.json")

	loaded, err := New(DefaultConfig(4))
	require.NoError(t, err)
	require.NoError(t, loaded.Load(path))

	assert.True(t, loaded.Contains("a"))
	assert.True(t, loaded.Contains("b"))
	assert.Equal(t, 2, loaded.Count())

	results, err := loaded.Search(ctx, unitVec(4, 0), 1, 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestLoad_RejectsDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.hnsw")

	s, err := New(DefaultConfig(4))
	require.NoError(t, err)
	require.NoError(t, s.Add(context.Background(), "a", unitVec(4, 0), nil))
	require.NoError(t, s.Save(path))

	loaded, err := New(DefaultConfig(8))
	require.NoError(t, err)
	err = loaded.Load(path)
	assert.Error(t, err)
}

func TestNew_RejectsNonPositiveDimensions(t *testing.T) {
	_, err := New(Config{Dimensions: 0})
	assert.Error(t, err)
}

package embedding

import (
	"context"
	"testing"

	"github.com/opencodesearch/codesearch/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEmbedder struct {
	dimensions int
}

func (f *failingEmbedder) Name() string    { return "failing" }
func (f *failingEmbedder) Model() string   { return "failing" }
func (f *failingEmbedder) Dimensions() int { return f.dimensions }
func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, apperrors.New(apperrors.CodeProviderError, "always fails")
}
func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, apperrors.New(apperrors.CodeProviderError, "always fails")
}

func TestWithFallback_UsesPrimaryWhenItSucceeds(t *testing.T) {
	primary := NewMock(16)
	secondary := NewMock(16)
	e := WithFallback(primary, secondary)

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)

	want, _ := primary.Embed(context.Background(), "hello")
	assert.Equal(t, want, vec)
}

func TestWithFallback_FallsBackOnPrimaryFailure(t *testing.T) {
	primary := &failingEmbedder{dimensions: 16}
	secondary := NewMock(16)
	e := WithFallback(primary, secondary)

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)

	want, _ := secondary.Embed(context.Background(), "hello")
	assert.Equal(t, want, vec)
}

func TestWithFallback_EmbedBatchFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &failingEmbedder{dimensions: 16}
	secondary := NewMock(16)
	e := WithFallback(primary, secondary)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}

var _ Embedder = (*failingEmbedder)(nil)

package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/opencodesearch/codesearch/internal/tokenize"
)

const (
	mockTokenWeight = 0.7
	mockNgramWeight = 0.3
	mockNgramSize   = 3
)

// Mock is a deterministic, dependency-free Embedder for tests and for the
// static/no-network fallback tier. It hash-buckets tokens and character
// n-grams into a fixed-width vector, the same two-signal approach as a
// from-scratch hash embedder, reusing this module's own code-aware
// tokenizer instead of a private one.
type Mock struct {
	dimensions int
}

// NewMock creates a Mock embedder with the given dimensionality.
func NewMock(dimensions int) *Mock {
	return &Mock{dimensions: dimensions}
}

func (m *Mock) Name() string    { return "mock" }
func (m *Mock) Model() string   { return "mock" }
func (m *Mock) Dimensions() int { return m.dimensions }

// Embed deterministically hashes text into a unit-length vector.
func (m *Mock) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	vector := make([]float32, m.dimensions)
	if trimmed == "" {
		return vector, nil
	}

	for _, token := range tokenize.Tokenize(trimmed, tokenize.TagGeneric) {
		vector[hashToIndex(token, m.dimensions)] += mockTokenWeight
	}
	for _, ngram := range ngrams(normalizeForNgrams(trimmed), mockNgramSize) {
		vector[hashToIndex(ngram, m.dimensions)] += mockNgramWeight
	}

	return normalize(vector), nil
}

// EmbedBatch embeds each text independently.
func (m *Mock) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func normalizeForNgrams(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ngrams(text string, n int) []string {
	if len(text) < n {
		return nil
	}
	out := make([]string, 0, len(text)-n+1)
	for i := 0; i <= len(text)-n; i++ {
		out = append(out, text[i:i+n])
	}
	return out
}

func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

func normalize(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = val * inv
	}
	return out
}

var _ Embedder = (*Mock)(nil)

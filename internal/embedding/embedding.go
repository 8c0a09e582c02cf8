// Package embedding implements the embedding provider interface (C7): an
// abstract embed/embedBatch capability, a name-keyed registry for external
// implementations, a deterministic mock provider for tests, and a fallback
// combinator. Retries and rate-limit handling belong to concrete providers,
// not to this package.
package embedding

import "context"

// Embedder produces vector embeddings for text. Every vector it returns must
// have length equal to Dimensions().
type Embedder interface {
	Name() string
	Model() string
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

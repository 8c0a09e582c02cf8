package embedding

import "context"

// WithFallback returns an Embedder that calls primary and, on any failure,
// calls secondary instead. primary and secondary must share the same
// dimensionality; callers are responsible for that invariant since mixing
// dimensions silently would corrupt the vector store.
func WithFallback(primary, secondary Embedder) Embedder {
	return &fallbackEmbedder{primary: primary, secondary: secondary}
}

type fallbackEmbedder struct {
	primary   Embedder
	secondary Embedder
}

func (f *fallbackEmbedder) Name() string    { return f.primary.Name() + "+fallback:" + f.secondary.Name() }
func (f *fallbackEmbedder) Model() string   { return f.primary.Model() }
func (f *fallbackEmbedder) Dimensions() int { return f.primary.Dimensions() }

func (f *fallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := f.primary.Embed(ctx, text)
	if err != nil {
		return f.secondary.Embed(ctx, text)
	}
	return vec, nil
}

func (f *fallbackEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := f.primary.EmbedBatch(ctx, texts)
	if err != nil {
		return f.secondary.EmbedBatch(ctx, texts)
	}
	return vecs, nil
}

var _ Embedder = (*fallbackEmbedder)(nil)

// Package vector implements the vector store (C6): an HNSW graph over
// embedding vectors with cosine distance, logical-delete tracking, and
// a JSON sidecar for persistence, built on github.com/coder/hnsw.
package vector

// Result is one nearest-neighbor match.
type Result struct {
	ID       string
	Distance float32
	Score    float32 // 1 - distance (cosine similarity)
	Metadata map[string]string
}

// Config configures a Store. Dimensions must match the configured embedding
// provider; all other fields have defaults applied by DefaultConfig.
type Config struct {
	Dimensions     int
	MaxElements    int
	M              int
	EfConstruction int
	EfSearch       int
}

// DefaultConfig returns the spec's default init parameters for the given
// dimensionality.
func DefaultConfig(dimensions int) Config {
	return Config{
		Dimensions:     dimensions,
		MaxElements:    10000,
		M:              16,
		EfConstruction: 200,
		EfSearch:       50,
	}
}

// sidecar is the JSON persistence shape named explicitly: documents,
// idToIndex, indexToId, deleted, nextId, dimensions.
type sidecar struct {
	Documents  map[uint64]docEntry `json:"documents"`
	IDToIndex  map[string]uint64   `json:"idToIndex"`
	IndexToID  map[uint64]string   `json:"indexToId"`
	Deleted    []uint64            `json:"deleted"`
	NextID     uint64              `json:"nextId"`
	Dimensions int                 `json:"dimensions"`
}

type docEntry struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Stats reports the logical-delete ratio used to decide compaction.
type Stats struct {
	Live       int
	Deleted    int
	GraphNodes int
}

// DeletedRatio returns Deleted / GraphNodes, or 0 if the graph is empty.
func (s Stats) DeletedRatio() float64 {
	if s.GraphNodes == 0 {
		return 0
	}
	return float64(s.Deleted) / float64(s.GraphNodes)
}

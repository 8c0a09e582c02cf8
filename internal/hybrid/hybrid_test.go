package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse_BothStreamsEmptyReturnsEmpty(t *testing.T) {
	results := Fuse(nil, nil, 0.5)
	assert.Empty(t, results)
}

func TestFuse_LexicalOnlyKeepsLexicalProvenance(t *testing.T) {
	lexical := []StreamResult{{Path: "a.go", Score: 2.0}, {Path: "b.go", Score: 1.0}}
	results := Fuse(lexical, nil, 0.5)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, ProvenanceLexical, r.Provenance)
	}
}

func TestFuse_VectorOnlyKeepsVectorProvenance(t *testing.T) {
	vector := []StreamResult{{Path: "a.go", Score: 0.9}}
	results := Fuse(nil, vector, 0.5)

	require.Len(t, results, 1)
	assert.Equal(t, ProvenanceVector, results[0].Provenance)
}

func TestFuse_OverlappingPathBecomesHybrid(t *testing.T) {
	lexical := []StreamResult{{Path: "a.go", Score: 2.0}}
	vector := []StreamResult{{Path: "a.go", Score: 0.8}}

	results := Fuse(lexical, vector, 0.5)
	require.Len(t, results, 1)
	assert.Equal(t, ProvenanceHybrid, results[0].Provenance)
}

func TestFuse_WeightZeroDegeneratesToLexicalOrdering(t *testing.T) {
	lexical := []StreamResult{{Path: "a.go", Score: 1.0}, {Path: "b.go", Score: 2.0}}
	vector := []StreamResult{{Path: "a.go", Score: 10.0}, {Path: "b.go", Score: 0.1}}

	results := Fuse(lexical, vector, 0.0)
	require.Len(t, results, 2)
	assert.Equal(t, "b.go", results[0].Path)
}

func TestFuse_WeightOneDegeneratesToVectorOrdering(t *testing.T) {
	lexical := []StreamResult{{Path: "a.go", Score: 1.0}, {Path: "b.go", Score: 2.0}}
	vector := []StreamResult{{Path: "a.go", Score: 10.0}, {Path: "b.go", Score: 0.1}}

	results := Fuse(lexical, vector, 1.0)
	require.Len(t, results, 2)
	assert.Equal(t, "a.go", results[0].Path)
}

func TestFuse_NormalizesEachStreamByItsOwnMax(t *testing.T) {
	lexical := []StreamResult{{Path: "a.go", Score: 4.0}, {Path: "b.go", Score: 2.0}}
	results := Fuse(lexical, nil, 0.0)

	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
}

func TestFuse_SortsByScoreDescendingThenPathAscending(t *testing.T) {
	lexical := []StreamResult{{Path: "z.go", Score: 1.0}, {Path: "a.go", Score: 1.0}}
	results := Fuse(lexical, nil, 0.0)

	require.Len(t, results, 2)
	assert.Equal(t, "a.go", results[0].Path)
	assert.Equal(t, "z.go", results[1].Path)
}

func TestApplyMinScoreAndLimit_FiltersAndTruncates(t *testing.T) {
	results := []Result{
		{Path: "a.go", Score: 0.9},
		{Path: "b.go", Score: 0.4},
		{Path: "c.go", Score: 0.1},
	}

	out := ApplyMinScoreAndLimit(results, 0.3, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "a.go", out[0].Path)
}

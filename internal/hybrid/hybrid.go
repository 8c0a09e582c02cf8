// Package hybrid implements hybrid search (C8): per-stream max-score
// normalization and weighted linear fusion of a lexical stream and a vector
// stream, tagging each result with its provenance.
package hybrid

import "sort"

// Provenance identifies which stream(s) produced a fused result.
type Provenance string

const (
	ProvenanceLexical Provenance = "lexical"
	ProvenanceVector  Provenance = "vector"
	ProvenanceHybrid  Provenance = "hybrid"
)

// epsilon guards the max-score normalization divisor against a zero
// maximum (an all-zero-score stream).
const epsilon = 1e-9

// StreamResult is one match from a single stream (lexical or vector),
// keyed by path with its stream-native score.
type StreamResult struct {
	Path  string
	Score float64
}

// Result is one fused result after normalization and weighting.
type Result struct {
	Path        string
	Score       float64
	Provenance  Provenance
	LexicalRaw  float64
	VectorRaw   float64
}

// Fuse merges a lexical stream and a vector stream with weight w applied to
// the vector stream (1-w to the lexical stream). Either stream may be empty.
func Fuse(lexical, vector []StreamResult, w float64) []Result {
	if len(lexical) == 0 && len(vector) == 0 {
		return []Result{}
	}

	lexNorm := maxScore(lexical)
	vecNorm := maxScore(vector)

	merged := make(map[string]*Result, len(lexical)+len(vector))

	for _, r := range lexical {
		entry := getOrCreate(merged, r.Path)
		entry.LexicalRaw = r.Score
		entry.Score += (1 - w) * (r.Score / lexNorm)
		entry.Provenance = ProvenanceLexical
	}

	for _, r := range vector {
		entry := getOrCreate(merged, r.Path)
		hadLexical := entry.LexicalRaw != 0 || entry.Provenance == ProvenanceLexical
		entry.VectorRaw = r.Score
		entry.Score += w * (r.Score / vecNorm)
		if hadLexical {
			entry.Provenance = ProvenanceHybrid
		} else {
			entry.Provenance = ProvenanceVector
		}
	}

	return toSortedSlice(merged)
}

func getOrCreate(m map[string]*Result, path string) *Result {
	if r, ok := m[path]; ok {
		return r
	}
	r := &Result{Path: path}
	m[path] = r
	return r
}

// maxScore returns the maximum score in the stream, guarded with epsilon so
// normalization never divides by zero.
func maxScore(stream []StreamResult) float64 {
	max := 0.0
	for _, r := range stream {
		if r.Score > max {
			max = r.Score
		}
	}
	if max == 0 {
		return epsilon
	}
	return max
}

func toSortedSlice(m map[string]*Result) []Result {
	results := make([]Result, 0, len(m))
	for _, r := range m {
		results = append(results, *r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})
	return results
}

// ApplyMinScoreAndLimit drops results below minScore and truncates to limit,
// the last step of §4.8's pipeline once the caller has fused and sorted.
func ApplyMinScoreAndLimit(results []Result, minScore float64, limit int) []Result {
	out := make([]Result, 0, limit)
	for _, r := range results {
		if r.Score < minScore {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}

package tfidf

// DefaultRebuildThreshold is the default fraction of changed documents
// (relative to the current corpus size) above which a full rebuild is
// cheaper and safer than applying deltas one by one.
const DefaultRebuildThreshold = 0.20

// ShouldRebuild applies §4.5's decision rule: rebuild if N=0, or if the
// number of pending changes divided by the current document count exceeds
// threshold.
func ShouldRebuild(changeCount, currentN int, threshold float64) bool {
	if currentN == 0 {
		return true
	}
	return float64(changeCount)/float64(currentN) > threshold
}

// Change is one pending mutation against the engine: either an upsert
// (TF non-nil) or a removal (TF nil).
type Change struct {
	DocID string
	TF    TermFreq
}

// IsRemoval reports whether this change deletes its document.
func (c Change) IsRemoval() bool {
	return c.TF == nil
}

// ApplyDeltas applies a batch of changes one by one without rebuilding.
// Callers must have already decided (via ShouldRebuild) that a delta pass
// is appropriate.
func (e *Engine) ApplyDeltas(changes []Change) {
	for _, c := range changes {
		if c.IsRemoval() {
			e.RemoveDocument(c.DocID)
			continue
		}
		if e.Contains(c.DocID) {
			e.UpdateDocument(c.DocID, c.TF)
		} else {
			_ = e.AddDocument(c.DocID, c.TF)
		}
	}
}

package tfidf

import (
	"context"

	"github.com/opencodesearch/codesearch/internal/store"
)

// SelfCheck verifies df(t) = |postings(t)| for every term, returning a
// description of each term where the two have drifted apart. A non-empty
// result means AddDocument/RemoveDocument/UpdateDocument's df bookkeeping
// has gone out of sync with the postings table itself.
func (e *Engine) SelfCheck() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var issues []string
	for term, docs := range e.postings {
		if got, want := e.df[term], len(docs); got != want {
			issues = append(issues, term)
		}
	}
	for term, df := range e.df {
		if _, ok := e.postings[term]; !ok && df != 0 {
			issues = append(issues, term)
		}
	}
	return issues
}

// LoadFromStore rebuilds the engine's in-memory state from the persisted
// postings table, reconstructing docTerms/docLengths/df/n from the raw
// postings rather than trusting the persisted (possibly stale-by-one-write)
// idf table, which is recomputed live on every search.
func LoadFromStore(ctx context.Context, s *store.Store) (*Engine, error) {
	postings, err := s.AllPostings(ctx)
	if err != nil {
		return nil, err
	}

	e := New()
	docs := make(map[string]TermFreq)
	for term, rows := range postings {
		for _, p := range rows {
			tf, ok := docs[p.DocID]
			if !ok {
				tf = make(TermFreq)
				docs[p.DocID] = tf
			}
			tf[term] = p.TF
		}
	}
	e.Rebuild(docs)
	return e, nil
}

// AllDocTerms returns a deep copy of every live document's term-frequency
// map, keyed by document id. The orchestrator uses this as the seed set for
// a full Rebuild: it already holds everything ApplyDeltas would need to
// read back out of postings, without a round trip through the store.
func (e *Engine) AllDocTerms() map[string]TermFreq {
	e.mu.RLock()
	defer e.mu.RUnlock()

	docs := make(map[string]TermFreq, len(e.docTerms))
	for id, tf := range e.docTerms {
		cp := make(TermFreq, len(tf))
		for term, count := range tf {
			cp[term] = count
		}
		docs[id] = cp
	}
	return docs
}

// PersistSnapshot writes this run's changed and removed documents to the
// store using the two write patterns §4.3 calls for: bulkInitial selects a
// single batched-transaction bulk insert for the first-ever index of a
// store, while every later run issues real point updates/deletes
// (ReplaceDocumentPostings/DeleteDocumentPostings) per changed or removed
// document id. Either way the idf table is reconciled against the engine's
// current term set afterward, so a term that just dropped to zero df is
// purged rather than left behind as an orphaned row.
func (e *Engine) PersistSnapshot(ctx context.Context, s *store.Store, changedDocIDs, removedDocIDs []string, bulkInitial bool) error {
	e.mu.RLock()
	type docUpdate struct {
		docID    string
		postings []store.Posting
	}
	updates := make([]docUpdate, 0, len(changedDocIDs))
	for _, docID := range changedDocIDs {
		tf := e.docTerms[docID]
		postings := make([]store.Posting, 0, len(tf))
		for term, count := range tf {
			postings = append(postings, store.Posting{Term: term, DocID: docID, TF: count})
		}
		updates = append(updates, docUpdate{docID: docID, postings: postings})
	}

	idf := make([]store.IDFEntry, 0, len(e.df))
	currentTerms := make(map[string]bool, len(e.df))
	for term, df := range e.df {
		idf = append(idf, store.IDFEntry{Term: term, DF: df, IDF: e.idfLocked(term)})
		currentTerms[term] = true
	}
	e.mu.RUnlock()

	if bulkInitial {
		var all []store.Posting
		for _, u := range updates {
			all = append(all, u.postings...)
		}
		if err := s.BulkInsertPostings(ctx, all); err != nil {
			return err
		}
	} else {
		for _, docID := range removedDocIDs {
			if err := s.DeleteDocumentPostings(ctx, docID); err != nil {
				return err
			}
		}
		for _, u := range updates {
			if err := s.ReplaceDocumentPostings(ctx, u.docID, u.postings); err != nil {
				return err
			}
		}
	}

	existing, err := s.AllIDF(ctx)
	if err != nil {
		return err
	}
	var purge []string
	for term := range existing {
		if !currentTerms[term] {
			purge = append(purge, term)
		}
	}

	return s.ReplaceIDF(ctx, idf, purge)
}

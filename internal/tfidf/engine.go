package tfidf

import (
	"math"
	"sort"
	"sync"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// Engine is the in-memory TF-IDF core. idf is never cached: it is always
// derived from the live document count and the live per-term document
// frequency, so the index it produces is, by construction, bit-identical in
// its search output to a full rebuild over the same final document set —
// there is no order-dependent cached value that could diverge between an
// incremental path and a rebuild path.
type Engine struct {
	mu sync.RWMutex

	postings   map[string]map[string]int // term -> docID -> tf
	docTerms   map[string]TermFreq       // docID -> full term map (for per-doc norm)
	docLengths map[string]int            // docID -> len(d)
	df         map[string]int            // term -> document frequency
	n          int                       // current document count
}

// New creates an empty Engine.
func New() *Engine {
	return &Engine{
		postings:   make(map[string]map[string]int),
		docTerms:   make(map[string]TermFreq),
		docLengths: make(map[string]int),
		df:         make(map[string]int),
	}
}

// N returns the current document count.
func (e *Engine) N() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.n
}

// TermCount returns the number of distinct terms in the postings table.
func (e *Engine) TermCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.postings)
}

// Contains reports whether id currently has postings.
func (e *Engine) Contains(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.docTerms[id]
	return exists
}

// AddDocument appends postings for a new document id, incrementing df for
// every term it contains.
func (e *Engine) AddDocument(id string, tf TermFreq) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.docTerms[id]; exists {
		return apperrors.DuplicateID(id)
	}
	e.insertLocked(id, tf)
	return nil
}

func (e *Engine) insertLocked(id string, tf TermFreq) {
	e.n++
	e.docTerms[id] = tf
	e.docLengths[id] = tf.Length()

	for term, count := range tf {
		if e.postings[term] == nil {
			e.postings[term] = make(map[string]int)
		}
		e.postings[term][id] = count
		e.df[term]++
	}
}

// RemoveDocument removes a document's postings, decrementing df for every
// term it contained and purging any term whose df reaches zero. Removing an
// unknown id is a no-op.
func (e *Engine) RemoveDocument(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(id)
}

func (e *Engine) removeLocked(id string) {
	tf, exists := e.docTerms[id]
	if !exists {
		return
	}
	for term := range tf {
		e.decrementDFLocked(term)
		delete(e.postings[term], id)
		if len(e.postings[term]) == 0 {
			delete(e.postings, term)
		}
	}
	delete(e.docTerms, id)
	delete(e.docLengths, id)
	e.n--
}

func (e *Engine) decrementDFLocked(term string) {
	e.df[term]--
	if e.df[term] <= 0 {
		delete(e.df, term)
	}
}

// UpdateDocument replaces a document's term map. It is computed as a
// set-symmetric-difference over terms rather than remove+add, so df only
// moves for terms that actually entered or left the document.
func (e *Engine) UpdateDocument(id string, newTF TermFreq) {
	e.mu.Lock()
	defer e.mu.Unlock()

	oldTF, existed := e.docTerms[id]
	if !existed {
		e.insertLocked(id, newTF)
		return
	}

	for term := range oldTF {
		if _, stillPresent := newTF[term]; !stillPresent {
			e.decrementDFLocked(term)
			delete(e.postings[term], id)
			if len(e.postings[term]) == 0 {
				delete(e.postings, term)
			}
		}
	}
	for term, count := range newTF {
		if _, existedBefore := oldTF[term]; !existedBefore {
			e.df[term]++
		}
		if e.postings[term] == nil {
			e.postings[term] = make(map[string]int)
		}
		e.postings[term][id] = count
	}

	e.docTerms[id] = newTF
	e.docLengths[id] = newTF.Length()
}

// idfLocked computes idf = log((N+1)/(df+1)) + 1, natural log, for the
// current N and the given term's current df (0 if the term is absent).
func (e *Engine) idfLocked(term string) float64 {
	df := e.df[term]
	return math.Log((float64(e.n)+1)/(float64(df)+1)) + 1
}

// Search scores every candidate document (one sharing at least one query
// term) by Sigma over matched terms of (tf/len(d)) * idf, divided by the
// document's own TF-IDF vector norm, then sorts by score descending with
// ties broken by path ascending. Matched terms absent from the index
// contribute zero. An empty query yields an empty result.
func (e *Engine) Search(queryTerms []string, limit int, minScore float64, filter func(docID string) bool) []Result {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(queryTerms) == 0 {
		return []Result{}
	}

	seen := make(map[string]bool, len(queryTerms))
	unique := make([]string, 0, len(queryTerms))
	for _, term := range queryTerms {
		if !seen[term] {
			seen[term] = true
			unique = append(unique, term)
		}
	}

	rawScores := make(map[string]float64)
	matched := make(map[string]map[string]bool)

	for _, term := range unique {
		docs, exists := e.postings[term]
		if !exists {
			continue
		}
		idf := e.idfLocked(term)
		for docID, tf := range docs {
			length := e.docLengths[docID]
			if length == 0 {
				continue
			}
			rawScores[docID] += (float64(tf) / float64(length)) * idf
			if matched[docID] == nil {
				matched[docID] = make(map[string]bool)
			}
			matched[docID][term] = true
		}
	}

	results := make([]Result, 0, len(rawScores))
	for docID, raw := range rawScores {
		if filter != nil && !filter(docID) {
			continue
		}
		norm := e.documentNormLocked(docID)
		score := 0.0
		if norm > 0 {
			score = raw / norm
		}
		if score < minScore {
			continue
		}

		terms := make([]string, 0, len(matched[docID]))
		for term := range matched[docID] {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		results = append(results, Result{Path: docID, Score: score, MatchedTerms: terms})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// documentNormLocked computes the L2 norm of a document's full TF-IDF
// vector (over every term it contains, not just the matched query terms),
// using the live idf of each term.
func (e *Engine) documentNormLocked(docID string) float64 {
	tf, exists := e.docTerms[docID]
	if !exists {
		return 0
	}
	length := e.docLengths[docID]
	if length == 0 {
		return 0
	}

	var sumSquares float64
	for term, count := range tf {
		weight := (float64(count) / float64(length)) * e.idfLocked(term)
		sumSquares += weight * weight
	}
	return math.Sqrt(sumSquares)
}

// Rebuild discards all current state and re-adds every document in docs.
// The order of iteration does not affect final df/idf state, since both
// are pure functions of the final document set.
func (e *Engine) Rebuild(docs map[string]TermFreq) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.postings = make(map[string]map[string]int)
	e.docTerms = make(map[string]TermFreq)
	e.docLengths = make(map[string]int)
	e.df = make(map[string]int)
	e.n = 0

	for id, tf := range docs {
		e.insertLocked(id, tf)
	}
}

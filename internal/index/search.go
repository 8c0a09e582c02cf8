package index

import (
	"context"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opencodesearch/codesearch/internal/cache"
	"github.com/opencodesearch/codesearch/internal/hybrid"
	"github.com/opencodesearch/codesearch/internal/tokenize"
)

// Search runs lexical, vector, or hybrid search per §4.8 and the result
// envelope in §6. Results with an active Filter bypass the cache: a
// caller-supplied predicate can't be represented in a cache key.
// IncludeContent re-reads the matched files from disk on every call
// (cached or not), since that content isn't itself subject to the
// mutation-triggered cache flush.
func (o *Orchestrator) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	opts = opts.withDefaults()

	cacheable := opts.Filter == nil
	key := cache.QueryKey(string(opts.Mode)+"\x00"+query, opts.Limit, opts.MinScore, opts.VectorWeight)

	var results []Result
	if cacheable {
		if cached, ok := o.resultCache.Get(key); ok {
			results = cached
		}
	}

	if results == nil {
		results = o.computeSearch(ctx, query, opts)
		if cacheable {
			o.resultCache.Set(key, results)
		}
	}

	if opts.IncludeContent {
		o.attachContent(ctx, results)
	}
	return results, nil
}

// computeSearch fans the lexical and vector lookups out concurrently via
// errgroup, then fuses whichever streams came back. Either stream failing
// (no embedder, a provider error) simply leaves that stream empty rather
// than failing the search: hybrid degrades to whichever side is available.
func (o *Orchestrator) computeSearch(ctx context.Context, query string, opts SearchOptions) []Result {
	fanout := opts.Limit * 2

	var (
		lexical      []hybrid.StreamResult
		vectorStream []hybrid.StreamResult
		matchedMu    sync.Mutex
		matchedTerms = make(map[string][]string)
	)

	g, gctx := errgroup.WithContext(ctx)

	// Without an embedder, vector mode degrades to the lexical stream.
	vectorAvailable := o.embedder != nil && o.vectors != nil

	if opts.Mode != ModeVector || !vectorAvailable {
		g.Go(func() error {
			terms := tokenize.Tokenize(query, "generic")
			for _, r := range o.tfidf.Search(terms, fanout, 0, opts.Filter) {
				lexical = append(lexical, hybrid.StreamResult{Path: r.Path, Score: r.Score})
				matchedMu.Lock()
				matchedTerms[r.Path] = r.MatchedTerms
				matchedMu.Unlock()
			}
			return nil
		})
	}

	if opts.Mode != ModeLexical && vectorAvailable {
		g.Go(func() error {
			qvec, err := o.embedder.Embed(gctx, query)
			if err != nil {
				return nil
			}
			filter := vectorFilterFor(opts.Filter)
			results, err := o.vectors.Search(gctx, qvec, fanout, 0, filter)
			if err != nil {
				return nil
			}
			for _, r := range results {
				vectorStream = append(vectorStream, hybrid.StreamResult{Path: r.ID, Score: float64(r.Score)})
			}
			return nil
		})
	}

	_ = g.Wait()

	weight := weightFor(opts.Mode, opts.VectorWeight)
	if !vectorAvailable {
		weight = 0
	}
	fused := hybrid.Fuse(lexical, vectorStream, weight)
	fused = hybrid.ApplyMinScoreAndLimit(fused, opts.MinScore, opts.Limit)

	out := make([]Result, 0, len(fused))
	for _, r := range fused {
		out = append(out, Result{
			Path:         r.Path,
			Score:        r.Score,
			Provenance:   r.Provenance,
			Similarity:   r.VectorRaw,
			MatchedTerms: matchedTerms[r.Path],
		})
	}
	return out
}

func weightFor(mode Mode, w float64) float64 {
	switch mode {
	case ModeLexical:
		return 0
	case ModeVector:
		return 1
	default:
		return w
	}
}

func vectorFilterFor(filter func(string) bool) func(metadata map[string]string) bool {
	if filter == nil {
		return nil
	}
	return func(metadata map[string]string) bool {
		return filter(metadata["path"])
	}
}

func (o *Orchestrator) attachContent(ctx context.Context, results []Result) {
	for i := range results {
		rec, ok, err := o.store.GetFileRecord(ctx, results[i].Path)
		if err != nil || !ok {
			continue
		}
		results[i].Language = rec.Language
		results[i].ContentPreview = readPreview(rec.AbsPath)
	}
}

// readPreview re-reads a file's first contentPreviewLimit runes from disk.
// A missing or unreadable file yields an empty preview rather than an
// error: the search path never throws on data issues (§7).
func readPreview(absPath string) string {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return ""
	}
	return truncatePreview(string(content))
}

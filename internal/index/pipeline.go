package index

import (
	"context"
	"os"

	"github.com/opencodesearch/codesearch/internal/apperrors"
	"github.com/opencodesearch/codesearch/internal/async"
	"github.com/opencodesearch/codesearch/internal/scan"
	"github.com/opencodesearch/codesearch/internal/store"
	"github.com/opencodesearch/codesearch/internal/tfidf"
	"github.com/opencodesearch/codesearch/internal/tokenize"
)

// Index runs the pipeline: scanning, tfidf, vectors, persist/cache-clear,
// complete. Concurrent callers join the same run via singleflight rather
// than starting a second pipeline.
func (o *Orchestrator) Index(ctx context.Context, opts IndexOptions) error {
	_, err, _ := o.sf.Do(singleflightKey, func() (interface{}, error) {
		return nil, o.runPipeline(ctx, opts)
	})
	return err
}

func (o *Orchestrator) runPipeline(ctx context.Context, opts IndexOptions) error {
	report := func() {
		if opts.OnProgress != nil {
			opts.OnProgress(toSnapshot(o.progress.Snapshot()))
		}
	}

	o.progress.SetStage(async.StageScanning, 0)
	report()

	diff, err := o.scanner.Scan(ctx, o.scanOptions(), o.knownSnapshot())
	if err != nil {
		o.progress.Fail(err.Error())
		report()
		return err
	}

	total := len(diff.New) + len(diff.Changed) + len(diff.Missing)
	o.progress.Advance(total, "")
	report()

	cancelled := o.checkCancel(ctx)

	o.progress.SetStage(async.StageTFIDF, total)
	report()

	changes, records, cancelled := o.buildChanges(ctx, diff, cancelled, report)
	o.applyTFIDFChanges(changes)

	var providerErr error
	if !cancelled && o.vectors != nil {
		providerErr = o.applyVectorChanges(ctx, diff, report)
	}

	if err := o.persist(ctx, records, diff.Missing); err != nil {
		o.progress.Fail(err.Error())
		report()
		return err
	}

	if providerErr != nil {
		o.progress.NoteError(providerErr.Error())
	}
	o.progress.Complete()
	report()

	if cancelled {
		return apperrors.Cancelled()
	}
	return nil
}

func (o *Orchestrator) checkCancel(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// buildChanges tokenizes every new/changed file and builds the removal set
// for missing files, stopping early (without aborting the pipeline) if
// cancellation fires between files.
func (o *Orchestrator) buildChanges(ctx context.Context, diff *scan.Diff, alreadyCancelled bool, report func()) ([]tfidf.Change, []store.FileRecord, bool) {
	cancelled := alreadyCancelled
	var changes []tfidf.Change
	var records []store.FileRecord

	upsert := append(append([]scan.FileInfo{}, diff.New...), diff.Changed...)
	processed := 0
	for _, info := range upsert {
		if cancelled || o.checkCancel(ctx) {
			cancelled = true
			break
		}

		content, err := os.ReadFile(info.AbsPath)
		if err != nil {
			processed++
			continue
		}
		lang := info.Language
		if lang == "" {
			lang = "generic"
		}
		tf := make(tfidf.TermFreq)
		for _, term := range tokenize.Tokenize(string(content), lang) {
			tf[term]++
		}

		changes = append(changes, tfidf.Change{DocID: info.Path, TF: tf})
		records = append(records, store.FileRecord{
			Path:        info.Path,
			AbsPath:     info.AbsPath,
			Size:        info.Size,
			ContentHash: info.ContentHash,
			Language:    info.Language,
			IndexedAt:   info.ModTime,
		})

		processed++
		o.progress.Advance(processed, info.Path)
		report()
	}

	if !cancelled {
		for _, path := range diff.Missing {
			changes = append(changes, tfidf.Change{DocID: path, TF: nil})
		}
	}

	return changes, records, cancelled
}

// applyTFIDFChanges applies the rebuild-vs-delta decision rule (§4.5): a
// full rebuild is seeded from the engine's own current document-term maps
// (AllDocTerms) so it never needs to re-read file content.
func (o *Orchestrator) applyTFIDFChanges(changes []tfidf.Change) {
	if len(changes) == 0 {
		return
	}

	if tfidf.ShouldRebuild(len(changes), o.tfidf.N(), o.cfg.RebuildThreshold) {
		docs := o.tfidf.AllDocTerms()
		for _, c := range changes {
			if c.IsRemoval() {
				delete(docs, c.DocID)
			} else {
				docs[c.DocID] = c.TF
			}
		}
		o.tfidf.Rebuild(docs)
		return
	}

	o.tfidf.ApplyDeltas(changes)
}

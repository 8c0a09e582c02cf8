package index

import (
	"context"
	"os"

	"github.com/opencodesearch/codesearch/internal/apperrors"
	"github.com/opencodesearch/codesearch/internal/async"
	"github.com/opencodesearch/codesearch/internal/scan"
)

// contentPreviewLimit is the maximum rune count kept in a vector record's
// metadata, per §3's VectorRecord definition.
const contentPreviewLimit = 500

// isIndexableLanguage reports whether a detected language is eligible for
// embedding. Files DetectLanguage could not classify (language == "") are
// excluded from the vector store, which is what the §8 invariant
// `|vector_store.live_slots| = |{FileRecord : language indexable}|` checks
// against.
func isIndexableLanguage(language string) bool {
	return language != ""
}

// applyVectorChanges batch-embeds new/changed indexable documents and
// upserts them into the vector store, and removes missing documents. A
// provider failure is non-fatal (§7 ProviderError): the vector stage is
// skipped and the error is returned for the caller to record alongside an
// otherwise-complete pipeline.
func (o *Orchestrator) applyVectorChanges(ctx context.Context, diff *scan.Diff, report func()) error {
	o.progress.SetStage(async.StageVectors, 0)
	report()

	for _, path := range diff.Missing {
		_ = o.vectors.Delete(ctx, path)
	}

	upsert := make([]scan.FileInfo, 0, len(diff.New)+len(diff.Changed))
	upsert = append(upsert, diff.New...)
	upsert = append(upsert, diff.Changed...)

	var infos []scan.FileInfo
	var texts []string
	for _, info := range upsert {
		if !isIndexableLanguage(info.Language) {
			continue
		}
		content, err := os.ReadFile(info.AbsPath)
		if err != nil {
			continue
		}
		infos = append(infos, info)
		texts = append(texts, string(content))
	}
	if len(texts) == 0 {
		return nil
	}

	o.progress.SetStage(async.StageVectors, len(texts))
	report()

	vectors, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeProviderError, "embed batch", err)
	}

	for i, info := range infos {
		if o.checkCancel(ctx) {
			break
		}
		metadata := map[string]string{
			"path":           info.Path,
			"language":       info.Language,
			"contentPreview": truncatePreview(texts[i]),
		}
		if o.vectors.Contains(info.Path) {
			_ = o.vectors.Update(ctx, info.Path, vectors[i], metadata)
		} else {
			_ = o.vectors.Add(ctx, info.Path, vectors[i], metadata)
		}
		o.progress.Advance(i+1, info.Path)
		report()
	}

	if o.vectors.Stats().DeletedRatio() > compactionThreshold {
		_ = o.vectors.Compact(ctx)
	}
	return nil
}

func truncatePreview(s string) string {
	r := []rune(s)
	if len(r) <= contentPreviewLimit {
		return s
	}
	return string(r[:contentPreviewLimit])
}

package index

import (
	"context"
	"path/filepath"

	"github.com/opencodesearch/codesearch/internal/store"
)

// persist writes the pipeline run's changes to the store, saves the vector
// snapshot, and clears the result cache — the "persist/cache-clear" stage.
func (o *Orchestrator) persist(ctx context.Context, records []store.FileRecord, missing []string) error {
	o.knownMu.RLock()
	bulkInitial := len(o.known) == 0
	o.knownMu.RUnlock()

	if len(records) > 0 {
		if err := o.store.BulkUpsertFileRecords(ctx, records); err != nil {
			return err
		}
	}
	for _, path := range missing {
		if err := o.store.DeleteFileRecord(ctx, path); err != nil {
			return err
		}
	}

	changedDocIDs := make([]string, len(records))
	for i, r := range records {
		changedDocIDs[i] = r.Path
	}
	if err := o.tfidf.PersistSnapshot(ctx, o.store, changedDocIDs, missing, bulkInitial); err != nil {
		return err
	}

	if o.vectors != nil {
		vecPath := filepath.Join(o.storeDir, vectorIndexFilename)
		if err := o.vectors.Save(vecPath); err != nil {
			return err
		}
	}

	o.resultCache.Flush()

	o.knownMu.Lock()
	for _, r := range records {
		o.known[r.Path] = r.ContentHash
	}
	for _, path := range missing {
		delete(o.known, path)
	}
	o.knownMu.Unlock()

	return nil
}

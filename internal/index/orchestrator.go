package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/opencodesearch/codesearch/internal/apperrors"
	"github.com/opencodesearch/codesearch/internal/async"
	"github.com/opencodesearch/codesearch/internal/cache"
	"github.com/opencodesearch/codesearch/internal/config"
	"github.com/opencodesearch/codesearch/internal/embedding"
	"github.com/opencodesearch/codesearch/internal/scan"
	"github.com/opencodesearch/codesearch/internal/store"
	"github.com/opencodesearch/codesearch/internal/tfidf"
	"github.com/opencodesearch/codesearch/internal/vector"
	"github.com/opencodesearch/codesearch/internal/watch"
)

// vectorIndexFilename is the HNSW graph file under the store directory;
// its JSON sidecar lives alongside at vectorIndexFilename+".metadata.json".
const vectorIndexFilename = "vectors.hnsw"

// singleflightKey is the constant key every Index call joins on, giving
// the orchestrator its single-flight guarantee (§4.10, §9).
const singleflightKey = "index"

// compactionThreshold is the logical-delete ratio (§4.6) above which the
// orchestrator compacts the vector store after a pipeline run.
const compactionThreshold = 0.30

// Orchestrator (C10) is the indexer orchestrator: index(), search(),
// status(), close(), plus optional watch-mode background reindexing.
type Orchestrator struct {
	cfg      *config.Config
	storeDir string

	store       *store.Store
	scanner     *scan.Scanner
	tfidf       *tfidf.Engine
	vectors     *vector.Store
	embedder    embedding.Embedder
	resultCache *cache.Cache[[]Result]

	sf       singleflight.Group
	progress *async.Progress
	bg       backgroundState

	watchMu   sync.Mutex
	watcher   watch.Watcher
	watchDone chan struct{}

	knownMu sync.RWMutex
	known   map[string]string // path -> content hash, mirrors file_records
}

// Open wires together the store, scanner, TF-IDF engine (reloaded from the
// store), and vector store (reloaded from its snapshot if present) for
// cfg.CodebaseRoot. embedder may be nil, in which case vector/hybrid search
// degrade to lexical-only per §4.8.
func Open(ctx context.Context, cfg *config.Config, embedder embedding.Embedder) (*Orchestrator, error) {
	storeDir := config.StoreDir(cfg.CodebaseRoot)

	st, err := store.Open(storeDir)
	if err != nil {
		return nil, err
	}

	sc, err := scan.New()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	eng, err := tfidf.LoadFromStore(ctx, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	records, err := st.ListFileRecords(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	known := make(map[string]string, len(records))
	for path, rec := range records {
		known[path] = rec.ContentHash
	}

	o := &Orchestrator{
		cfg:      cfg,
		storeDir: storeDir,
		store:    st,
		scanner:  sc,
		tfidf:    eng,
		embedder: embedder,
		progress: async.NewProgress(),
		known:    known,
	}

	ttl := time.Duration(cfg.Cache.TTLMs) * time.Millisecond
	o.resultCache = cache.New[[]Result](cfg.Cache.Capacity, ttl)

	if embedder != nil {
		vecCfg := vector.Config{
			Dimensions:     embedder.Dimensions(),
			MaxElements:    cfg.HNSW.MaxElements,
			M:              cfg.HNSW.M,
			EfConstruction: cfg.HNSW.EfConstruction,
			EfSearch:       cfg.HNSW.EfSearch,
		}
		vs, err := vector.New(vecCfg)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		vecPath := filepath.Join(storeDir, vectorIndexFilename)
		if _, statErr := os.Stat(vecPath + ".metadata.json"); statErr == nil {
			if err := vs.Load(vecPath); err != nil {
				_ = st.Close()
				return nil, apperrors.Wrap(apperrors.CodeIndexCorruption, "load vector snapshot", err)
			}
		}
		o.vectors = vs
	}

	return o, nil
}

// Status returns the current IndexingStatus, extended with the current
// lexical/vector index sizes regardless of whether a run is in progress.
func (o *Orchestrator) Status() Snapshot {
	snap := toSnapshot(o.progress.Snapshot())
	snap.DocCount = o.tfidf.N()
	snap.TermCount = o.tfidf.TermCount()
	if o.vectors != nil {
		snap.VectorCount = o.vectors.Count()
	}
	return snap
}

func toSnapshot(s async.Status) Snapshot {
	return Snapshot{
		IsIndexing:   s.IsIndexing,
		Stage:        string(s.Stage),
		Progress:     s.Progress,
		TotalFiles:   s.TotalFiles,
		IndexedFiles: s.IndexedFiles,
		CurrentFile:  s.CurrentFile,
		Error:        s.Error,
	}
}

// Close stops watch mode if running, saves the vector snapshot, and
// releases the persistent store.
func (o *Orchestrator) Close() error {
	o.StopBackgroundIndexing()
	_ = o.StopWatching()

	if o.vectors != nil {
		vecPath := filepath.Join(o.storeDir, vectorIndexFilename)
		if err := o.vectors.Save(vecPath); err != nil {
			slog.Warn("failed to save vector snapshot on close", slog.String("error", err.Error()))
		}
	}
	return o.store.Close()
}

func (o *Orchestrator) scanOptions() scan.Options {
	return scan.Options{
		RootDir:     o.cfg.CodebaseRoot,
		IgnoreExtra: o.cfg.IgnoreExtra,
		MaxFileSize: o.cfg.MaxFileSize,
	}
}

func (o *Orchestrator) knownSnapshot() map[string]string {
	o.knownMu.RLock()
	defer o.knownMu.RUnlock()
	out := make(map[string]string, len(o.known))
	for k, v := range o.known {
		out[k] = v
	}
	return out
}

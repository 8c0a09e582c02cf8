// Package codesearch is the public operations API (§6): index, search,
// status, and close over a local, embedded codebase search engine. It is a
// thin facade over internal/index.Orchestrator — every method here does
// nothing but validate and delegate, so the orchestrator remains the single
// place pipeline, search, and consistency logic live.
package codesearch

import (
	"context"

	"github.com/opencodesearch/codesearch/internal/config"
	"github.com/opencodesearch/codesearch/internal/embedding"
	"github.com/opencodesearch/codesearch/internal/index"
)

// Re-exported so callers never need to import internal/index directly.
type (
	Mode              = index.Mode
	IndexOptions      = index.IndexOptions
	Snapshot          = index.Snapshot
	SearchOptions     = index.SearchOptions
	Result            = index.Result
	CheckResult       = index.CheckResult
	Inconsistency     = index.Inconsistency
	InconsistencyType = index.InconsistencyType
	Embedder          = embedding.Embedder
	Config            = config.Config
)

const (
	ModeLexical = index.ModeLexical
	ModeVector  = index.ModeVector
	ModeHybrid  = index.ModeHybrid
)

// DefaultSearchOptions returns the documented defaults (§6): limit 10, mode
// hybrid, vectorWeight 0.7, minScore 0.01.
func DefaultSearchOptions() SearchOptions {
	return index.DefaultSearchOptions()
}

// DefaultConfig returns a Config with every recognized option at its
// documented default and CodebaseRoot left empty.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML config file, merging it over the defaults and
// applying environment overrides. A missing path is not an error.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Engine is one open codebase-search instance over a single codebase root.
// It owns the persistent store, the in-memory TF-IDF engine, the vector
// store (if an Embedder was supplied), and the result cache. An Engine must
// be closed with Close when no longer needed.
type Engine struct {
	o *index.Orchestrator
}

// Open wires together the persistent store, scanner, TF-IDF engine, and (if
// embedder is non-nil) vector store for cfg.CodebaseRoot, reloading any
// existing index found under cfg.CodebaseRoot's store directory. embedder
// may be nil, in which case vector and hybrid search degrade to
// lexical-only per §4.8.
func Open(ctx context.Context, cfg *Config, embedder Embedder) (*Engine, error) {
	o, err := index.Open(ctx, cfg, embedder)
	if err != nil {
		return nil, err
	}
	return &Engine{o: o}, nil
}

// Index runs one full index/update pipeline (scan, tokenize, tf-idf,
// vectors, persist). Concurrent callers join the same in-flight run rather
// than racing (§4.10, §9).
func (e *Engine) Index(ctx context.Context, opts IndexOptions) error {
	return e.o.Index(ctx, opts)
}

// StartBackgroundIndexing launches Index in a cancellable background
// goroutine. A second call while one is already running is a no-op.
func (e *Engine) StartBackgroundIndexing(ctx context.Context, opts IndexOptions) {
	e.o.StartBackgroundIndexing(ctx, opts)
}

// StopBackgroundIndexing cancels and waits for any in-flight background run.
// It is a no-op if none is running.
func (e *Engine) StopBackgroundIndexing() {
	e.o.StopBackgroundIndexing()
}

// StartWatching begins filesystem watch mode: on every debounced batch of
// file events under cfg.CodebaseRoot, it triggers a full Index run with
// opts. A second call while watching is a no-op.
func (e *Engine) StartWatching(ctx context.Context, opts IndexOptions) error {
	return e.o.StartWatching(ctx, opts)
}

// StopWatching stops watch mode. It is a no-op if not currently watching.
func (e *Engine) StopWatching() error {
	return e.o.StopWatching()
}

// Search runs a lexical, vector, or hybrid query against the current index
// and returns ranked results per §6's result envelope.
func (e *Engine) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	return e.o.Search(ctx, query, opts)
}

// Status returns the current IndexingStatus, extended with document/term/
// vector counts.
func (e *Engine) Status() Snapshot {
	return e.o.Status()
}

// Check runs the full consistency pass over the three §8 invariants
// (term/df drift, orphan postings, vector-count mismatch).
func (e *Engine) Check(ctx context.Context) (*CheckResult, error) {
	return e.o.Check(ctx)
}

// QuickCheck runs the cheap count-only subset of Check, suitable for
// calling on a schedule.
func (e *Engine) QuickCheck(ctx context.Context) (bool, error) {
	return e.o.QuickCheck(ctx)
}

// Close stops watch mode and background indexing if running, saves the
// vector snapshot, and releases the persistent store.
func (e *Engine) Close() error {
	return e.o.Close()
}

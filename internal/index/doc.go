// Package index implements the indexer orchestrator (C10): it owns the
// scanner, TF-IDF engine, vector store, persistent store, and result cache,
// and exposes index/startBackgroundIndexing/search/status/close plus
// optional filesystem watch-mode reindexing. A single-flight guarantee
// (golang.org/x/sync/singleflight) ensures at most one pipeline run is in
// flight at a time; concurrent callers join the in-progress run instead of
// starting a second one.
package index

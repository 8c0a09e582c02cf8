// Package watch implements watch mode (C10): a file system watcher that
// accumulates raw change events into a debounced pending-change queue, which
// the indexer orchestrator drains and feeds to the pipeline as a single
// batch. fsnotify is used when available; a stat-based poller is the
// fallback when it is not.
package watch

package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/opencodesearch/codesearch/internal/watch"
)

// StartWatching starts filesystem watch mode: debounced batches of file
// events each trigger an Index run with the same options used throughout
// the watch's lifetime. It is a no-op if watch mode is already running.
func (o *Orchestrator) StartWatching(ctx context.Context, opts IndexOptions) error {
	o.watchMu.Lock()
	defer o.watchMu.Unlock()

	if o.watcher != nil {
		return nil
	}

	w := watch.New(watch.Options{
		IgnoreExtra:    o.cfg.IgnoreExtra,
		DebounceWindow: time.Duration(o.cfg.DebounceMs) * time.Millisecond,
	}.WithDefaults())
	// FSWatcher.Start blocks until Stop or ctx cancellation, so it runs on
	// its own goroutine.
	go func() {
		if err := w.Start(ctx, o.cfg.CodebaseRoot); err != nil {
			slog.Warn("watcher stopped with an error", slog.String("error", err.Error()))
		}
	}()

	o.watcher = w
	o.watchDone = make(chan struct{})

	go o.watchLoop(ctx, w, opts)
	return nil
}

// watchLoop runs until its FSWatcher's Events channel closes (on Stop) or
// ctx is cancelled, running one Index call per flushed batch.
func (o *Orchestrator) watchLoop(ctx context.Context, w watch.Watcher, opts IndexOptions) {
	defer close(o.watchDone)

	events := w.Events()
	errs := w.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			if err := o.Index(ctx, opts); err != nil {
				slog.Warn("watch-triggered index failed", slog.String("error", err.Error()))
			}
		case err, ok := <-errs:
			if !ok {
				continue
			}
			slog.Warn("watcher reported an error", slog.String("error", err.Error()))
		}
	}
}

// StopWatching stops watch mode if running; it is a no-op otherwise.
func (o *Orchestrator) StopWatching() error {
	o.watchMu.Lock()
	w := o.watcher
	done := o.watchDone
	o.watcher = nil
	o.watchMu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Stop()
	<-done
	return err
}

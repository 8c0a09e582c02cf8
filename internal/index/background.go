package index

import (
	"context"
	"log/slog"
	"sync"
)

// backgroundState tracks the single background indexing run an Orchestrator
// may have in flight, guarding StartBackgroundIndexing against overlapping
// callers: a second call while one is running joins the existing run's
// lifecycle rather than starting another.
type backgroundState struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// StartBackgroundIndexing launches Index asynchronously and returns
// immediately; callers observe progress via Status. Index already
// single-flights concurrent runs, so a second call here while one is in
// flight simply returns without starting a redundant goroutine.
func (o *Orchestrator) StartBackgroundIndexing(ctx context.Context, opts IndexOptions) {
	o.bg.mu.Lock()
	defer o.bg.mu.Unlock()

	if o.bg.cancel != nil {
		select {
		case <-o.bg.done:
		default:
			return
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	o.bg.cancel = cancel
	o.bg.done = done

	go func() {
		defer close(done)
		defer cancel()
		if err := o.Index(runCtx, opts); err != nil {
			slog.Warn("background indexing run failed", slog.String("error", err.Error()))
		}
	}()
}

// StopBackgroundIndexing cancels an in-flight StartBackgroundIndexing run
// and waits for it to return. It is a no-op if none is running.
func (o *Orchestrator) StopBackgroundIndexing() {
	o.bg.mu.Lock()
	cancel := o.bg.cancel
	done := o.bg.done
	o.bg.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

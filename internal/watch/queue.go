package watch

import (
	"log/slog"
	"sync"
	"time"
)

// pendingQueue coalesces rapid file events per §3's dedup policy:
//   - later events for the same path supersede earlier ones
//   - add + delete cancels (the file never meaningfully existed)
//   - add + update collapses to add (still a new file, latest content)
type pendingQueue struct {
	window  time.Duration
	pending map[string]Operation
	mu      sync.Mutex
	output  chan []FileEvent
	timer   *time.Timer
	stopped bool
}

func newPendingQueue(window time.Duration, bufferSize int) *pendingQueue {
	return &pendingQueue{
		window:  window,
		pending: make(map[string]Operation),
		output:  make(chan []FileEvent, bufferSize),
	}
}

// Add records an event for path, coalescing with anything already pending
// for that path, and (re)schedules a flush after the debounce window.
func (q *pendingQueue) Add(event FileEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}

	if existing, ok := q.pending[event.Path]; ok {
		coalesced, keep := coalesce(existing, event.Operation)
		if !keep {
			delete(q.pending, event.Path)
			q.scheduleFlushLocked()
			return
		}
		q.pending[event.Path] = coalesced
	} else {
		q.pending[event.Path] = event.Operation
	}

	q.scheduleFlushLocked()
}

// coalesce applies §3's dedup policy. Returns keep=false when the pair
// cancels entirely (add then delete).
func coalesce(existing, next Operation) (result Operation, keep bool) {
	switch existing {
	case OpAdd:
		switch next {
		case OpDelete:
			return existing, false
		default: // OpAdd or OpUpdate both collapse to add with latest content
			return OpAdd, true
		}
	default: // OpUpdate or OpDelete: the later event supersedes
		return next, true
	}
}

func (q *pendingQueue) scheduleFlushLocked() {
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.window, q.flush)
}

func (q *pendingQueue) flush() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || len(q.pending) == 0 {
		return
	}

	events := make([]FileEvent, 0, len(q.pending))
	now := time.Now()
	for path, op := range q.pending {
		events = append(events, FileEvent{Path: path, Operation: op, Timestamp: now})
	}
	q.pending = make(map[string]Operation)

	select {
	case q.output <- events:
	default:
		slog.Warn("pending-change queue output full, dropping batch",
			slog.Int("batch_size", len(events)))
	}
}

// Output returns the channel of flushed, deduplicated batches.
func (q *pendingQueue) Output() <-chan []FileEvent {
	return q.output
}

// Stop halts scheduled flushes and closes the output channel.
func (q *pendingQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	if q.timer != nil {
		q.timer.Stop()
	}
	close(q.output)
}

package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// poller watches a root by periodically re-scanning it and diffing against
// the previous snapshot. Used when fsnotify fails to initialize.
type poller struct {
	interval time.Duration
	state    map[string]pollSnapshot
	events   chan FileEvent
	mu       sync.Mutex
	stopCh   chan struct{}
	stopped  bool
	root     string
}

type pollSnapshot struct {
	modTime time.Time
	size    int64
}

func newPoller(interval time.Duration) *poller {
	return &poller{
		interval: interval,
		state:    make(map[string]pollSnapshot),
		events:   make(chan FileEvent, 256),
		stopCh:   make(chan struct{}),
	}
}

func (p *poller) Start(ctx context.Context, root string) error {
	p.root = root
	if err := p.scan(); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "initial poll scan", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.detectChanges()
		}
	}
}

func (p *poller) scan() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(p.root, path)
		if relErr != nil {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		p.state[rel] = pollSnapshot{modTime: info.ModTime(), size: info.Size()}
		return nil
	})
}

func (p *poller) detectChanges() {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := make(map[string]pollSnapshot)
	_ = filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(p.root, path)
		if relErr != nil {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		snap := pollSnapshot{modTime: info.ModTime(), size: info.Size()}
		current[rel] = snap

		if prev, existed := p.state[rel]; !existed {
			p.emit(FileEvent{Path: rel, Operation: OpAdd, Timestamp: time.Now()})
		} else if prev.modTime != snap.modTime || prev.size != snap.size {
			p.emit(FileEvent{Path: rel, Operation: OpUpdate, Timestamp: time.Now()})
		}
		return nil
	})

	for rel := range p.state {
		if _, stillPresent := current[rel]; !stillPresent {
			p.emit(FileEvent{Path: rel, Operation: OpDelete, Timestamp: time.Now()})
		}
	}
	p.state = current
}

func (p *poller) emit(event FileEvent) {
	if p.stopped {
		return
	}
	select {
	case p.events <- event:
	default:
	}
}

func (p *poller) Events() <-chan FileEvent { return p.events }

func (p *poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
}

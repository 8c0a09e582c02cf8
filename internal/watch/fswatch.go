package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/opencodesearch/codesearch/internal/apperrors"
	"github.com/opencodesearch/codesearch/internal/gitignore"
)

var vcsDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// FSWatcher watches a root directory for changes, coalescing them through a
// debounced pending-change queue before emitting batches. It uses fsnotify
// when available and falls back to the stat-based poller otherwise.
type FSWatcher struct {
	opts          Options
	queue         *pendingQueue
	gitignore     *gitignore.Matcher
	fsw           *fsnotify.Watcher
	poll          *poller
	usingFsnotify bool
	root          string
	errors        chan error
	stopCh        chan struct{}
	mu            sync.RWMutex
	stopped       bool
}

var _ Watcher = (*FSWatcher)(nil)

// New creates an FSWatcher. fsnotify initialization failure is not fatal: the
// watcher falls back to polling.
func New(opts Options) *FSWatcher {
	opts = opts.WithDefaults()
	w := &FSWatcher{
		opts:      opts,
		queue:     newPendingQueue(opts.DebounceWindow, opts.EventBufferSize),
		gitignore: gitignore.New(),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}

	if fsw, err := fsnotify.NewWatcher(); err == nil {
		w.fsw = fsw
		w.usingFsnotify = true
	} else {
		w.poll = newPoller(opts.PollInterval)
	}
	return w
}

// Start begins watching root. It blocks until Stop is called or ctx is
// cancelled.
func (w *FSWatcher) Start(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "resolve watch root", err)
	}
	w.root = absRoot
	w.loadGitignore()

	if w.usingFsnotify {
		return w.runFsnotify(ctx)
	}
	return w.runPoll(ctx)
}

func (w *FSWatcher) runFsnotify(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "watch directory tree", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return nil
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleFsnotifyEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *FSWatcher) runPoll(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case ev, ok := <-w.poll.Events():
				if !ok {
					return
				}
				if w.shouldIgnore(ev.Path, false) {
					continue
				}
				w.queue.Add(ev)
			}
		}
	}()
	return w.poll.Start(ctx, w.root)
}

func (w *FSWatcher) handleFsnotifyEvent(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	isDir := false
	if info, statErr := os.Stat(ev.Name); statErr == nil {
		isDir = info.IsDir()
	}
	if w.shouldIgnore(rel, isDir) {
		return
	}

	if filepath.Base(ev.Name) == ".gitignore" {
		w.loadGitignore()
	}

	var op Operation
	switch {
	case ev.Op&fsnotify.Create != 0:
		op = OpAdd
		if isDir {
			_ = w.fsw.Add(ev.Name)
		}
	case ev.Op&fsnotify.Write != 0:
		op = OpUpdate
	case ev.Op&fsnotify.Remove != 0:
		op = OpDelete
	case ev.Op&fsnotify.Rename != 0:
		op = OpDelete
	default:
		return
	}

	w.queue.Add(FileEvent{Path: rel, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

// Events returns the channel of debounced, deduplicated batches.
func (w *FSWatcher) Events() <-chan []FileEvent {
	return w.queue.Output()
}

// Errors returns the channel of non-fatal watcher errors.
func (w *FSWatcher) Errors() <-chan error {
	return w.errors
}

func (w *FSWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if rel == "." {
			return w.fsw.Add(path)
		}
		if w.shouldIgnoreDir(rel) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *FSWatcher) shouldIgnoreDir(rel string) bool {
	if vcsDirs[filepath.Base(rel)] {
		return true
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.gitignore.Match(rel, true)
}

func (w *FSWatcher) shouldIgnore(rel string, isDir bool) bool {
	if rel == "." || rel == "" {
		return true
	}
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if vcsDirs[segment] {
			return true
		}
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.gitignore.Match(rel, isDir)
}

func (w *FSWatcher) loadGitignore() {
	w.mu.Lock()
	defer w.mu.Unlock()

	m := gitignore.New()
	for _, pattern := range w.opts.IgnoreExtra {
		m.AddPattern(pattern)
	}
	if err := m.AddFromFile(filepath.Join(w.root, ".gitignore"), ""); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load root .gitignore", slog.String("error", err.Error()))
	}
	_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != ".gitignore" {
			return nil
		}
		base, _ := filepath.Rel(w.root, filepath.Dir(path))
		if base == "." {
			base = ""
		}
		if addErr := m.AddFromFile(path, base); addErr != nil {
			slog.Warn("failed to load nested .gitignore",
				slog.String("path", path), slog.String("error", addErr.Error()))
		}
		return nil
	})
	w.gitignore = m
}

func (w *FSWatcher) emitError(err error) {
	w.mu.RLock()
	stopped := w.stopped
	w.mu.RUnlock()
	if stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

// Stop stops the watcher and releases resources. Safe to call multiple
// times.
func (w *FSWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.stopCh)
	w.queue.Stop()
	if w.usingFsnotify && w.fsw != nil {
		_ = w.fsw.Close()
	}
	if w.poll != nil {
		w.poll.Stop()
	}
	close(w.errors)
	return nil
}

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReturnsWatcherUsableImmediately(t *testing.T) {
	w := New(DefaultOptions())
	require.NotNil(t, w)
	defer func() { _ = w.Stop() }()
}

func TestFSWatcher_EmitsDebouncedBatchOnCreate(t *testing.T) {
	dir := t.TempDir()

	w := New(Options{DebounceWindow: 20 * time.Millisecond, EventBufferSize: 100})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		_ = w.Start(ctx, dir)
	}()
	<-started
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main"), 0o644))

	select {
	case batch := <-w.Events():
		require.Len(t, batch, 1)
		assert.Equal(t, "a.go", batch[0].Path)
		assert.Equal(t, OpAdd, batch[0].Operation)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for batch")
	}

	_ = w.Stop()
}

func TestFSWatcher_IgnoresGitDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	w := New(Options{DebounceWindow: 20 * time.Millisecond, EventBufferSize: 100})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		_ = w.Start(ctx, dir)
	}()
	<-started
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.go"), []byte("package main"), 0o644))

	select {
	case batch := <-w.Events():
		require.Len(t, batch, 1)
		assert.Equal(t, "real.go", batch[0].Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for batch")
	}

	_ = w.Stop()
}

func TestFSWatcher_HonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0o644))

	w := New(Options{DebounceWindow: 20 * time.Millisecond, EventBufferSize: 100})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		_ = w.Start(ctx, dir)
	}()
	<-started
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), []byte("noise"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.go"), []byte("package main"), 0o644))

	select {
	case batch := <-w.Events():
		require.Len(t, batch, 1)
		assert.Equal(t, "real.go", batch[0].Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for batch")
	}

	_ = w.Stop()
}

func TestFSWatcher_StopIsIdempotentAndClosesChannels(t *testing.T) {
	w := New(DefaultOptions())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}

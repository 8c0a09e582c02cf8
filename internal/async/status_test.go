package async

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgress_StartsIdle(t *testing.T) {
	p := NewProgress()
	require.NotNil(t, p)

	snap := p.Snapshot()
	assert.Equal(t, StageIdle, snap.Stage)
	assert.False(t, snap.IsIndexing)
	assert.Equal(t, 0, snap.TotalFiles)
}

func TestProgress_SetStage(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		total int
	}{
		{"scanning", StageScanning, 100},
		{"tfidf", StageTFIDF, 500},
		{"vectors", StageVectors, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress()
			p.SetStage(tt.stage, tt.total)

			snap := p.Snapshot()
			assert.Equal(t, tt.stage, snap.Stage)
			assert.Equal(t, tt.total, snap.TotalFiles)
			assert.True(t, snap.IsIndexing)
		})
	}
}

func TestProgress_Advance(t *testing.T) {
	p := NewProgress()
	p.SetStage(StageScanning, 100)
	p.Advance(50, "a.go")

	snap := p.Snapshot()
	assert.Equal(t, 50, snap.IndexedFiles)
	assert.Equal(t, "a.go", snap.CurrentFile)
	assert.Equal(t, 50, snap.Progress)
}

func TestProgress_Advance_ZeroTotalLeavesProgressZero(t *testing.T) {
	p := NewProgress()
	p.SetStage(StageScanning, 0)
	p.Advance(5, "a.go")

	assert.Equal(t, 0, p.Snapshot().Progress)
}

func TestProgress_Fail(t *testing.T) {
	p := NewProgress()
	p.SetStage(StageTFIDF, 10)
	p.Fail("store io failed")

	snap := p.Snapshot()
	assert.Equal(t, StageError, snap.Stage)
	assert.False(t, snap.IsIndexing)
	assert.Equal(t, "store io failed", snap.Error)
}

func TestProgress_NoteError_DoesNotChangeStage(t *testing.T) {
	p := NewProgress()
	p.SetStage(StageVectors, 10)
	p.NoteError("provider error")
	p.Complete()

	snap := p.Snapshot()
	assert.Equal(t, StageComplete, snap.Stage)
	assert.Equal(t, "provider error", snap.Error)
	assert.False(t, snap.IsIndexing)
}

func TestProgress_Complete(t *testing.T) {
	p := NewProgress()
	p.SetStage(StageVectors, 10)
	p.Advance(10, "z.go")
	p.Complete()

	snap := p.Snapshot()
	assert.Equal(t, StageComplete, snap.Stage)
	assert.False(t, snap.IsIndexing)
	assert.Equal(t, 100, snap.Progress)
}

func TestProgress_Snapshot_Immutable(t *testing.T) {
	p := NewProgress()
	p.SetStage(StageScanning, 100)
	p.Advance(10, "a.go")

	snap1 := p.Snapshot()
	p.Advance(20, "b.go")
	snap2 := p.Snapshot()

	assert.Equal(t, 10, snap1.IndexedFiles)
	assert.Equal(t, 20, snap2.IndexedFiles)
}

func TestProgress_ThreadSafe(t *testing.T) {
	p := NewProgress()
	p.SetStage(StageScanning, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			p.Advance(n, "f.go")
		}(i)
		go func() {
			defer wg.Done()
			_ = p.Snapshot()
		}()
	}
	wg.Wait()

	snap := p.Snapshot()
	assert.GreaterOrEqual(t, snap.IndexedFiles, 0)
}

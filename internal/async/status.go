// Package async provides the orchestrator's background-indexing lifecycle:
// a thread-safe progress tracker and a goroutine wrapper that runs the
// pipeline with a lock file and cooperative cancellation.
package async

import "sync"

// Stage is the orchestrator's current pipeline stage.
type Stage string

const (
	StageIdle     Stage = "idle"
	StageScanning Stage = "scanning"
	StageTFIDF    Stage = "tfidf"
	StageVectors  Stage = "vectors"
	StageComplete Stage = "complete"
	StageError    Stage = "error"
)

// Status is an immutable snapshot of IndexingStatus: isIndexing, stage,
// progress 0-100, totalFiles, indexedFiles, currentFile, error.
type Status struct {
	IsIndexing   bool
	Stage        Stage
	Progress     int
	TotalFiles   int
	IndexedFiles int
	CurrentFile  string
	Error        string
}

// Progress is a thread-safe tracker for one pipeline run. Readers call
// Snapshot concurrently with the pipeline goroutine calling the setters.
type Progress struct {
	mu     sync.RWMutex
	status Status
}

// NewProgress creates a tracker at stage idle.
func NewProgress() *Progress {
	return &Progress{status: Status{Stage: StageIdle}}
}

// SetStage begins a new stage with total files known, resetting per-stage
// counters. Progress is monotonic within a stage per §4.10.
func (p *Progress) SetStage(stage Stage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.Stage = stage
	p.status.IsIndexing = true
	p.status.TotalFiles = total
	p.status.IndexedFiles = 0
	p.status.Progress = 0
	p.status.CurrentFile = ""
}

// Advance records the current file within a stage and recomputes the 0-100
// progress value against TotalFiles.
func (p *Progress) Advance(indexed int, currentFile string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.IndexedFiles = indexed
	p.status.CurrentFile = currentFile
	if p.status.TotalFiles > 0 {
		p.status.Progress = indexed * 100 / p.status.TotalFiles
	}
}

// Fail aborts the run: stage becomes error and indexing stops. Used for
// stage-level failures (scanner or store IO) that leave no usable index
// for this run.
func (p *Progress) Fail(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.Stage = StageError
	p.status.IsIndexing = false
	p.status.Error = message
}

// NoteError records a non-fatal error alongside an otherwise successful
// run, for ProviderError per §7: the vector stage is skipped but the
// pipeline still reaches complete.
func (p *Progress) NoteError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Error = message
}

// Complete marks the run finished successfully.
func (p *Progress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.Stage = StageComplete
	p.status.IsIndexing = false
	p.status.Progress = 100
	p.status.CurrentFile = ""
}

// Snapshot returns a copy of the current status, safe to read after the
// tracker has moved on.
func (p *Progress) Snapshot() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

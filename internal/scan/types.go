// Package scan discovers indexable files under a codebase root and diffs
// them against the persistent store's current FileRecord table, honoring a
// composite ignore matcher built from .gitignore chains plus built-in rules.
package scan

import "time"

// ContentType classifies a discovered file for downstream tokenization and
// content-type filtering.
type ContentType string

const (
	ContentTypeCode     ContentType = "code"
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeText     ContentType = "text"
	ContentTypeConfig   ContentType = "config"
)

// FileInfo is a file discovered by a scan, before it is compared against the
// store's FileRecord table.
type FileInfo struct {
	Path        string // relative to the codebase root
	AbsPath     string
	Size        int64
	ModTime     time.Time
	ContentHash string
	ContentType ContentType
	Language    string
}

// Options configures a scan.
type Options struct {
	RootDir     string
	IgnoreExtra []string // additional glob patterns from configuration
	MaxFileSize int64    // bytes; 0 uses DefaultMaxFileSize
	Workers     int      // 0 uses runtime.NumCPU()
}

// DefaultMaxFileSize is used when Options.MaxFileSize is unset.
const DefaultMaxFileSize = 1 << 20 // 1 MiB, matches the config default

// Diff buckets the result of comparing a scan against the store's current
// FileRecord table.
type Diff struct {
	New       []FileInfo // paths not previously recorded
	Changed   []FileInfo // paths whose content hash differs from the record
	Unchanged []string   // paths whose content hash is unchanged
	Missing   []string   // recorded paths absent from this scan
	Errors    []FileError
}

// FileError reports a per-file scan failure that was skipped rather than
// aborting the scan.
type FileError struct {
	Path string
	Err  error
}

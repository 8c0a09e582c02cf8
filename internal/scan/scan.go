package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/opencodesearch/codesearch/internal/apperrors"
	"github.com/opencodesearch/codesearch/internal/gitignore"
)

// gitignoreCacheSize bounds the per-directory gitignore matcher cache.
const gitignoreCacheSize = 1000

// vcsDirs are always excluded regardless of .gitignore content.
var vcsDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// binaryExtensions are skipped without reading file contents to classify them.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true,
	".zip": true, ".tar": true, ".gz": true, ".7z": true, ".rar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true, ".o": true,
	".pdf": true, ".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".mov": true, ".avi": true,
}

// Scanner walks a codebase root, applying the composite ignore matcher, and
// diffs what it finds against a caller-supplied map of known content hashes.
type Scanner struct {
	gitignoreCache *lru.Cache[string, *gitignore.Matcher]
}

// New creates a Scanner with a bounded gitignore matcher cache.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "create gitignore cache", err)
	}
	return &Scanner{gitignoreCache: cache}, nil
}

// Scan walks opts.RootDir and returns a Diff against known, a map of
// relative path to the content hash the store currently has on record.
// Per-file errors (permission, unreadable) are collected in Diff.Errors and
// do not abort the scan.
func (s *Scanner) Scan(ctx context.Context, opts Options, known map[string]string) (*Diff, error) {
	absRoot, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "resolve root directory", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return nil, apperrors.New(apperrors.CodeConfig, "codebaseRoot does not exist").
			WithDetail("codebaseRoot", absRoot)
	}

	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	diff := &Diff{}
	seen := make(map[string]bool, len(known))

	// Phase 1: walk the tree and apply every filter that doesn't need file
	// content, collecting candidates in deterministic WalkDir order. Content
	// hashing — the actual bottleneck — happens afterward, off the walk, so
	// it can run on a worker pool without perturbing that order.
	var candidates []candidate
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil
		}

		relPath, relErr := filepath.Rel(absRoot, path)
		if relErr != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if vcsDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if binaryExtensions[strings.ToLower(extension(relPath))] {
			return nil
		}

		if matchesAny(filepath.Base(relPath), opts.IgnoreExtra) || matchesAny(relPath, opts.IgnoreExtra) {
			return nil
		}

		if s.isGitignored(relPath, absRoot) {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			diff.Errors = append(diff.Errors, FileError{Path: relPath, Err: statErr})
			return nil
		}
		if fi.Size() > maxFileSize {
			return nil
		}

		candidates = append(candidates, candidate{relPath: relPath, absPath: path, fi: fi})
		return nil
	})
	if walkErr != nil && walkErr != context.Canceled {
		return nil, apperrors.Wrap(apperrors.CodeIO, "walk codebase root", walkErr)
	}

	// Phase 2: hash candidates in parallel. Each candidate's result slot is
	// independent, so classification in phase 3 still runs in walk order.
	hashes := make([]hashResult, len(candidates))
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	hashCandidates(candidates, hashes, workers)

	for i, c := range candidates {
		hr := hashes[i]
		if hr.err != nil {
			diff.Errors = append(diff.Errors, FileError{Path: c.relPath, Err: hr.err})
			continue
		}

		seen[c.relPath] = true
		lang := DetectLanguage(c.relPath)
		info := FileInfo{
			Path:        c.relPath,
			AbsPath:     c.absPath,
			Size:        c.fi.Size(),
			ModTime:     c.fi.ModTime(),
			ContentHash: hr.hash,
			ContentType: DetectContentType(lang),
			Language:    lang,
		}

		if prevHash, ok := known[c.relPath]; !ok {
			diff.New = append(diff.New, info)
		} else if prevHash != hr.hash {
			diff.Changed = append(diff.Changed, info)
		} else {
			diff.Unchanged = append(diff.Unchanged, c.relPath)
		}
	}

	for path := range known {
		if !seen[path] {
			diff.Missing = append(diff.Missing, path)
		}
	}

	return diff, nil
}

// candidate is a file that survived every content-independent filter and is
// waiting to be hashed.
type candidate struct {
	relPath string
	absPath string
	fi      fs.FileInfo
}

// hashResult is one candidate's outcome from the parallel hashing pool.
type hashResult struct {
	hash string
	err  error
}

// hashCandidates hashes every candidate's content using a bounded worker
// pool, writing each result to its own index in results so the caller can
// still classify New/Changed/Unchanged in the original walk order.
func hashCandidates(candidates []candidate, results []hashResult, workers int) {
	if len(candidates) == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	indices := make(chan int, len(candidates))
	for i := range candidates {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				hash, err := hashFile(candidates[i].absPath)
				results[i] = hashResult{hash: hash, err: err}
			}
		}()
	}
	wg.Wait()
}

// isGitignored checks the root .gitignore plus every nested .gitignore
// between the root and the file's directory.
func (s *Scanner) isGitignored(relPath, absRoot string) bool {
	if m := s.matcher(absRoot, ""); m != nil && m.Match(relPath, false) {
		return true
	}

	dir := filepath.Dir(relPath)
	if dir == "." {
		return false
	}

	parts := strings.Split(dir, "/")
	currentDir := absRoot
	currentBase := ""
	for _, part := range parts {
		currentDir = filepath.Join(currentDir, part)
		if currentBase == "" {
			currentBase = part
		} else {
			currentBase = currentBase + "/" + part
		}
		if m := s.matcher(currentDir, currentBase); m != nil && m.Match(relPath, false) {
			return true
		}
	}
	return false
}

var matcherMu sync.Mutex

func (s *Scanner) matcher(dir, base string) *gitignore.Matcher {
	matcherMu.Lock()
	defer matcherMu.Unlock()

	if m, ok := s.gitignoreCache.Get(dir); ok {
		return m
	}

	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	m := gitignore.New()
	if err := m.AddFromFile(path, base); err != nil {
		return nil
	}
	s.gitignoreCache.Add(dir, m)
	return m
}

// matchesAny reports whether name matches any of the glob patterns.
func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// defaultWorkers mirrors the teacher's runtime.NumCPU() default, sizing the
// worker pool hashCandidates uses to parallelize content hashing — the
// actual bottleneck once WalkDir's filtering pass is done.
func defaultWorkers() int {
	return runtime.NumCPU()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no cgo

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// Store is the persistent store for one codebase-search instance. It holds
// a single SQLite connection (the store is single-writer by contract) and
// an advisory file lock enforcing that no other process writes to the same
// directory concurrently.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	lock   *flock.Flock
	path   string
	closed bool
}

// Open opens (or creates) the store at dir/index.db, acquires the advisory
// lock, applies schema migrations, and configures WAL mode with a single
// connection.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "create store directory", err).WithDetail("dir", dir)
	}

	dbPath := filepath.Join(dir, "index.db")
	lock := flock.New(filepath.Join(dir, ".index.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "acquire store lock", err)
	}
	if !locked {
		return nil, apperrors.New(apperrors.CodeIO, "store directory is locked by another process").
			WithDetail("dir", dir)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, apperrors.Wrap(apperrors.CodeIO, "open sqlite database", err)
	}

	// Single writer by contract: one connection avoids SQLITE_BUSY races
	// within this process, and the flock above covers cross-process access.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, apperrors.Wrap(apperrors.CodeIO, "configure sqlite pragmas", err)
		}
	}

	s := &Store{db: db, lock: lock, path: dbPath}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS file_records (
		path TEXT PRIMARY KEY,
		abs_path TEXT NOT NULL,
		size INTEGER NOT NULL,
		content_hash TEXT NOT NULL,
		language TEXT NOT NULL,
		indexed_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS postings (
		term TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		tf INTEGER NOT NULL,
		PRIMARY KEY (term, doc_id)
	);
	CREATE INDEX IF NOT EXISTS postings_doc_id ON postings(doc_id);

	CREATE TABLE IF NOT EXISTS idf (
		term TEXT PRIMARY KEY,
		df INTEGER NOT NULL,
		idf REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return apperrors.Wrap(apperrors.CodeIndexCorruption, "apply store schema", err)
	}

	version, err := s.GetMeta(context.Background(), MetaKeySchemaVersion)
	if err != nil {
		return err
	}
	if version == "" {
		return s.SetMeta(context.Background(), MetaKeySchemaVersion, fmt.Sprint(CurrentSchemaVersion))
	}
	return nil
}

// Close releases the SQLite connection and the advisory lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.lock.Unlock(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return apperrors.Wrap(apperrors.CodeIO, "close store", errs[0])
	}
	return nil
}

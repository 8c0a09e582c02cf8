package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// BulkUpsertFileRecords inserts or replaces many FileRecords inside a single
// transaction with a prepared statement, for initial indexing where
// per-row commits would dominate runtime.
func (s *Store) BulkUpsertFileRecords(ctx context.Context, records []FileRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "begin bulk upsert", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO file_records (path, abs_path, size, content_hash, language, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			abs_path = excluded.abs_path,
			size = excluded.size,
			content_hash = excluded.content_hash,
			language = excluded.language,
			indexed_at = excluded.indexed_at
	`)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "prepare bulk upsert", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Path, r.AbsPath, r.Size, r.ContentHash, r.Language, r.IndexedAt.UnixNano()); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "upsert file record", err).WithDetail("path", r.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "commit bulk upsert", err)
	}
	return nil
}

// UpsertFileRecord inserts or replaces a single FileRecord in its own short
// transaction, for incremental changes from the watcher.
func (s *Store) UpsertFileRecord(ctx context.Context, r FileRecord) error {
	return s.BulkUpsertFileRecords(ctx, []FileRecord{r})
}

// DeleteFileRecord removes a FileRecord and its postings in one transaction.
func (s *Store) DeleteFileRecord(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "begin delete file record", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM file_records WHERE path = ?`, path); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "delete file record", err).WithDetail("path", path)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE doc_id = ?`, path); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "delete file postings", err).WithDetail("path", path)
	}

	return apperrors.Wrap(apperrors.CodeIO, "commit delete file record", tx.Commit())
}

// ListFileRecords returns every FileRecord keyed by path, for reconstructing
// the known-hash map a scan is diffed against and for rebuilding the
// in-memory TF-IDF engine on startup.
func (s *Store) ListFileRecords(ctx context.Context) (map[string]FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT path, abs_path, size, content_hash, language, indexed_at FROM file_records`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "list file records", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]FileRecord)
	for rows.Next() {
		var r FileRecord
		var indexedAtNano int64
		if err := rows.Scan(&r.Path, &r.AbsPath, &r.Size, &r.ContentHash, &r.Language, &indexedAtNano); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeIO, "scan file record", err)
		}
		r.IndexedAt = unixNanoToTime(indexedAtNano)
		out[r.Path] = r
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "iterate file records", err)
	}
	return out, nil
}

// GetFileRecord looks up a single FileRecord by path. The second return
// value is false if no record exists.
func (s *Store) GetFileRecord(ctx context.Context, path string) (FileRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT path, abs_path, size, content_hash, language, indexed_at FROM file_records WHERE path = ?`, path)
	var r FileRecord
	var indexedAtNano int64
	if err := row.Scan(&r.Path, &r.AbsPath, &r.Size, &r.ContentHash, &r.Language, &indexedAtNano); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FileRecord{}, false, nil
		}
		return FileRecord{}, false, apperrors.Wrap(apperrors.CodeIO, "get file record", err)
	}
	r.IndexedAt = unixNanoToTime(indexedAtNano)
	return r, true, nil
}

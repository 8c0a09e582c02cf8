package store

import (
	"context"
	"database/sql"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// GetMeta reads a metadata value, returning "" if unset.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeIO, "get meta", err).WithDetail("key", key)
	}
	return value, nil
}

// SetMeta upserts a metadata value.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "set meta", err).WithDetail("key", key)
	}
	return nil
}

// DocCount returns the number of file records, for status().
func (s *Store) DocCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_records`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeIO, "count file records", err)
	}
	return count, nil
}

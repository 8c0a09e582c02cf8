package store

import (
	"context"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// ReplaceIDF upserts the df/idf values for a set of terms and purges any
// term in purge whose df reached zero, in a single transaction.
func (s *Store) ReplaceIDF(ctx context.Context, entries []IDFEntry, purge []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "begin idf update", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO idf (term, df, idf) VALUES (?, ?, ?)
			ON CONFLICT(term) DO UPDATE SET df = excluded.df, idf = excluded.idf
		`)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "prepare idf upsert", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.Term, e.DF, e.IDF); err != nil {
				return apperrors.Wrap(apperrors.CodeIO, "upsert idf entry", err).WithDetail("term", e.Term)
			}
		}
	}

	if len(purge) > 0 {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM idf WHERE term = ?`)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "prepare idf purge", err)
		}
		defer func() { _ = stmt.Close() }()
		for _, term := range purge {
			if _, err := stmt.ExecContext(ctx, term); err != nil {
				return apperrors.Wrap(apperrors.CodeIO, "purge idf entry", err).WithDetail("term", term)
			}
		}
	}

	return apperrors.Wrap(apperrors.CodeIO, "commit idf update", tx.Commit())
}

// AllIDF loads the entire IDF table, to reconstruct the in-memory TF-IDF
// engine on startup.
func (s *Store) AllIDF(ctx context.Context) (map[string]IDFEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT term, df, idf FROM idf`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "list idf entries", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]IDFEntry)
	for rows.Next() {
		var e IDFEntry
		if err := rows.Scan(&e.Term, &e.DF, &e.IDF); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeIO, "scan idf entry", err)
		}
		out[e.Term] = e
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "iterate idf entries", err)
	}
	return out, nil
}

package store

import (
	"context"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// ReplaceDocumentPostings deletes all postings for docID and inserts the
// given set, in a single transaction. Used by the TF-IDF engine to persist
// both updateDocument and addDocument without the caller managing SQL.
func (s *Store) ReplaceDocumentPostings(ctx context.Context, docID string, postings []Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "begin replace postings", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE doc_id = ?`, docID); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "clear document postings", err).WithDetail("doc_id", docID)
	}

	if len(postings) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO postings (term, doc_id, tf) VALUES (?, ?, ?)`)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "prepare postings insert", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, p := range postings {
			if _, err := stmt.ExecContext(ctx, p.Term, p.DocID, p.TF); err != nil {
				return apperrors.Wrap(apperrors.CodeIO, "insert posting", err).WithDetail("term", p.Term)
			}
		}
	}

	return apperrors.Wrap(apperrors.CodeIO, "commit replace postings", tx.Commit())
}

// BulkInsertPostings inserts postings for many documents inside a single
// transaction, for initial indexing.
func (s *Store) BulkInsertPostings(ctx context.Context, postings []Posting) error {
	if len(postings) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "begin bulk postings insert", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO postings (term, doc_id, tf) VALUES (?, ?, ?)
		ON CONFLICT(term, doc_id) DO UPDATE SET tf = excluded.tf
	`)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "prepare bulk postings insert", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range postings {
		if _, err := stmt.ExecContext(ctx, p.Term, p.DocID, p.TF); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "insert posting", err).WithDetail("term", p.Term)
		}
	}

	return apperrors.Wrap(apperrors.CodeIO, "commit bulk postings insert", tx.Commit())
}

// DeleteDocumentPostings removes all postings for a document, for
// removeDocument.
func (s *Store) DeleteDocumentPostings(ctx context.Context, docID string) error {
	return s.ReplaceDocumentPostings(ctx, docID, nil)
}

// AllPostings loads the entire postings table, grouped by term, to
// reconstruct the in-memory TF-IDF engine on startup.
func (s *Store) AllPostings(ctx context.Context) (map[string][]Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT term, doc_id, tf FROM postings`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "list postings", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]Posting)
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.Term, &p.DocID, &p.TF); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeIO, "scan posting", err)
		}
		out[p.Term] = append(out[p.Term], p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "iterate postings", err)
	}
	return out, nil
}

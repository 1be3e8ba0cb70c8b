package storage

import (
	"context"
	"fmt"
)

// CheckDuplicateHash reports whether an image content hash was recorded by
// any earlier submission.
func (s *SQLiteStorage) CheckDuplicateHash(ctx context.Context, hash string) (bool, error) {
	if hash == "" {
		return false, fmt.Errorf("hash cannot be empty")
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM image_hashes WHERE hash = ?)", hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate hash: %w", err)
	}
	return exists, nil
}

// RecordHash stores an image content hash against its submission. Recording
// the same hash twice for one submission is a no-op.
func (s *SQLiteStorage) RecordHash(ctx context.Context, hash, submissionID string) error {
	if hash == "" || submissionID == "" {
		return fmt.Errorf("hash and submissionID cannot be empty")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO image_hashes (hash, submission_id) VALUES (?, ?)",
		hash, submissionID)
	if err != nil {
		return fmt.Errorf("failed to record hash: %w", err)
	}
	return nil
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotProcessing is returned when a terminal write targets a job that is
// missing or already finished.
var ErrNotProcessing = errors.New("job is not processing")

// Complete records the stored artifact and marks the job completed.
func (s *Store) Complete(ctx context.Context, id int64, file, fileURL string) error {
	if strings.TrimSpace(file) == "" {
		return fmt.Errorf("complete job %d: empty artifact name", id)
	}
	return s.finish(ctx, id,
		`UPDATE jobs
         SET status = ?, file = ?, file_url = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusCompleted, file, nullableString(fileURL), timestamp(time.Now()), id, StatusProcessing,
	)
}

// Fail records message and marks the job failed.
func (s *Store) Fail(ctx context.Context, id int64, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("fail job %d: empty error message", id)
	}
	return s.finish(ctx, id,
		`UPDATE jobs
         SET status = ?, error_message = ?, file = NULL, file_url = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusFailed, message, timestamp(time.Now()), id, StatusProcessing,
	)
}

func (s *Store) finish(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finish job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish job %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("finish job %d: %w", id, ErrNotProcessing)
	}
	return nil
}

// FailOrphans fails every job still pending or processing. It is meant to run once at
// daemon start, before any worker is dispatched.
func (s *Store) FailOrphans(ctx context.Context, message string) (int64, error) {
	if strings.TrimSpace(message) == "" {
		message = InterruptedMessage
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE status IN (?, ?)`,
		StatusFailed,
		message,
		timestamp(time.Now()),
		StatusPending,
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail orphaned jobs: %w", err)
	}
	return res.RowsAffected()
}

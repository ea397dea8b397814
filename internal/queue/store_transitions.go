package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing rolls interrupted processing jobs back to the status
// their stage started from. Called on startup before workers begin claiming.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	total := 0
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(ctx,
			`UPDATE caption_jobs SET status = ?, updated_at = ? WHERE status = ?`,
			transition.to,
			time.Now().UTC().Format(time.RFC3339Nano),
			transition.from,
		)
		if err != nil {
			return total, fmt.Errorf("rollback %s: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rollback %s: %w", transition.from, err)
		}
		total += int(affected)
	}
	return total, nil
}

// RetryFailed moves failed (and optionally review) jobs back to pending so
// the pipeline reruns them from the start.
func (s *Store) RetryFailed(ctx context.Context, includeReview bool) (int, error) {
	ctx = ensureContext(ctx)
	statuses := []Status{StatusFailed}
	if includeReview {
		statuses = append(statuses, StatusReview)
	}
	args := make([]any, 0, len(statuses)+2)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, status := range statuses {
		args = append(args, status)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE caption_jobs
         SET status = ?, error_message = NULL, needs_review = 0, review_reason = NULL,
             progress_stage = NULL, progress_percent = 0, progress_message = NULL,
             updated_at = ?
         WHERE status IN (`+makePlaceholders(len(statuses))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("retry failed: %w", err)
	}
	return int(affected), nil
}

// Clear removes jobs in terminal states; when all is true every job is removed.
func (s *Store) Clear(ctx context.Context, all bool) (int, error) {
	ctx = ensureContext(ctx)
	var (
		query string
		args  []any
	)
	if all {
		query = `DELETE FROM caption_jobs`
	} else {
		query = `DELETE FROM caption_jobs WHERE status IN (?, ?, ?)`
		args = []any{StatusCompleted, StatusFailed, StatusReview}
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return int(affected), nil
}

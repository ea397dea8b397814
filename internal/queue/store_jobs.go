package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"autocaptions/internal/textutil"
)

const jobColumns = "id, job_key, title, source_path, transcript_path, audio_path, words_path, tokens_path, subtitle_path, final_file, status, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, needs_review, review_reason"

// NewJob enqueues a captioning job for a video and transcript pair.
// The transcript path may be empty when narration text will be synthesized
// from the transcript embedded in the source later.
func (s *Store) NewJob(ctx context.Context, title, sourcePath, transcriptPath string) (*Job, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	if strings.TrimSpace(title) == "" {
		title = inferTitleFromPath(sourcePath)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO caption_jobs (
            job_key, title, source_path, transcript_path, status,
            created_at, updated_at, progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		title,
		nullableString(sourcePath),
		nullableString(transcriptPath),
		StatusPending,
		timestamp,
		timestamp,
		0.0,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. Returns nil when not found.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM caption_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update persists changes to an existing job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE caption_jobs
         SET title = ?, source_path = ?, transcript_path = ?, audio_path = ?,
             words_path = ?, tokens_path = ?, subtitle_path = ?, final_file = ?,
             status = ?, error_message = ?, updated_at = ?,
             progress_stage = ?, progress_percent = ?, progress_message = ?,
             needs_review = ?, review_reason = ?
         WHERE id = ?`,
		nullableString(job.Title),
		nullableString(job.SourcePath),
		nullableString(job.TranscriptPath),
		nullableString(job.AudioPath),
		nullableString(job.WordsPath),
		nullableString(job.TokensPath),
		nullableString(job.SubtitlePath),
		nullableString(job.FinalFile),
		job.Status,
		nullableString(job.ErrorMessage),
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableString(job.ProgressStage),
		job.ProgressPercent,
		nullableString(job.ProgressMessage),
		boolToInt(job.NeedsReview),
		nullableString(job.ReviewReason),
		job.ID,
	); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// UpdateProgress persists only the progress fields of a job.
func (s *Store) UpdateProgress(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE caption_jobs
         SET progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(job.ProgressStage),
		job.ProgressPercent,
		nullableString(job.ProgressMessage),
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// claimTransitions map a ready status to the processing status a worker
// moves the job into when it claims the next stage.
var claimTransitions = map[Status]Status{
	StatusPending:    StatusExtracting,
	StatusExtracted:  StatusRecognizing,
	StatusRecognized: StatusAligning,
	StatusAligned:    StatusSegmenting,
	StatusSegmented:  StatusStyling,
	StatusStyled:     StatusBurning,
}

// readyStatuses in claim order, oldest-stage-first is irrelevant; jobs are
// claimed oldest-job-first regardless of which stage they are ready for.
var readyStatuses = []Status{
	StatusPending,
	StatusExtracted,
	StatusRecognized,
	StatusAligned,
	StatusSegmented,
	StatusStyled,
}

// ClaimNext atomically claims the oldest job that is ready for its next
// stage, moving it into the matching processing status so concurrent
// workers never pick the same job. Returns nil when no work is ready.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	ctx = ensureContext(ctx)
	args := make([]any, 0, len(readyStatuses))
	for _, status := range readyStatuses {
		args = append(args, status)
	}
	for {
		row := s.db.QueryRowContext(ctx,
			`SELECT id, status FROM caption_jobs WHERE status IN (`+makePlaceholders(len(readyStatuses))+`) ORDER BY id LIMIT 1`,
			args...)
		var (
			id        int64
			statusStr string
		)
		if err := row.Scan(&id, &statusStr); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("select ready: %w", err)
		}

		current := Status(statusStr)
		processing, ok := claimTransitions[current]
		if !ok {
			return nil, fmt.Errorf("no claim transition for status %q", current)
		}

		res, err := s.execWithRetry(ctx,
			`UPDATE caption_jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			processing,
			time.Now().UTC().Format(time.RFC3339Nano),
			id,
			current,
		)
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		if affected == 1 {
			return s.GetByID(ctx, id)
		}
		// Another worker claimed it first; try the next candidate.
	}
}

// List returns jobs ordered by creation, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM caption_jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Health aggregates queue counts per lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT status, COUNT(1) FROM caption_jobs GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var statusStr string
		var count int
		if err := rows.Scan(&statusStr, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health: %w", err)
		}
		summary.Total += count
		switch status := Status(statusStr); {
		case status == StatusPending:
			summary.Pending += count
		case status == StatusFailed:
			summary.Failed += count
		case status == StatusReview:
			summary.Review += count
		case status == StatusCompleted:
			summary.Completed += count
		case IsProcessingStatus(status):
			summary.Processing += count
		}
	}
	return summary, rows.Err()
}

// StagingRoot returns the per-job staging directory rooted at base.
func (j Job) StagingRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	segment := strings.TrimSpace(j.JobKey)
	if segment == "" {
		segment = fmt.Sprintf("job-%d", j.ID)
	}
	return filepath.Join(base, sanitizeSegment(segment))
}

func sanitizeSegment(value string) string {
	value = textutil.SanitizeFileName(value)
	value = strings.ReplaceAll(value, " ", "-")
	value = strings.Trim(value, "-_")
	if value == "" {
		return "job"
	}
	return value
}

func inferTitleFromPath(sourcePath string) string {
	base := filepath.Base(strings.TrimSpace(sourcePath))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "Untitled"
	}
	return base
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		jobKey          string
		title           sql.NullString
		sourcePath      sql.NullString
		transcriptPath  sql.NullString
		audioPath       sql.NullString
		wordsPath       sql.NullString
		tokensPath      sql.NullString
		subtitlePath    sql.NullString
		finalFile       sql.NullString
		statusStr       string
		errorMessage    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		needsReview     sql.NullInt64
		reviewReason    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobKey,
		&title,
		&sourcePath,
		&transcriptPath,
		&audioPath,
		&wordsPath,
		&tokensPath,
		&subtitlePath,
		&finalFile,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		JobKey:          jobKey,
		Title:           title.String,
		SourcePath:      sourcePath.String,
		TranscriptPath:  transcriptPath.String,
		AudioPath:       audioPath.String,
		WordsPath:       wordsPath.String,
		TokensPath:      tokensPath.String,
		SubtitlePath:    subtitlePath.String,
		FinalFile:       finalFile.String,
		Status:          Status(statusStr),
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		ReviewReason:    reviewReason.String,
	}
	if needsReview.Valid {
		job.NeedsReview = needsReview.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

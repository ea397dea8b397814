package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"autocaptions/internal/logging"
	"autocaptions/internal/queue"
	"autocaptions/internal/services"
)

func (m *Manager) processJob(ctx context.Context, job *queue.Job) error {
	stg, ok := m.stages[job.Status]
	if !ok || stg.handler == nil {
		err := fmt.Errorf("no stage configured for status %q", job.Status)
		m.setLastError(err)
		m.failJob(ctx, m.logger, stg.name, job, err)
		return err
	}

	stageCtx := services.WithJobID(ctx, job.ID)
	stageCtx = services.WithStage(stageCtx, stg.name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	logger := logging.WithContext(stageCtx, m.logger)

	start := time.Now()
	logger.Info("stage started",
		logging.String("title", strings.TrimSpace(job.Title)),
		logging.String("status", string(stg.processing)),
	)

	if err := stg.handler.Prepare(stageCtx, job); err != nil {
		m.setLastError(err)
		m.failJob(stageCtx, logger, stg.name, job, err)
		return err
	}
	if err := m.store.Update(stageCtx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		m.setLastError(wrapped)
		logger.Error("failed to persist stage preparation", logging.Error(wrapped))
		return wrapped
	}

	execErr := m.executeWithRetries(stageCtx, logger, stg, job)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.setLastError(execErr)
		m.failJob(stageCtx, logger, stg.name, job, execErr)
		return execErr
	}

	job.Status = stg.done
	job.ErrorMessage = ""
	if err := m.store.Update(stageCtx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		m.setLastError(wrapped)
		logger.Error("failed to persist stage result", logging.Error(wrapped))
		return wrapped
	}
	logger.Info("stage completed",
		logging.String("next_status", string(job.Status)),
		logging.Duration("stage_duration", time.Since(start)),
	)
	return nil
}

// executeWithRetries runs Execute, retrying retryable failures for the
// stages that talk to external services. Input and invariant failures
// are never retried.
func (m *Manager) executeWithRetries(ctx context.Context, logger *slog.Logger, stg pipelineStage, job *queue.Job) error {
	var execErr error
	for attempt := 0; ; attempt++ {
		execErr = stg.handler.Execute(ctx, job)
		if execErr == nil {
			return nil
		}
		if attempt >= stg.retries || !services.Retryable(execErr) || errors.Is(execErr, context.Canceled) {
			return execErr
		}
		logger.Warn("stage failed; retrying",
			logging.Error(execErr),
			logging.Int("attempt", attempt+1),
			logging.Int("remaining", stg.retries-attempt),
		)
		if delay := backoffDelay(m.backoff, attempt); delay > 0 {
			m.sleep(ctx, delay)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// backoffDelay doubles the base delay per attempt, capped at one minute.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	const maxDelay = time.Minute
	delay := base
	for i := 0; i < attempt && delay < maxDelay; i++ {
		delay *= 2
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// failJob persists the terminal status for a failed stage. Input,
// configuration, and constraint failures park the job for review;
// everything else marks it failed.
func (m *Manager) failJob(ctx context.Context, logger *slog.Logger, stageName string, job *queue.Job, stageErr error) {
	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" && stageErr != nil {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = fmt.Sprintf("%s stage failed", stageName)
	}

	switch services.FailureStatus(stageErr) {
	case queue.StatusReview:
		job.SetReview(message)
	default:
		job.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String("resolved_status", string(job.Status)),
		logging.String("error_message", message),
	)
	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutdown before stage failure could be persisted")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	if m.notifier != nil {
		if err := m.notifier.NotifyJobFailed(ctx, job.Title, message); err != nil {
			logger.Warn("failure notification failed", logging.Error(err))
		}
	}
}

package workflow

import (
	"context"
	"errors"
	"time"

	"autocaptions/internal/logging"
)

// Start begins background processing with the configured worker count.
// It acquires the single-runner lock and recovers jobs stranded in a
// processing status by a previous crash.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	m.mu.Unlock()

	if err := m.acquireLock(); err != nil {
		return err
	}
	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.logger.Warn("failed to reset stuck jobs", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("reset stuck jobs", logging.Int("jobs", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.running = true
	m.mu.Unlock()

	workers := m.cfg.Workflow.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.runWorker(runCtx)
	}
	return nil
}

// Stop terminates background processing and waits for workers to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.releaseLock()
}

// RunUntilIdle processes ready jobs until the queue has no more work,
// then returns. Used by the one-shot process command.
func (m *Manager) RunUntilIdle(ctx context.Context) error {
	if err := m.acquireLock(); err != nil {
		return err
	}
	defer m.releaseLock()

	if _, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.logger.Warn("failed to reset stuck jobs", logging.Error(err))
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, err := m.store.ClaimNext(ctx)
		if err != nil {
			return err
		}
		if job == nil {
			return nil
		}
		if err := m.processJob(ctx, job); err != nil && errors.Is(err, context.Canceled) {
			return err
		}
	}
}

func (m *Manager) runWorker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.ClaimNext(ctx)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to claim next job", logging.Error(err))
			m.sleep(ctx, m.pollInterval)
			continue
		}
		if job == nil {
			m.sleep(ctx, m.pollInterval)
			continue
		}
		if err := m.processJob(ctx, job); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (m *Manager) acquireLock() error {
	locked, err := m.lock.TryLock()
	if err != nil {
		return errors.New("cannot acquire runner lock: " + err.Error())
	}
	if !locked {
		return errors.New("another runner already holds the queue lock")
	}
	return nil
}

func (m *Manager) releaseLock() {
	if err := m.lock.Unlock(); err != nil {
		m.logger.Warn("failed to release runner lock", logging.Error(err))
	}
}

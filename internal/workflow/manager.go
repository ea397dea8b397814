package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/notify"
	"autocaptions/internal/queue"
	"autocaptions/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager dispatches.
type StageSet struct {
	Extract   stage.Handler
	Recognize stage.Handler
	Align     stage.Handler
	Segment   stage.Handler
	Style     stage.Handler
	Burn      stage.Handler
}

// pipelineStage binds a handler to the statuses it runs between.
// retries applies to Execute only, and only to retryable failures.
type pipelineStage struct {
	name       string
	handler    stage.Handler
	processing queue.Status
	done       queue.Status
	retries    int
}

// Manager coordinates queue processing using the registered stages.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notify.Service
	stages       map[queue.Status]pipelineStage
	pollInterval time.Duration
	backoff      time.Duration
	lock         *flock.Flock

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager for the given stage set.
func NewManager(cfg *config.Config, store *queue.Store, stages StageSet, notifier notify.Service, logger *slog.Logger) *Manager {
	if notifier == nil {
		notifier = notify.NewService(cfg)
	}
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		backoff:      time.Duration(cfg.Workflow.RetryBackoffSeconds) * time.Second,
		lock:         flock.New(filepath.Join(cfg.Paths.StateDir, "autocaptions.lock")),
	}
	m.stages = map[queue.Status]pipelineStage{
		queue.StatusExtracting: {
			name:       "extract",
			handler:    stages.Extract,
			processing: queue.StatusExtracting,
			done:       queue.StatusExtracted,
		},
		queue.StatusRecognizing: {
			name:       "recognize",
			handler:    stages.Recognize,
			processing: queue.StatusRecognizing,
			done:       queue.StatusRecognized,
			retries:    cfg.Workflow.RecognizeRetries,
		},
		queue.StatusAligning: {
			name:       "align",
			handler:    stages.Align,
			processing: queue.StatusAligning,
			done:       queue.StatusAligned,
		},
		queue.StatusSegmenting: {
			name:       "segment",
			handler:    stages.Segment,
			processing: queue.StatusSegmenting,
			done:       queue.StatusSegmented,
		},
		queue.StatusStyling: {
			name:       "style",
			handler:    stages.Style,
			processing: queue.StatusStyling,
			done:       queue.StatusStyled,
		},
		queue.StatusBurning: {
			name:       "burn",
			handler:    stages.Burn,
			processing: queue.StatusBurning,
			done:       queue.StatusCompleted,
			retries:    cfg.Workflow.BurnRetries,
		},
	}
	return m
}

// LastError returns the most recent stage or queue error, for status output.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// Health reports the readiness of every registered stage.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	order := []queue.Status{
		queue.StatusExtracting,
		queue.StatusRecognizing,
		queue.StatusAligning,
		queue.StatusSegmenting,
		queue.StatusStyling,
		queue.StatusBurning,
	}
	results := make([]stage.Health, 0, len(order))
	for _, status := range order {
		stg := m.stages[status]
		if stg.handler == nil {
			results = append(results, stage.Unhealthy(stg.name, "handler not configured"))
			continue
		}
		results = append(results, stg.handler.HealthCheck(ctx))
	}
	return results
}

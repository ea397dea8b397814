package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/queue"
	"autocaptions/internal/segment"
	"autocaptions/internal/services"
	"autocaptions/internal/stage"
)

// SegmentStage groups aligned tokens into display cues under the
// configured line, duration, and reading-speed limits.
type SegmentStage struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewSegmentStage constructs the segment stage.
func NewSegmentStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *SegmentStage {
	return &SegmentStage{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "segment-stage"),
	}
}

func (s *SegmentStage) Prepare(ctx context.Context, job *queue.Job) error {
	if s == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, "segmenting", "prepare", "segment stage is not configured", nil)
	}
	if strings.TrimSpace(job.TokensPath) == "" {
		return services.Wrap(services.ErrInput, "segmenting", "prepare", "job has no aligned tokens", nil)
	}
	job.SetProgress("segmenting", "Building cues", 0)
	return s.store.UpdateProgress(ctx, job)
}

func (s *SegmentStage) Execute(ctx context.Context, job *queue.Job) error {
	tokens, err := readTokens(job.TokensPath)
	if err != nil {
		return services.Wrap(services.ErrInput, "segmenting", "aligned tokens", "aligned tokens are not readable", err)
	}

	seg := s.cfg.Segmentation
	cues, err := segment.Build(tokens, segment.Limits{
		MaxLineChars:      seg.MaxLineChars,
		MaxLines:          seg.MaxLines,
		MaxCueSeconds:     seg.MaxCueSeconds,
		MinCueSeconds:     seg.MinCueSeconds,
		ReadingSpeedCPS:   seg.ReadingSpeedCPS,
		SilenceGapSeconds: seg.SilenceGapSeconds,
		CueGapSeconds:     seg.CueGapSeconds,
	})
	if err != nil {
		return err
	}

	staging := job.StagingRoot(s.cfg.Paths.StagingDir)
	if _, err := writeCues(staging, cues); err != nil {
		return services.Wrap(services.ErrConfiguration, "segmenting", "persist cues", "cannot write cues", err)
	}
	s.logger.Info("cues built", logging.Int("cues", len(cues)))
	job.SetProgress("segmenting", "Cues built", 100)
	return nil
}

func (s *SegmentStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("segment")
}

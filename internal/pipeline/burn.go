package pipeline

import (
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"autocaptions/internal/config"
	"autocaptions/internal/fileutil"
	"autocaptions/internal/logging"
	"autocaptions/internal/notify"
	"autocaptions/internal/queue"
	"autocaptions/internal/services"
	"autocaptions/internal/stage"
	"autocaptions/internal/textutil"
)

// BurnStage renders the subtitles into the video and delivers the
// finished file.
type BurnStage struct {
	cfg      *config.Config
	store    *queue.Store
	media    MediaProcessor
	notifier notify.Service
	logger   *slog.Logger
}

// NewBurnStage constructs the burn stage.
func NewBurnStage(cfg *config.Config, store *queue.Store, media MediaProcessor, notifier notify.Service, logger *slog.Logger) *BurnStage {
	return &BurnStage{
		cfg:      cfg,
		store:    store,
		media:    media,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "burn-stage"),
	}
}

func (s *BurnStage) Prepare(ctx context.Context, job *queue.Job) error {
	if s == nil || s.media == nil {
		return services.Wrap(services.ErrConfiguration, "burning", "prepare", "burn stage is not configured", nil)
	}
	if strings.TrimSpace(job.SubtitlePath) == "" {
		return services.Wrap(services.ErrInput, "burning", "prepare", "job has no subtitle document", nil)
	}
	job.SetProgress("burning", "Burning subtitles", 0)
	return s.store.UpdateProgress(ctx, job)
}

func (s *BurnStage) Execute(ctx context.Context, job *queue.Job) error {
	staging := job.StagingRoot(s.cfg.Paths.StagingDir)
	video := preparedVideo(staging, job.SourcePath)
	burned := filepath.Join(staging, burnedVideoName)
	final := s.finalPath(job)

	if err := s.media.Burn(ctx, video, job.SubtitlePath, burned); err != nil {
		return err
	}
	if err := fileutil.Publish(burned, final); err != nil {
		return services.Wrap(services.ErrTransient, "burning", "publish", "cannot publish finished video", err)
	}
	job.FinalFile = final
	job.SetProgress("burning", "Captioned video ready", 100)

	if s.notifier != nil {
		if err := s.notifier.NotifyJobCompleted(ctx, job.Title, final); err != nil {
			// Delivery failures never fail the job; the file is on disk.
			s.logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	s.logger.Info("burn finished", logging.String("final_file", final))
	return nil
}

// finalPath places the burned video in the output directory under the
// job title, falling back to the job key when the title is unusable.
func (s *BurnStage) finalPath(job *queue.Job) string {
	base := textutil.SanitizeFileName(job.Title)
	if base == "" {
		base = job.JobKey
	}
	return filepath.Join(s.cfg.Paths.OutputDir, base+".mp4")
}

func (s *BurnStage) HealthCheck(context.Context) stage.Health {
	const name = "burn"
	if _, err := exec.LookPath(s.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, "ffmpeg not found")
	}
	return stage.Healthy(name)
}

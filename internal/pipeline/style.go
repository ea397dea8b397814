package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"autocaptions/internal/assdoc"
	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/queue"
	"autocaptions/internal/services"
	"autocaptions/internal/stage"
)

// StyleStage resolves the ASS style from configuration and renders the
// cue list into the subtitle document.
type StyleStage struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewStyleStage constructs the style stage.
func NewStyleStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *StyleStage {
	return &StyleStage{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "style-stage"),
	}
}

func (s *StyleStage) Prepare(ctx context.Context, job *queue.Job) error {
	if s == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, "styling", "prepare", "style stage is not configured", nil)
	}
	job.SetProgress("styling", "Rendering subtitles", 0)
	return s.store.UpdateProgress(ctx, job)
}

func (s *StyleStage) Execute(ctx context.Context, job *queue.Job) error {
	staging := job.StagingRoot(s.cfg.Paths.StagingDir)
	cues, err := readCues(staging)
	if err != nil {
		return services.Wrap(services.ErrInput, "styling", "cues", "cues are not readable", err)
	}

	doc := assdoc.Build(cues, assdoc.StyleFromConfig(s.cfg.Style), s.cfg.Style.WordByWord)
	if job.Title != "" {
		doc.Title = job.Title
	}
	rendered, err := doc.Render()
	if err != nil {
		return err
	}

	path := filepath.Join(staging, subtitleName)
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "styling", "persist subtitles", "cannot write subtitle document", err)
	}
	job.SubtitlePath = path
	s.logger.Info("subtitles rendered",
		logging.Int("events", len(doc.Events)),
		logging.String("path", path),
	)
	job.SetProgress("styling", "Subtitles rendered", 100)
	return nil
}

func (s *StyleStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("style")
}

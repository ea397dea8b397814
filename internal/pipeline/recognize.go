package pipeline

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/queue"
	"autocaptions/internal/recognizer"
	"autocaptions/internal/services"
	"autocaptions/internal/stage"
)

// RecognizeStage runs speech recognition over the prepared audio and
// persists the word timings as a staging artifact.
type RecognizeStage struct {
	cfg    *config.Config
	store  *queue.Store
	rec    recognizer.Recognizer
	logger *slog.Logger
}

// NewRecognizeStage constructs the recognize stage.
func NewRecognizeStage(cfg *config.Config, store *queue.Store, rec recognizer.Recognizer, logger *slog.Logger) *RecognizeStage {
	return &RecognizeStage{
		cfg:    cfg,
		store:  store,
		rec:    rec,
		logger: logging.NewComponentLogger(logger, "recognize-stage"),
	}
}

func (s *RecognizeStage) Prepare(ctx context.Context, job *queue.Job) error {
	if s == nil || s.rec == nil {
		return services.Wrap(services.ErrConfiguration, "recognizing", "prepare", "recognize stage is not configured", nil)
	}
	if strings.TrimSpace(job.AudioPath) == "" {
		return services.Wrap(services.ErrInput, "recognizing", "prepare", "job has no prepared audio", nil)
	}
	job.SetProgress("recognizing", "Transcribing speech", 0)
	return s.store.UpdateProgress(ctx, job)
}

func (s *RecognizeStage) Execute(ctx context.Context, job *queue.Job) error {
	words, err := s.rec.Transcribe(ctx, job.AudioPath)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		s.logger.Warn("recognizer returned no words; alignment will degrade to even spread",
			logging.String("audio", job.AudioPath),
		)
	}

	staging := job.StagingRoot(s.cfg.Paths.StagingDir)
	path, err := writeWords(staging, words)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "recognizing", "persist words", "cannot write word timings", err)
	}
	job.WordsPath = path
	job.SetProgress("recognizing", "Speech transcribed", 100)
	return nil
}

func (s *RecognizeStage) HealthCheck(context.Context) stage.Health {
	const name = "recognize"
	if _, err := exec.LookPath(s.cfg.UVXBinary()); err != nil {
		return stage.Unhealthy(name, "uvx not found")
	}
	return stage.Healthy(name)
}

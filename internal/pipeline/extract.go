package pipeline

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/queue"
	"autocaptions/internal/services"
	"autocaptions/internal/stage"
	"autocaptions/internal/tts"
)

// MediaProcessor is the slice of the ffmpeg adapter the stages need.
type MediaProcessor interface {
	ExtractAudio(ctx context.Context, source, destination string) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
	AdjustDuration(ctx context.Context, videoPath string, targetSeconds float64, outputPath string) error
	MuxSpeech(ctx context.Context, videoPath, audioPath, outputPath string) error
	Burn(ctx context.Context, videoPath, subtitlePath, outputPath string) error
}

// ExtractStage prepares the per-job staging directory and the speech
// audio the recognizer will consume. When a TTS engine is configured the
// narration is synthesized from the transcript, the video is stretched
// or trimmed to the narration length plus the configured tail, and the
// narration is muxed over the original audio track.
type ExtractStage struct {
	cfg    *config.Config
	store  *queue.Store
	media  MediaProcessor
	engine tts.Engine
	logger *slog.Logger
}

// NewExtractStage constructs the extract stage. engine may be nil when
// TTS is disabled.
func NewExtractStage(cfg *config.Config, store *queue.Store, media MediaProcessor, engine tts.Engine, logger *slog.Logger) *ExtractStage {
	return &ExtractStage{
		cfg:    cfg,
		store:  store,
		media:  media,
		engine: engine,
		logger: logging.NewComponentLogger(logger, "extract-stage"),
	}
}

func (s *ExtractStage) Prepare(ctx context.Context, job *queue.Job) error {
	if s == nil || s.media == nil {
		return services.Wrap(services.ErrConfiguration, "extracting", "prepare", "extract stage is not configured", nil)
	}
	if strings.TrimSpace(job.SourcePath) == "" {
		return services.Wrap(services.ErrInput, "extracting", "prepare", "job has no source video", nil)
	}
	if strings.TrimSpace(job.TranscriptPath) == "" {
		return services.Wrap(services.ErrInput, "extracting", "prepare", "job has no transcript", nil)
	}
	job.SetProgress("extracting", "Preparing speech audio", 0)
	return s.store.UpdateProgress(ctx, job)
}

func (s *ExtractStage) Execute(ctx context.Context, job *queue.Job) error {
	staging := job.StagingRoot(s.cfg.Paths.StagingDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "extracting", "staging", "cannot create staging directory", err)
	}

	text, err := readTranscript(job.TranscriptPath)
	if err != nil {
		return services.Wrap(services.ErrInput, "extracting", "transcript", "transcript is not readable", err)
	}
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrInput, "extracting", "transcript", "transcript is empty", nil)
	}

	speech := filepath.Join(staging, speechAudioName)
	if s.cfg.TTS.Enabled && s.engine != nil {
		if err := s.prepareNarrated(ctx, job, staging, text, speech); err != nil {
			return err
		}
	} else {
		if err := s.media.ExtractAudio(ctx, job.SourcePath, speech); err != nil {
			return err
		}
	}

	job.AudioPath = speech
	job.SetProgress("extracting", "Speech audio ready", 100)
	s.logger.Info("audio prepared", logging.String("audio", speech))
	return nil
}

// prepareNarrated synthesizes narration, fits the video to it, and muxes
// the narration in. The prepared video becomes the burn input.
func (s *ExtractStage) prepareNarrated(ctx context.Context, job *queue.Job, staging, text, speech string) error {
	narration := filepath.Join(staging, narrationName)
	if err := s.engine.Synthesize(ctx, text, narration); err != nil {
		return err
	}

	duration, err := s.media.ProbeDuration(ctx, narration)
	if err != nil {
		return err
	}
	target := duration + s.cfg.Burn.VideoTailSeconds

	adjusted := filepath.Join(staging, adjustedVideoName)
	if err := s.media.AdjustDuration(ctx, job.SourcePath, target, adjusted); err != nil {
		return err
	}
	prepared := filepath.Join(staging, preparedVideoName)
	if err := s.media.MuxSpeech(ctx, adjusted, narration, prepared); err != nil {
		return err
	}
	s.logger.Debug("narration muxed",
		logging.Float64("narration_seconds", duration),
		logging.String("prepared", prepared),
	)
	return s.media.ExtractAudio(ctx, narration, speech)
}

func (s *ExtractStage) HealthCheck(context.Context) stage.Health {
	const name = "extract"
	if _, err := exec.LookPath(s.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, "ffmpeg not found")
	}
	if s.cfg.TTS.Enabled {
		if _, err := exec.LookPath(s.cfg.TTS.Command); err != nil {
			return stage.Unhealthy(name, "tts command not found")
		}
	}
	return stage.Healthy(name)
}

package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"autocaptions/internal/align"
	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/queue"
	"autocaptions/internal/recognizer"
	"autocaptions/internal/services"
	"autocaptions/internal/stage"
	"autocaptions/internal/textutil"
	"autocaptions/internal/transcript"
)

// AlignStage maps every transcript token onto the recognized word
// timings and persists the aligned tokens.
type AlignStage struct {
	cfg    *config.Config
	store  *queue.Store
	media  MediaProcessor
	logger *slog.Logger
}

// NewAlignStage constructs the align stage.
func NewAlignStage(cfg *config.Config, store *queue.Store, media MediaProcessor, logger *slog.Logger) *AlignStage {
	return &AlignStage{
		cfg:    cfg,
		store:  store,
		media:  media,
		logger: logging.NewComponentLogger(logger, "align-stage"),
	}
}

func (s *AlignStage) Prepare(ctx context.Context, job *queue.Job) error {
	if s == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, "aligning", "prepare", "align stage is not configured", nil)
	}
	if strings.TrimSpace(job.WordsPath) == "" {
		return services.Wrap(services.ErrInput, "aligning", "prepare", "job has no word timings", nil)
	}
	job.SetProgress("aligning", "Aligning transcript", 0)
	return s.store.UpdateProgress(ctx, job)
}

func (s *AlignStage) Execute(ctx context.Context, job *queue.Job) error {
	text, err := readTranscript(job.TranscriptPath)
	if err != nil {
		return services.Wrap(services.ErrInput, "aligning", "transcript", "transcript is not readable", err)
	}
	words, err := readWords(job.WordsPath)
	if err != nil {
		return services.Wrap(services.ErrInput, "aligning", "word timings", "word timings are not readable", err)
	}

	normalizer := transcript.NewNormalizer(s.cfg.Alignment.Contractions)
	tokens := normalizer.Tokenize(text)

	var audioDuration float64
	if len(words) == 0 && strings.TrimSpace(job.AudioPath) != "" {
		// Only needed for the even-spread fallback.
		if probed, probeErr := s.media.ProbeDuration(ctx, job.AudioPath); probeErr == nil {
			audioDuration = probed
		}
	}

	aligned, err := align.Align(tokens, words, align.Options{
		LeadSeconds:   s.cfg.Alignment.LeadSeconds,
		TrailSeconds:  s.cfg.Alignment.TrailSeconds,
		AudioDuration: audioDuration,
		Normalizer:    normalizer,
	})
	if err != nil {
		return err
	}

	s.logDrift(text, words, aligned)

	staging := job.StagingRoot(s.cfg.Paths.StagingDir)
	path, err := writeTokens(staging, aligned)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "aligning", "persist tokens", "cannot write aligned tokens", err)
	}
	job.TokensPath = path
	job.SetProgress("aligning", "Transcript aligned", 100)
	return nil
}

// logDrift records how far the recognized text strayed from the
// canonical transcript. Purely diagnostic; alignment already absorbed
// the differences.
func (s *AlignStage) logDrift(text string, words []recognizer.Word, aligned []align.AlignedToken) {
	if len(words) == 0 {
		return
	}
	recognized := make([]string, 0, len(words))
	for _, word := range words {
		recognized = append(recognized, word.Text)
	}
	similarity := textutil.CosineSimilarity(
		textutil.NewFingerprint(text),
		textutil.NewFingerprint(strings.Join(recognized, " ")),
	)

	interpolated := 0
	for _, token := range aligned {
		if token.Tag == align.TagInterpolated {
			interpolated++
		}
	}
	s.logger.Info("alignment complete",
		logging.Int("tokens", len(aligned)),
		logging.Int("interpolated", interpolated),
		logging.Float64("transcript_similarity", similarity),
	)
	if similarity < 0.5 {
		s.logger.Warn("recognized text diverges strongly from transcript",
			logging.Float64("transcript_similarity", similarity),
		)
	}
}

func (s *AlignStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("align")
}

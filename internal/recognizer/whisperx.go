package recognizer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/services"
)

const (
	whisperXPypiIndexURL = "https://pypi.org/simple"
	whisperXCUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	whisperXPackage      = "whisperx"
)

// CommandRunner executes an external command. Swappable in tests.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// WhisperX transcribes audio by invoking the WhisperX CLI through uvx.
type WhisperX struct {
	cfg    *config.Config
	logger *slog.Logger
	run    CommandRunner
}

// NewWhisperX builds the default recognizer from configuration.
func NewWhisperX(cfg *config.Config, logger *slog.Logger) *WhisperX {
	w := &WhisperX{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "recognizer"),
	}
	w.run = w.defaultCommandRunner
	return w
}

// SetCommandRunner overrides command execution. Intended for tests.
func (w *WhisperX) SetCommandRunner(run CommandRunner) {
	if run != nil {
		w.run = run
	}
}

// Transcribe runs WhisperX on audioPath and returns the flattened word list
// from its JSON payload. Output artifacts land next to the audio file.
func (w *WhisperX) Transcribe(ctx context.Context, audioPath string) ([]Word, error) {
	audioPath = strings.TrimSpace(audioPath)
	if audioPath == "" {
		return nil, services.Wrap(services.ErrInput, "recognizing", "transcribe", "audio path is empty", nil)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, services.Wrap(services.ErrInput, "recognizing", "transcribe", "audio file is not readable", err)
	}

	outputDir := filepath.Dir(audioPath)
	timeout := time.Duration(w.cfg.Recognizer.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	args := w.buildArgs(audioPath, outputDir)
	w.logger.Debug("invoking whisperx",
		logging.String("audio", audioPath),
		logging.String("model", w.cfg.Recognizer.Model),
		logging.String("device", w.cfg.Recognizer.Device),
	)
	if err := w.run(runCtx, w.cfg.UVXBinary(), args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "recognizing", "whisperx", "speech recognition failed", err)
	}

	jsonPath := payloadPath(audioPath, outputDir)
	words, err := loadWords(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "recognizing", "whisperx", "decode recognizer payload", err)
	}
	w.logger.Info("transcription complete",
		logging.Int("words", len(words)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return words, nil
}

func (w *WhisperX) buildArgs(audioPath, outputDir string) []string {
	rec := w.cfg.Recognizer
	cuda := rec.Device == "cuda"

	args := make([]string, 0, 24)
	if cuda {
		args = append(args,
			"--index-url", whisperXCUDAIndexURL,
			"--extra-index-url", whisperXPypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", whisperXPypiIndexURL)
	}

	args = append(args,
		whisperXPackage,
		audioPath,
		"--model", rec.Model,
		"--batch_size", strconv.Itoa(rec.BatchSize),
		"--output_dir", outputDir,
		"--output_format", "json",
		"--vad_method", rec.VADMethod,
	)
	if rec.Language != "" {
		args = append(args, "--language", rec.Language)
	}
	if cuda {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", rec.ComputeType)
	}
	return args
}

func (w *WhisperX) defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	// Torch 2.6 changed torch.load default to weights_only=true, breaking
	// WhisperX checkpoint loading. Force the legacy behavior.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, detail)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// payloadPath returns the JSON artifact WhisperX writes for the given input.
func payloadPath(audioPath, outputDir string) string {
	base := filepath.Base(audioPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+".json")
}

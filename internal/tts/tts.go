// Package tts synthesizes narration audio from transcript text by
// invoking an external text-to-speech binary.
package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/services"
)

// Engine produces a speech audio file for the given text.
type Engine interface {
	Synthesize(ctx context.Context, text, outputPath string) (err error)
}

// CommandRunner executes an external command with the text on stdin.
// Swappable in tests.
type CommandRunner func(ctx context.Context, stdin string, name string, args ...string) error

// CommandEngine drives a CLI synthesizer such as piper. The text is
// written to the process on stdin and the audio lands at the output path.
type CommandEngine struct {
	cfg    *config.Config
	logger *slog.Logger
	run    CommandRunner
}

// NewCommandEngine builds the CLI engine from configuration.
func NewCommandEngine(cfg *config.Config, logger *slog.Logger) *CommandEngine {
	return &CommandEngine{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "tts"),
		run:    defaultCommandRunner,
	}
}

// SetCommandRunner overrides command execution. Intended for tests.
func (e *CommandEngine) SetCommandRunner(run CommandRunner) {
	if run != nil {
		e.run = run
	}
}

// Synthesize writes speech audio for text to outputPath.
func (e *CommandEngine) Synthesize(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrInput, "extracting", "synthesize", "narration text is empty", nil)
	}
	binary := strings.TrimSpace(e.cfg.TTS.Command)
	if binary == "" {
		return services.Wrap(services.ErrConfiguration, "extracting", "synthesize", "tts command is not configured", nil)
	}

	timeout := time.Duration(e.cfg.TTS.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, 0, 4)
	if voice := strings.TrimSpace(e.cfg.TTS.Voice); voice != "" {
		args = append(args, "--voice", voice)
	}
	args = append(args, "--output_file", outputPath)

	start := time.Now()
	e.logger.Debug("synthesizing narration",
		logging.String("command", binary),
		logging.Int("chars", len(text)),
	)
	if err := e.run(runCtx, text, binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "synthesize", "text-to-speech synthesis failed", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "synthesize", "synthesizer produced no audio file", err)
	}
	e.logger.Info("narration synthesized",
		logging.String("output", outputPath),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func defaultCommandRunner(ctx context.Context, stdin string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, detail)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

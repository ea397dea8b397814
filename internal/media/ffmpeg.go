package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/services"
)

// CommandRunner executes an external command. Swappable in tests.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// OutputRunner executes a command and returns its standard output.
type OutputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Copies within this tolerance skip re-encoding when adjusting duration.
const durationTolerance = 0.5

// FFmpeg performs media operations by shelling out to ffmpeg and ffprobe.
type FFmpeg struct {
	cfg    *config.Config
	logger *slog.Logger
	run    CommandRunner
	output OutputRunner
}

// NewFFmpeg builds the media adapter from configuration.
func NewFFmpeg(cfg *config.Config, logger *slog.Logger) *FFmpeg {
	return &FFmpeg{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "media"),
		run:    defaultCommandRunner,
		output: defaultOutputRunner,
	}
}

// SetCommandRunner overrides command execution. Intended for tests.
func (f *FFmpeg) SetCommandRunner(run CommandRunner) {
	if run != nil {
		f.run = run
	}
}

// SetOutputRunner overrides output-capturing command execution. Intended for tests.
func (f *FFmpeg) SetOutputRunner(output OutputRunner) {
	if output != nil {
		f.output = output
	}
}

// ExtractAudio demuxes the first audio stream of source into a mono
// 16 kHz PCM WAV at destination, the format the recognizer expects.
func (f *FFmpeg) ExtractAudio(ctx context.Context, source, destination string) error {
	if err := checkReadable(source, "extracting", "extract audio"); err != nil {
		return err
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		destination,
	}
	if err := f.run(ctx, f.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "extract audio", "failed to extract audio track with ffmpeg", err)
	}
	if info, err := os.Stat(destination); err == nil {
		f.logger.Debug("audio extracted",
			logging.String("destination", destination),
			logging.Int64("bytes", info.Size()),
		)
	}
	return nil
}

// ProbeDuration returns the container duration of path in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if err := checkReadable(path, "extracting", "probe duration"); err != nil {
		return 0, err
	}
	args := []string{
		"-v", "error",
		"-hide_banner",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"--", path,
	}
	out, err := f.output(ctx, f.cfg.FFprobeBinary(), args...)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "extracting", "probe duration", "ffprobe failed", err)
	}
	duration, err := parseProbeDuration(string(out))
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "extracting", "probe duration", "ffprobe returned an unusable duration", err)
	}
	return duration, nil
}

// AdjustDuration writes a copy of videoPath to outputPath whose duration
// matches targetSeconds. Longer videos are trimmed; shorter ones are looped.
// When the durations already agree within half a second the stream is copied
// without re-encoding.
func (f *FFmpeg) AdjustDuration(ctx context.Context, videoPath string, targetSeconds float64, outputPath string) error {
	if targetSeconds <= 0 {
		return services.Wrap(services.ErrInput, "extracting", "adjust duration", "target duration must be positive", nil)
	}
	current, err := f.ProbeDuration(ctx, videoPath)
	if err != nil {
		return err
	}

	var args []string
	switch {
	case current > 0 && abs(current-targetSeconds) < durationTolerance:
		args = []string{
			"-y",
			"-hide_banner",
			"-loglevel", "error",
			"-i", videoPath,
			"-c", "copy",
			outputPath,
		}
	case current > targetSeconds:
		args = []string{
			"-y",
			"-hide_banner",
			"-loglevel", "error",
			"-i", videoPath,
			"-t", formatSeconds(targetSeconds),
			"-c:v", "libx264",
			"-c:a", "aac",
			outputPath,
		}
	default:
		// Loop the source indefinitely and cut at the target length.
		args = []string{
			"-y",
			"-hide_banner",
			"-loglevel", "error",
			"-stream_loop", "-1",
			"-i", videoPath,
			"-t", formatSeconds(targetSeconds),
			"-c:v", "libx264",
			"-c:a", "aac",
			outputPath,
		}
	}

	f.logger.Debug("adjusting video duration",
		logging.Float64("current", current),
		logging.Float64("target", targetSeconds),
	)
	if err := f.run(ctx, f.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "adjust duration", "failed to adjust video duration with ffmpeg", err)
	}
	return nil
}

// MuxSpeech replaces the audio track of videoPath with audioPath, keeping
// the video stream untouched and ending at the shorter of the two inputs.
func (f *FFmpeg) MuxSpeech(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if err := checkReadable(videoPath, "extracting", "mux speech"); err != nil {
		return err
	}
	if err := checkReadable(audioPath, "extracting", "mux speech"); err != nil {
		return err
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}
	if err := f.run(ctx, f.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "mux speech", "failed to mux narration audio with ffmpeg", err)
	}
	return nil
}

// Burn renders the ASS subtitles at subtitlePath into the video stream of
// videoPath, writing the result to outputPath. The audio track is copied.
func (f *FFmpeg) Burn(ctx context.Context, videoPath, subtitlePath, outputPath string) error {
	if err := checkReadable(videoPath, "burning", "burn subtitles"); err != nil {
		return err
	}
	if err := checkReadable(subtitlePath, "burning", "burn subtitles"); err != nil {
		return err
	}

	timeout := time.Duration(f.cfg.Burn.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vf", "subtitles=" + escapeFilterPath(subtitlePath),
		"-c:v", "libx264",
		"-crf", "18",
		"-preset", "medium",
		"-c:a", "copy",
		outputPath,
	}

	start := time.Now()
	f.logger.Debug("burning subtitles",
		logging.String("video", videoPath),
		logging.String("subtitles", subtitlePath),
	)
	if err := f.run(runCtx, f.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "burning", "burn subtitles", "failed to burn subtitles with ffmpeg", err)
	}
	f.logger.Info("burn complete",
		logging.String("output", outputPath),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func checkReadable(path, stage, operation string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrInput, stage, operation, "path is empty", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return services.Wrap(services.ErrInput, stage, operation, fmt.Sprintf("%s is not readable", filepath.Base(path)), err)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
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

func defaultOutputRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, detail)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"` // per-job intermediate artifacts
	OutputDir  string `toml:"output_dir"`  // finished videos
	LogDir     string `toml:"log_dir"`
	StateDir   string `toml:"state_dir"` // queue database
}

// Recognizer contains configuration for the WhisperX speech recognizer.
type Recognizer struct {
	Model          string `toml:"model"`
	Device         string `toml:"device"` // "cpu" or "cuda"
	ComputeType    string `toml:"compute_type"`
	VADMethod      string `toml:"vad_method"`
	Language       string `toml:"language"`
	BatchSize      int    `toml:"batch_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS contains configuration for the optional text-to-speech engine used
// when a job supplies narration text without an audio track.
type TTS struct {
	Enabled        bool   `toml:"enabled"`
	Command        string `toml:"command"` // synthesis binary, e.g. "piper"
	Voice          string `toml:"voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Style contains the ASS subtitle style fields. Colours use the ASS
// &HAABBGGRR representation.
type Style struct {
	FontName      string  `toml:"font_name"`
	FontSize      int     `toml:"font_size"`
	PrimaryColour string  `toml:"primary_colour"`
	OutlineColour string  `toml:"outline_colour"`
	BackColour    string  `toml:"back_colour"`
	Bold          bool    `toml:"bold"`
	Italic        bool    `toml:"italic"`
	Underline     bool    `toml:"underline"`
	StrikeOut     bool    `toml:"strike_out"`
	Alignment     int     `toml:"alignment"`
	MarginL       int     `toml:"margin_l"`
	MarginR       int     `toml:"margin_r"`
	MarginV       int     `toml:"margin_v"`
	BorderStyle   int     `toml:"border_style"`
	Outline       float64 `toml:"outline"`
	Shadow        float64 `toml:"shadow"`
	WordByWord    bool    `toml:"word_by_word"` // one dialogue event per word
}

// Segmentation contains the cue-building constraints.
type Segmentation struct {
	MaxLineChars      int     `toml:"max_line_chars"`
	MaxLines          int     `toml:"max_lines"`
	MaxCueSeconds     float64 `toml:"max_cue_seconds"`
	MinCueSeconds     float64 `toml:"min_cue_seconds"`
	ReadingSpeedCPS   float64 `toml:"reading_speed_cps"`
	SilenceGapSeconds float64 `toml:"silence_gap_seconds"`
	CueGapSeconds     float64 `toml:"cue_gap_seconds"`
}

// Alignment contains tuning for the transcript aligner.
type Alignment struct {
	LeadSeconds  float64           `toml:"lead_seconds"`
	TrailSeconds float64           `toml:"trail_seconds"`
	Contractions map[string]string `toml:"contractions"` // merged over the built-in table
}

// Burn contains configuration for the ffmpeg burn-in step.
type Burn struct {
	VideoTailSeconds float64 `toml:"video_tail_seconds"` // video extended past speech end
	TimeoutSeconds   int     `toml:"timeout_seconds"`
}

// Telegram contains configuration for delivery of finished videos.
type Telegram struct {
	BotToken       string `toml:"bot_token"`
	ChatID         string `toml:"chat_id"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Workflow contains runner timing, concurrency, and retry policy.
type Workflow struct {
	QueuePollInterval   int `toml:"queue_poll_interval"`
	MaxWorkers          int `toml:"max_workers"`
	RecognizeRetries    int `toml:"recognize_retries"`
	BurnRetries         int `toml:"burn_retries"`
	RetryBackoffSeconds int `toml:"retry_backoff_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the captioning pipeline.
//
// Sections by subsystem:
//   - Paths: staging, output, log, and state directories
//   - Recognizer: WhisperX model and invocation settings
//   - TTS: optional narration synthesis engine
//   - Style: ASS subtitle style defaults
//   - Segmentation: cue packing constraints
//   - Alignment: aligner boundary offsets and contraction table
//   - Burn: ffmpeg burn-in settings
//   - Telegram: finished-video delivery
//   - Workflow: runner polling, concurrency, and retry policy
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Recognizer   Recognizer   `toml:"recognizer"`
	TTS          TTS          `toml:"tts"`
	Style        Style        `toml:"style"`
	Segmentation Segmentation `toml:"segmentation"`
	Alignment    Alignment    `toml:"alignment"`
	Burn         Burn         `toml:"burn"`
	Telegram     Telegram     `toml:"telegram"`
	Workflow     Workflow     `toml:"workflow"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/autocaptions/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("autocaptions.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// UVXBinary returns the uvx launcher used to run WhisperX.
func (c *Config) UVXBinary() string {
	return "uvx"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

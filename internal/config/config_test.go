package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autocaptions/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "autocaptions", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Recognizer.Model != "base" {
		t.Fatalf("unexpected recognizer model: %q", cfg.Recognizer.Model)
	}
	if cfg.Recognizer.VADMethod != "silero" {
		t.Fatalf("unexpected VAD method: %q", cfg.Recognizer.VADMethod)
	}
	if cfg.TTS.Enabled {
		t.Fatal("expected TTS disabled by default")
	}
	if cfg.Style.FontName != "Arial" || cfg.Style.FontSize != 36 {
		t.Fatalf("unexpected style defaults: %q %d", cfg.Style.FontName, cfg.Style.FontSize)
	}
	if !cfg.Style.Bold {
		t.Fatal("expected bold default style")
	}
	if cfg.Style.Alignment != 2 {
		t.Fatalf("unexpected alignment: %d", cfg.Style.Alignment)
	}
	if cfg.Segmentation.MaxLineChars != 42 {
		t.Fatalf("unexpected max line chars: %d", cfg.Segmentation.MaxLineChars)
	}
	if cfg.Segmentation.SilenceGapSeconds != 1.25 {
		t.Fatalf("unexpected silence gap: %v", cfg.Segmentation.SilenceGapSeconds)
	}
	if cfg.Alignment.LeadSeconds != 0.25 || cfg.Alignment.TrailSeconds != 0.50 {
		t.Fatalf("unexpected boundary offsets: %v %v", cfg.Alignment.LeadSeconds, cfg.Alignment.TrailSeconds)
	}
	if cfg.Workflow.MaxWorkers != 1 {
		t.Fatalf("unexpected worker count: %d", cfg.Workflow.MaxWorkers)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadReadsFileAndTelegramEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "chat-from-env")

	path := filepath.Join(tempHome, "config.toml")
	content := strings.Join([]string{
		"[style]",
		`font_name = "Futura"`,
		"font_size = 48",
		"",
		"[segmentation]",
		"max_line_chars = 36",
		"",
		"[alignment]",
		"[alignment.contractions]",
		`"y'all" = "you all"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported present")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Style.FontName != "Futura" || cfg.Style.FontSize != 48 {
		t.Fatalf("style overrides not applied: %q %d", cfg.Style.FontName, cfg.Style.FontSize)
	}
	if cfg.Segmentation.MaxLineChars != 36 {
		t.Fatalf("segmentation override not applied: %d", cfg.Segmentation.MaxLineChars)
	}
	if cfg.Segmentation.MaxLines != 2 {
		t.Fatalf("untouched defaults should survive overrides: %d", cfg.Segmentation.MaxLines)
	}
	if cfg.Alignment.Contractions["y'all"] != "you all" {
		t.Fatalf("contraction override missing: %v", cfg.Alignment.Contractions)
	}
	if cfg.Telegram.BotToken != "token-from-env" || cfg.Telegram.ChatID != "chat-from-env" {
		t.Fatalf("telegram env values not applied: %q %q", cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		message string
	}{
		{
			name:    "bad device",
			mutate:  func(c *config.Config) { c.Recognizer.Device = "tpu" },
			message: "recognizer.device",
		},
		{
			name:    "tts enabled without command",
			mutate:  func(c *config.Config) { c.TTS.Enabled = true },
			message: "tts.command",
		},
		{
			name:    "bad colour",
			mutate:  func(c *config.Config) { c.Style.PrimaryColour = "white" },
			message: "style.primary_colour",
		},
		{
			name:    "alignment out of range",
			mutate:  func(c *config.Config) { c.Style.Alignment = 11 },
			message: "style.alignment",
		},
		{
			name:    "max below min cue",
			mutate:  func(c *config.Config) { c.Segmentation.MaxCueSeconds = 0.5 },
			message: "max_cue_seconds",
		},
		{
			name:    "negative lead",
			mutate:  func(c *config.Config) { c.Alignment.LeadSeconds = -0.1 },
			message: "alignment.lead_seconds",
		},
		{
			name:    "token without chat id",
			mutate:  func(c *config.Config) { c.Telegram.BotToken = "abc" },
			message: "telegram.bot_token",
		},
		{
			name:    "bad log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "logfmt" },
			message: "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("error %q does not mention %q", err, tc.message)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, ".config", "autocaptions", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

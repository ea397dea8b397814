package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/services"
)

func newTestEngine(t *testing.T) *CommandEngine {
	t.Helper()
	cfg := config.Default()
	cfg.TTS.Enabled = true
	cfg.TTS.Command = "piper"
	cfg.TTS.Voice = "en_US-amy-medium"
	return NewCommandEngine(&cfg, logging.NewNop())
}

func TestSynthesizePassesTextAndVoice(t *testing.T) {
	engine := newTestEngine(t)
	output := filepath.Join(t.TempDir(), "speech.wav")

	var gotStdin, gotName string
	var gotArgs []string
	engine.SetCommandRunner(func(_ context.Context, stdin string, name string, args ...string) error {
		gotStdin, gotName, gotArgs = stdin, name, args
		return os.WriteFile(output, []byte("wav"), 0o644)
	})

	if err := engine.Synthesize(context.Background(), "Hello world.", output); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotStdin != "Hello world." {
		t.Fatalf("expected text on stdin, got %q", gotStdin)
	}
	if gotName != "piper" {
		t.Fatalf("expected piper, got %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "--voice en_US-amy-medium") {
		t.Fatalf("missing voice in args %v", gotArgs)
	}
	if !strings.Contains(joined, "--output_file "+output) {
		t.Fatalf("missing output path in args %v", gotArgs)
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	engine := newTestEngine(t)
	err := engine.Synthesize(context.Background(), "  \n", "out.wav")
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestSynthesizeRequiresConfiguredCommand(t *testing.T) {
	engine := newTestEngine(t)
	engine.cfg.TTS.Command = ""
	err := engine.Synthesize(context.Background(), "Hello.", "out.wav")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSynthesizeFailsWhenNoAudioProduced(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetCommandRunner(func(context.Context, string, string, ...string) error {
		return nil
	})
	err := engine.Synthesize(context.Background(), "Hello.", filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestSynthesizeWrapsCommandFailure(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetCommandRunner(func(context.Context, string, string, ...string) error {
		return errors.New("voice model not found")
	})
	err := engine.Synthesize(context.Background(), "Hello.", "out.wav")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "voice model not found") {
		t.Fatalf("cause missing from error: %v", err)
	}
}

package deps

import (
	"os"
	"path/filepath"
	"testing"

	"autocaptions/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}
}

func TestSatisfied(t *testing.T) {
	statuses := []Status{
		{Name: "a", Available: true},
		{Name: "b", Available: false, Optional: true},
	}
	if !Satisfied(statuses) {
		t.Fatalf("optional failures should not block")
	}
	statuses = append(statuses, Status{Name: "c", Available: false})
	if Satisfied(statuses) {
		t.Fatalf("required failure should block")
	}
}

func TestCheckSystemIncludesTTSOnlyWhenEnabled(t *testing.T) {
	cfg := config.Default()
	names := func(statuses []Status) map[string]bool {
		out := make(map[string]bool, len(statuses))
		for _, status := range statuses {
			out[status.Name] = true
		}
		return out
	}

	base := names(CheckSystem(&cfg))
	for _, want := range []string{"FFmpeg", "FFprobe", "uvx"} {
		if !base[want] {
			t.Fatalf("missing %s in system checks", want)
		}
	}
	if base["TTS"] {
		t.Fatalf("TTS should not be checked when disabled")
	}

	cfg.TTS.Enabled = true
	cfg.TTS.Command = "piper"
	if withTTS := names(CheckSystem(&cfg)); !withTTS["TTS"] {
		t.Fatalf("TTS check missing when enabled")
	}
}

func TestCheckDirectories(t *testing.T) {
	cfg := config.Default()
	root := t.TempDir()
	cfg.Paths.StagingDir = filepath.Join(root, "staging")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.StateDir = filepath.Join(root, "state")
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	results := CheckDirectories(&cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 directory checks, got %d", len(results))
	}
	for _, result := range results[:3] {
		if !result.Available {
			t.Fatalf("expected %s to pass, got %#v", result.Name, result)
		}
	}
	if results[3].Available {
		t.Fatalf("missing state dir should fail")
	}
	if results[3].Detail != "does not exist" {
		t.Fatalf("unexpected detail: %q", results[3].Detail)
	}
}

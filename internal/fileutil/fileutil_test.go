package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPublishCopiesIntoNewDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "burned.mp4")
	dst := filepath.Join(dir, "output", "Clip.mp4")

	content := []byte("finished video bytes")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Publish(src, dst); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestPublishMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := Publish(filepath.Join(dir, "nope.mp4"), filepath.Join(dir, "dst.mp4")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestPublishOverwritesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp4")
	dst := filepath.Join(dir, "dst.mp4")

	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Publish(src, dst); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected destination replaced, got %q", got)
	}
}

package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"autocaptions/internal/queue"
	"autocaptions/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "burning", "burn subtitles", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"burning", "burn subtitles", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestFailureStatusMapping(t *testing.T) {
	inputErr := services.Wrap(services.ErrInput, "extracting", "read transcript", "transcript empty", nil)
	if status := services.FailureStatus(inputErr); status != queue.StatusReview {
		t.Fatalf("expected review for input error, got %s", status)
	}

	invariantErr := services.Wrap(services.ErrInvariant, "aligning", "validate words", "timestamps decrease", nil)
	if status := services.FailureStatus(invariantErr); status != queue.StatusFailed {
		t.Fatalf("expected failed for invariant error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != queue.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}

func TestRetryable(t *testing.T) {
	if !services.Retryable(services.Wrap(services.ErrExternalTool, "recognizing", "transcribe", "whisperx exited", errors.New("exit 1"))) {
		t.Fatal("external tool errors should be retryable")
	}
	if services.Retryable(services.Wrap(services.ErrInvariant, "styling", "render", "cues out of order", nil)) {
		t.Fatal("invariant errors must not be retryable")
	}
	if services.Retryable(nil) {
		t.Fatal("nil error is not retryable")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, 42)
	ctx = services.WithStage(ctx, "aligning")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "aligning" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

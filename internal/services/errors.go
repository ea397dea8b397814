package services

import (
	"errors"
	"fmt"
	"strings"

	"autocaptions/internal/queue"
)

var (
	// ErrInput marks malformed or missing caller input (empty transcript,
	// unreadable media). Never retried; surfaced immediately.
	ErrInput = errors.New("input error")
	// ErrExternalTool marks failures of external processes (recognizer,
	// ffmpeg burn, TTS). Stages invoking external tools may retry these.
	ErrExternalTool = errors.New("external tool error")
	// ErrInvariant marks contract violations between pipeline stages
	// (non-monotonic recognizer timestamps, malformed alignment backtrace,
	// out-of-order cues at render time). Fatal, never recovered silently.
	ErrInvariant = errors.New("invariant violation")
	// ErrConstraint marks segmentation constraints that cannot be satisfied
	// for the given input, reported with the offending token.
	ErrConstraint = errors.New("constraint unsatisfiable")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures worth retrying at the job level.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a stage error may be retried. Only external tool
// and transient failures qualify; deterministic stage errors reproduce
// identically on retry.
func Retryable(err error) bool {
	return errors.Is(err, ErrExternalTool) || errors.Is(err, ErrTransient)
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrInput), errors.Is(err, ErrConfiguration), errors.Is(err, ErrConstraint):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

// Details extracts the human-readable portion of a wrapped stage error.
type ErrorDetails struct {
	Message string
}

// Details returns the message portion of err for queue persistence.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	return ErrorDetails{Message: strings.TrimSpace(err.Error())}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

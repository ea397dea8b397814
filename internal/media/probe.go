package media

import (
	"fmt"
	"strconv"
	"strings"
)

// parseProbeDuration decodes the single-value output of
// ffprobe -show_entries format=duration.
func parseProbeDuration(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "N/A") {
		return 0, fmt.Errorf("no duration in ffprobe output %q", raw)
	}
	duration, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", trimmed, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("negative duration %q", trimmed)
	}
	return duration, nil
}

// formatSeconds renders a duration argument for ffmpeg with millisecond
// precision.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

// escapeFilterPath quotes a path for use inside an ffmpeg filter graph,
// where colons and quotes are structural characters.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
	)
	return "'" + replacer.Replace(path) + "'"
}

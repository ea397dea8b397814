package assdoc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// centiseconds converts seconds to centiseconds with round-half-up. All
// serialized timestamps and the monotonicity assertion work in this unit so
// rounding can never reorder events relative to their rendered form.
func centiseconds(seconds float64) int64 {
	return int64(math.Floor(seconds*100 + 0.5))
}

// FormatTimestamp renders seconds as the ASS H:MM:SS.CC form.
func FormatTimestamp(seconds float64) string {
	cs := centiseconds(seconds)
	if cs < 0 {
		cs = 0
	}
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// ParseTimestamp reads an H:MM:SS.CC timestamp back into seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	main, frac, ok := strings.Cut(value, ".")
	if !ok {
		return 0, fmt.Errorf("timestamp %q missing centiseconds", value)
	}
	parts := strings.Split(main, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q must be H:MM:SS.CC", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q hours: %w", value, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q minutes: %w", value, err)
	}
	s, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q seconds: %w", value, err)
	}
	cs, err := strconv.Atoi(frac)
	if err != nil || len(frac) != 2 {
		return 0, fmt.Errorf("timestamp %q centiseconds: not two digits", value)
	}
	if m > 59 || s > 59 || h < 0 || m < 0 || s < 0 || cs < 0 {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(cs)/100, nil
}

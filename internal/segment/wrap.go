package segment

import (
	"strings"
	"unicode"

	"autocaptions/internal/align"
)

// wrapTokens joins token surfaces and wraps them at word boundaries. A word
// longer than the line bound stands on a line of its own rather than being
// split.
func wrapTokens(group []align.AlignedToken, maxLineChars int) string {
	var lines []string
	var line strings.Builder
	lineLen := 0

	for _, token := range group {
		wordLen := len([]rune(token.Surface))
		switch {
		case lineLen == 0:
			line.WriteString(token.Surface)
			lineLen = wordLen
		case lineLen+1+wordLen <= maxLineChars:
			line.WriteByte(' ')
			line.WriteString(token.Surface)
			lineLen += 1 + wordLen
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(token.Surface)
			lineLen = wordLen
		}
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// visibleChars counts non-whitespace runes, the unit the reading-speed floor
// is measured in.
func visibleChars(text string) int {
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

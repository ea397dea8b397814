package segment

import (
	"fmt"
	"strings"

	"autocaptions/internal/align"
	"autocaptions/internal/services"
	"autocaptions/internal/transcript"
)

// Limits holds the cue-building constraints.
type Limits struct {
	MaxLineChars      int
	MaxLines          int
	MaxCueSeconds     float64
	MinCueSeconds     float64
	ReadingSpeedCPS   float64
	SilenceGapSeconds float64
	CueGapSeconds     float64
}

// Cue is one on-screen caption unit.
type Cue struct {
	Tokens []align.AlignedToken
	Text   string // wrapped render text, lines separated by \n
	Start  float64
	End    float64
}

// Build packs aligned tokens into cues under the given limits.
func Build(tokens []align.AlignedToken, limits Limits) ([]Cue, error) {
	if err := validateLimits(limits); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return []Cue{}, nil
	}

	groups := pack(tokens, limits)
	cues := make([]Cue, 0, len(groups))
	for _, group := range groups {
		cues = append(cues, Cue{
			Tokens: group,
			Text:   wrapTokens(group, limits.MaxLineChars),
			Start:  group[0].Start,
			End:    group[len(group)-1].End,
		})
	}

	extendForReadability(cues, limits)
	return cues, nil
}

func validateLimits(limits Limits) error {
	describe := func(message string) error {
		return services.Wrap(services.ErrConstraint, "segmenting", "validate limits", message, nil)
	}
	if limits.MaxLineChars < 1 {
		return describe(fmt.Sprintf("max line chars %d leaves no room for any token", limits.MaxLineChars))
	}
	if limits.MaxLines < 1 || limits.MaxLines > 2 {
		return describe(fmt.Sprintf("max lines %d outside the supported 1..2 range", limits.MaxLines))
	}
	if limits.MinCueSeconds <= 0 || limits.MaxCueSeconds < limits.MinCueSeconds {
		return describe(fmt.Sprintf("cue duration bounds (%.2f, %.2f) are unsatisfiable", limits.MinCueSeconds, limits.MaxCueSeconds))
	}
	if limits.ReadingSpeedCPS <= 0 {
		return describe(fmt.Sprintf("reading speed %.2f cps is unsatisfiable", limits.ReadingSpeedCPS))
	}
	return nil
}

// pack is the greedy forward pass. A cue closes when adding the next token
// would break a bound, when a silence gap precedes it, or after
// sentence-ending punctuation.
func pack(tokens []align.AlignedToken, limits Limits) [][]align.AlignedToken {
	var groups [][]align.AlignedToken
	var current []align.AlignedToken

	flush := func() {
		if len(current) > 0 {
			groups = append(groups, current)
			current = nil
		}
	}

	for i, token := range tokens {
		if len(current) > 0 {
			gap := token.Start - current[len(current)-1].End
			duration := token.End - current[0].Start
			switch {
			case gap > limits.SilenceGapSeconds:
				flush()
			case duration > limits.MaxCueSeconds:
				flush()
			case !fits(append(current[:len(current):len(current)], token), limits):
				flush()
			}
		}
		current = append(current, token)

		if transcript.EndsSentence(token.Surface) {
			flush()
			continue
		}
		// Source line breaks are soft hints: honor them once the cue is
		// long enough to stand on its own.
		if token.LineEnd && i < len(tokens)-1 && token.End-current[0].Start >= limits.MinCueSeconds {
			flush()
		}
	}
	flush()
	return groups
}

// fits reports whether the group wraps into the allowed number of lines. A
// group holding a single over-long token always fits; splitting a token is
// never an option.
func fits(group []align.AlignedToken, limits Limits) bool {
	if len(group) == 1 {
		return true
	}
	lines := strings.Split(wrapTokens(group, limits.MaxLineChars), "\n")
	if len(lines) > limits.MaxLines {
		return false
	}
	for _, line := range lines {
		if len([]rune(line)) > limits.MaxLineChars {
			return false
		}
	}
	return true
}

// extendForReadability pushes each cue's end out to the reading-speed floor,
// clamped so it never crosses the next cue's start minus the configured gap.
func extendForReadability(cues []Cue, limits Limits) {
	for i := range cues {
		floor := float64(visibleChars(cues[i].Text)) / limits.ReadingSpeedCPS
		if floor < limits.MinCueSeconds {
			floor = limits.MinCueSeconds
		}
		if floor > limits.MaxCueSeconds {
			floor = limits.MaxCueSeconds
		}
		target := cues[i].Start + floor
		if target > cues[i].End {
			cues[i].End = target
		}
		if i+1 < len(cues) {
			ceiling := cues[i+1].Start - limits.CueGapSeconds
			if cues[i].End > ceiling {
				cues[i].End = ceiling
			}
		}
		if cues[i].End < cues[i].Start {
			cues[i].End = cues[i].Start
		}
	}
}

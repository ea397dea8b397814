package align

import (
	"fmt"

	"autocaptions/internal/recognizer"
	"autocaptions/internal/services"
	"autocaptions/internal/transcript"
)

// Tag describes how a token's interval was obtained.
type Tag string

const (
	// TagExact marks a token whose normalized text matched a recognized word.
	TagExact Tag = "exact"
	// TagSubstituted marks a token paired with a non-matching recognized word.
	TagSubstituted Tag = "substituted"
	// TagInterpolated marks a token with no recognized counterpart.
	TagInterpolated Tag = "interpolated"
)

// AlignedToken is a canonical token with an assigned time interval.
type AlignedToken struct {
	transcript.Token
	Start float64
	End   float64
	Tag   Tag
}

// Options tunes interval assignment at the transcript boundaries.
type Options struct {
	// LeadSeconds is subtracted from the first recognized word's start to
	// anchor unresolved tokens at the very beginning of the transcript.
	LeadSeconds float64
	// TrailSeconds is added after the last recognized word's end to anchor
	// unresolved tokens at the very end.
	TrailSeconds float64
	// AudioDuration carries the full track length, used only when the
	// recognizer returned no words at all.
	AudioDuration float64
	// Normalizer maps recognized word text into the shared comparison form.
	// The same instance must be the one that tokenized the transcript.
	Normalizer *transcript.Normalizer
}

// Align assigns a time interval to every canonical token. The result has
// exactly len(tokens) entries in the original order.
func Align(tokens []transcript.Token, words []recognizer.Word, opts Options) ([]AlignedToken, error) {
	if err := validateWords(words); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return []AlignedToken{}, nil
	}
	if len(words) == 0 {
		return spreadEvenly(tokens, opts.AudioDuration), nil
	}

	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = transcript.NewNormalizer(nil)
	}
	normalized := make([]string, len(words))
	for i, word := range words {
		normalized[i] = normalizer.Normalize(word.Text)
	}

	mapping, err := traceAlignment(tokens, normalized)
	if err != nil {
		return nil, err
	}

	aligned := make([]AlignedToken, len(tokens))
	for i, token := range tokens {
		aligned[i] = AlignedToken{Token: token, Tag: TagInterpolated}
		if j := mapping[i]; j >= 0 {
			aligned[i].Start = words[j].Start
			aligned[i].End = words[j].End
			if token.Normalized == normalized[j] {
				aligned[i].Tag = TagExact
			} else {
				aligned[i].Tag = TagSubstituted
			}
		}
	}

	interpolateRuns(aligned, words, opts)
	clampOverlaps(aligned)

	if err := validateAligned(aligned); err != nil {
		return nil, err
	}
	return aligned, nil
}

// validateWords fails fast on recognizer output that violates the timing
// contract instead of attempting a repair.
func validateWords(words []recognizer.Word) error {
	prevStart := 0.0
	for i, word := range words {
		if word.End < word.Start {
			return services.Wrap(services.ErrInvariant, "aligning", "validate recognizer output",
				fmt.Sprintf("word %d %q ends at %.3f before its start %.3f", i, word.Text, word.End, word.Start), nil)
		}
		if i > 0 && word.Start < prevStart {
			return services.Wrap(services.ErrInvariant, "aligning", "validate recognizer output",
				fmt.Sprintf("word %d %q starts at %.3f before previous word at %.3f", i, word.Text, word.Start, prevStart), nil)
		}
		prevStart = word.Start
	}
	return nil
}

func validateAligned(aligned []AlignedToken) error {
	prevEnd := 0.0
	for i, token := range aligned {
		if token.End < token.Start {
			return services.Wrap(services.ErrInvariant, "aligning", "validate output",
				fmt.Sprintf("token %d %q interval (%.3f, %.3f) is inverted", i, token.Surface, token.Start, token.End), nil)
		}
		if i > 0 && token.Start < prevEnd {
			return services.Wrap(services.ErrInvariant, "aligning", "validate output",
				fmt.Sprintf("token %d %q starts at %.3f inside previous interval ending %.3f", i, token.Surface, token.Start, prevEnd), nil)
		}
		prevEnd = token.End
	}
	return nil
}

// spreadEvenly degrades gracefully when recognition produced nothing: the
// transcript is laid out uniformly across the audio duration.
func spreadEvenly(tokens []transcript.Token, duration float64) []AlignedToken {
	if duration <= 0 {
		duration = float64(len(tokens))
	}
	step := duration / float64(len(tokens))
	aligned := make([]AlignedToken, len(tokens))
	for i, token := range tokens {
		aligned[i] = AlignedToken{
			Token: token,
			Start: float64(i) * step,
			End:   float64(i+1) * step,
			Tag:   TagInterpolated,
		}
	}
	return aligned
}

// clampOverlaps removes sub-centisecond overlaps between consecutive matched
// words without disturbing already well-formed intervals.
func clampOverlaps(aligned []AlignedToken) {
	for i := 1; i < len(aligned); i++ {
		if aligned[i].Start < aligned[i-1].End {
			aligned[i].Start = aligned[i-1].End
		}
		if aligned[i].End < aligned[i].Start {
			aligned[i].End = aligned[i].Start
		}
	}
}

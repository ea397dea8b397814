package transcript

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Token is one whitespace-delimited unit of the canonical transcript.
// Surface keeps the original text for rendering; Normalized is the
// comparison form shared with recognizer output.
type Token struct {
	Surface    string
	Normalized string
	Ordinal    int
	LineEnd    bool // token closed a source line; soft cue-break hint
}

// defaultContractions is the built-in expansion table. Both token streams run
// through the same table so a canonical "don't" and a recognized "do not"
// still normalize toward a shared vocabulary.
var defaultContractions = map[string]string{
	"can't":      "cannot",
	"won't":      "will not",
	"don't":      "do not",
	"doesn't":    "does not",
	"didn't":     "did not",
	"isn't":      "is not",
	"aren't":     "are not",
	"wasn't":     "was not",
	"weren't":    "were not",
	"couldn't":   "could not",
	"shouldn't":  "should not",
	"wouldn't":   "would not",
	"it's":       "it is",
	"that's":     "that is",
	"there's":    "there is",
	"what's":     "what is",
	"let's":      "let us",
	"i'm":        "i am",
	"i've":       "i have",
	"i'll":       "i will",
	"i'd":        "i would",
	"you're":     "you are",
	"you've":     "you have",
	"you'll":     "you will",
	"we're":      "we are",
	"we've":      "we have",
	"we'll":      "we will",
	"they're":    "they are",
	"they've":    "they have",
	"they'll":    "they will",
	"he's":       "he is",
	"she's":      "she is",
	"mr":         "mister",
	"mrs":        "missus",
	"dr":         "doctor",
	"st":         "saint",
	"vs":         "versus",
	"etc":        "et cetera",
	"ok":         "okay",
	"&":          "and",
	"%":          "percent",
}

// Normalizer applies the shared normalization rules. The zero value is not
// usable; construct with NewNormalizer.
type Normalizer struct {
	contractions map[string]string
	lower        cases.Caser
}

// NewNormalizer builds a normalizer with the built-in contraction table
// merged with extra entries. Extra entries override built-ins on key collision.
func NewNormalizer(extra map[string]string) *Normalizer {
	merged := make(map[string]string, len(defaultContractions)+len(extra))
	for from, to := range defaultContractions {
		merged[from] = to
	}
	for from, to := range extra {
		merged[strings.ToLower(strings.TrimSpace(from))] = strings.ToLower(strings.TrimSpace(to))
	}
	return &Normalizer{
		contractions: merged,
		lower:        cases.Lower(language.Und),
	}
}

// Tokenize splits text into ordered tokens with normalized comparison forms.
// Empty or whitespace-only input yields an empty slice.
func (n *Normalizer) Tokenize(text string) []Token {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens := make([]Token, 0, len(text)/5)
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		for i, surface := range fields {
			tokens = append(tokens, Token{
				Surface:    surface,
				Normalized: n.Normalize(surface),
				Ordinal:    len(tokens),
				LineEnd:    i == len(fields)-1,
			})
		}
	}
	return tokens
}

// Normalize maps one surface word to its comparison form: lowercase, outer
// punctuation stripped, contractions expanded.
func (n *Normalizer) Normalize(surface string) string {
	lowered := n.lower.String(surface)
	stripped := strings.TrimFunc(lowered, isOuterPunct)
	if stripped == "" {
		// Pure punctuation tokens keep their lowered form so they stay
		// distinguishable from each other during alignment.
		stripped = lowered
	}
	if expanded, ok := n.contractions[stripped]; ok {
		return expanded
	}
	return stripped
}

func isOuterPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// EndsSentence reports whether the surface form closes a sentence.
func EndsSentence(surface string) bool {
	trimmed := strings.TrimRight(surface, `"')]`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

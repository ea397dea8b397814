package align_test

import (
	"errors"
	"math"
	"testing"

	"autocaptions/internal/align"
	"autocaptions/internal/recognizer"
	"autocaptions/internal/services"
	"autocaptions/internal/transcript"
)

func opts(n *transcript.Normalizer) align.Options {
	return align.Options{LeadSeconds: 0.25, TrailSeconds: 0.50, Normalizer: n}
}

func words(entries ...recognizer.Word) []recognizer.Word { return entries }

func TestAlignRoundTripExact(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("Hello world this is a test")
	recognized := words(
		recognizer.Word{Text: "hello", Start: 0.0, End: 0.4},
		recognizer.Word{Text: "world", Start: 0.4, End: 0.9},
		recognizer.Word{Text: "this", Start: 0.9, End: 1.1},
		recognizer.Word{Text: "is", Start: 1.1, End: 1.2},
		recognizer.Word{Text: "a", Start: 1.2, End: 1.3},
		recognizer.Word{Text: "test", Start: 1.3, End: 1.8},
	)

	aligned, err := align.Align(tokens, recognized, opts(n))
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if len(aligned) != len(tokens) {
		t.Fatalf("expected %d aligned tokens, got %d", len(tokens), len(aligned))
	}
	for i, token := range aligned {
		if token.Ordinal != i {
			t.Fatalf("token %d out of order: ordinal %d", i, token.Ordinal)
		}
		if token.Tag != align.TagExact {
			t.Fatalf("token %d %q should be exact, got %s", i, token.Surface, token.Tag)
		}
		if token.Start != recognized[i].Start || token.End != recognized[i].End {
			t.Fatalf("token %d interval (%v, %v) should equal word interval (%v, %v)",
				i, token.Start, token.End, recognized[i].Start, recognized[i].End)
		}
	}
}

func TestAlignSubstitution(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("Hello world this is a test")
	recognized := words(
		recognizer.Word{Text: "hello", Start: 0.0, End: 0.4},
		recognizer.Word{Text: "word", Start: 0.4, End: 0.9},
		recognizer.Word{Text: "this", Start: 0.9, End: 1.1},
		recognizer.Word{Text: "is", Start: 1.1, End: 1.2},
		recognizer.Word{Text: "a", Start: 1.2, End: 1.3},
		recognizer.Word{Text: "test", Start: 1.3, End: 1.8},
	)

	aligned, err := align.Align(tokens, recognized, opts(n))
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	for i, token := range aligned {
		want := align.TagExact
		if token.Surface == "world" {
			want = align.TagSubstituted
			if token.Start != 0.4 || token.End != 0.9 {
				t.Fatalf("substituted token interval (%v, %v), want (0.4, 0.9)", token.Start, token.End)
			}
		}
		if token.Tag != want {
			t.Fatalf("token %d %q tag %s, want %s", i, token.Surface, token.Tag, want)
		}
	}
}

func TestAlignLeadingUnspokenToken(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("Intro. Hello world")
	recognized := words(
		recognizer.Word{Text: "hello", Start: 1.0, End: 1.4},
		recognizer.Word{Text: "world", Start: 1.4, End: 1.9},
	)

	aligned, err := align.Align(tokens, recognized, opts(n))
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	intro := aligned[0]
	if intro.Tag != align.TagInterpolated {
		t.Fatalf("leading token should be interpolated, got %s", intro.Tag)
	}
	if intro.End > 1.0 {
		t.Fatalf("leading token should end at or before first word start, ends %v", intro.End)
	}
	if intro.Start < 0.75-1e-9 || intro.Start > intro.End {
		t.Fatalf("leading token should start at first word start minus lead, got (%v, %v)", intro.Start, intro.End)
	}
	if aligned[1].Tag != align.TagExact || aligned[2].Tag != align.TagExact {
		t.Fatalf("spoken tokens should stay exact: %s %s", aligned[1].Tag, aligned[2].Tag)
	}
}

func TestAlignTrailingUnspokenTokens(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("hello world and more")
	recognized := words(
		recognizer.Word{Text: "hello", Start: 0.0, End: 0.4},
		recognizer.Word{Text: "world", Start: 0.4, End: 0.9},
	)

	aligned, err := align.Align(tokens, recognized, opts(n))
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if aligned[2].Tag != align.TagInterpolated || aligned[3].Tag != align.TagInterpolated {
		t.Fatalf("trailing tokens should be interpolated: %s %s", aligned[2].Tag, aligned[3].Tag)
	}
	if aligned[2].Start != 0.9 {
		t.Fatalf("trailing run should start at last resolved end, got %v", aligned[2].Start)
	}
	if math.Abs(aligned[3].End-1.4) > 1e-9 {
		t.Fatalf("trailing run should close at last end plus trail, got %v", aligned[3].End)
	}
}

func TestAlignMiddleGapSplitsByCharacterCount(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("aa bbbb cc dd")
	recognized := words(
		recognizer.Word{Text: "aa", Start: 0.0, End: 1.0},
		recognizer.Word{Text: "dd", Start: 4.0, End: 5.0},
	)

	aligned, err := align.Align(tokens, recognized, opts(n))
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	// The 3.0s gap splits 4:2 across "bbbb" and "cc".
	if math.Abs(aligned[1].Start-1.0) > 1e-9 || math.Abs(aligned[1].End-3.0) > 1e-9 {
		t.Fatalf("first gap token interval (%v, %v), want (1.0, 3.0)", aligned[1].Start, aligned[1].End)
	}
	if math.Abs(aligned[2].Start-3.0) > 1e-9 || math.Abs(aligned[2].End-4.0) > 1e-9 {
		t.Fatalf("second gap token interval (%v, %v), want (3.0, 4.0)", aligned[2].Start, aligned[2].End)
	}
}

func TestAlignEmptyRecognizerSpreadsEvenly(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("one two three four")
	options := opts(n)
	options.AudioDuration = 8.0

	aligned, err := align.Align(tokens, nil, options)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	for i, token := range aligned {
		if token.Tag != align.TagInterpolated {
			t.Fatalf("token %d should be interpolated", i)
		}
		if math.Abs(token.Start-float64(i)*2.0) > 1e-9 || math.Abs(token.End-float64(i+1)*2.0) > 1e-9 {
			t.Fatalf("token %d interval (%v, %v), want (%v, %v)", i, token.Start, token.End, float64(i)*2.0, float64(i+1)*2.0)
		}
	}
}

func TestAlignEmptyTranscript(t *testing.T) {
	aligned, err := align.Align(nil, words(recognizer.Word{Text: "hello", Start: 0, End: 1}), align.Options{})
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if len(aligned) != 0 {
		t.Fatalf("empty transcript should yield no tokens, got %d", len(aligned))
	}
}

func TestAlignRejectsNonMonotonicWords(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("hello world")
	recognized := words(
		recognizer.Word{Text: "hello", Start: 1.0, End: 1.4},
		recognizer.Word{Text: "world", Start: 0.5, End: 0.9},
	)
	_, err := align.Align(tokens, recognized, opts(n))
	if err == nil {
		t.Fatal("expected invariant violation for decreasing timestamps")
	}
	if !errors.Is(err, services.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestAlignRejectsInvertedWordInterval(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("hello")
	recognized := words(recognizer.Word{Text: "hello", Start: 1.0, End: 0.5})
	if _, err := align.Align(tokens, recognized, opts(n)); !errors.Is(err, services.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestAlignOutputMonotonicUnderInsertions(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("alpha beta gamma")
	// The recognizer heard extra words that have no canonical counterpart.
	recognized := words(
		recognizer.Word{Text: "alpha", Start: 0.0, End: 0.5},
		recognizer.Word{Text: "um", Start: 0.5, End: 0.7},
		recognizer.Word{Text: "beta", Start: 0.7, End: 1.2},
		recognizer.Word{Text: "uh", Start: 1.2, End: 1.3},
		recognizer.Word{Text: "gamma", Start: 1.3, End: 1.9},
	)

	aligned, err := align.Align(tokens, recognized, opts(n))
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if len(aligned) != 3 {
		t.Fatalf("inserted words must be discarded, got %d tokens", len(aligned))
	}
	prevEnd := 0.0
	for i, token := range aligned {
		if token.Tag != align.TagExact {
			t.Fatalf("token %d should match exactly, got %s", i, token.Tag)
		}
		if token.Start < prevEnd {
			t.Fatalf("token %d overlaps previous interval", i)
		}
		prevEnd = token.End
	}
}

func TestAlignContractionsMatchAcrossStreams(t *testing.T) {
	n := transcript.NewNormalizer(nil)
	tokens := n.Tokenize("Don't stop")
	recognized := words(
		recognizer.Word{Text: "don't", Start: 0.0, End: 0.4},
		recognizer.Word{Text: "stop", Start: 0.4, End: 0.8},
	)
	aligned, err := align.Align(tokens, recognized, opts(n))
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	for i, token := range aligned {
		if token.Tag != align.TagExact {
			t.Fatalf("token %d %q should match after contraction expansion, got %s", i, token.Surface, token.Tag)
		}
	}
}

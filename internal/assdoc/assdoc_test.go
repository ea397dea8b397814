package assdoc_test

import (
	"errors"
	"strings"
	"testing"

	"autocaptions/internal/align"
	"autocaptions/internal/assdoc"
	"autocaptions/internal/config"
	"autocaptions/internal/segment"
	"autocaptions/internal/services"
	"autocaptions/internal/transcript"
)

func sampleCues() []segment.Cue {
	return []segment.Cue{
		{
			Tokens: []align.AlignedToken{
				{Token: transcript.Token{Surface: "Hello", Ordinal: 0}, Start: 0.0, End: 0.4},
				{Token: transcript.Token{Surface: "world", Ordinal: 1}, Start: 0.4, End: 0.9},
			},
			Text:  "Hello world",
			Start: 0.0,
			End:   1.2,
		},
		{
			Tokens: []align.AlignedToken{
				{Token: transcript.Token{Surface: "Second", Ordinal: 2}, Start: 2.0, End: 2.5},
				{Token: transcript.Token{Surface: "cue", Ordinal: 3}, Start: 2.5, End: 3.0},
			},
			Text:  "Second\ncue",
			Start: 2.0,
			End:   3.5,
		},
	}
}

func TestRenderDocumentShape(t *testing.T) {
	doc := assdoc.Build(sampleCues(), assdoc.DefaultStyle(), false)
	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	for _, want := range []string{
		"[Script Info]",
		"ScriptType: v4.00+",
		"[V4+ Styles]",
		"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding",
		"Style: Default,Arial,36,&H00FFFFFF,&H000000FF,&H000000FF,&H80000000,-1,0,0,0,100,100,0,0,1,2,2,2,20,20,50,1",
		"[Events]",
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text",
		"Dialogue: 0,0:00:00.00,0:00:01.20,Default,,0,0,0,,Hello world",
		`Dialogue: 0,0:00:02.00,0:00:03.50,Default,,0,0,0,,Second\Ncue`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("document missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptyCueListIsHeaderOnly(t *testing.T) {
	doc := assdoc.Build(nil, assdoc.DefaultStyle(), false)
	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	parsed, err := assdoc.Parse(out)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(parsed.Events) != 0 {
		t.Fatalf("header-only document should parse to zero events, got %d", len(parsed.Events))
	}
	if len(parsed.Styles) != 1 {
		t.Fatalf("expected one style, got %d", len(parsed.Styles))
	}
}

func TestRenderRejectsOutOfOrderEvents(t *testing.T) {
	doc := assdoc.Document{
		Styles: []assdoc.Style{assdoc.DefaultStyle()},
		Events: []assdoc.Event{
			{Start: 2.0, End: 3.0, Text: "late"},
			{Start: 1.0, End: 2.0, Text: "early"},
		},
	}
	if _, err := doc.Render(); !errors.Is(err, services.ErrInvariant) {
		t.Fatalf("expected ErrInvariant for out-of-order events, got %v", err)
	}
}

func TestRenderRejectsInvertedEvent(t *testing.T) {
	doc := assdoc.Document{
		Events: []assdoc.Event{{Start: 2.0, End: 1.0, Text: "backwards"}},
	}
	if _, err := doc.Render(); !errors.Is(err, services.ErrInvariant) {
		t.Fatalf("expected ErrInvariant for inverted event, got %v", err)
	}
}

func TestRenderIdempotent(t *testing.T) {
	doc := assdoc.Build(sampleCues(), assdoc.DefaultStyle(), false)
	first, err := doc.Render()
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	second, err := doc.Render()
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if first != second {
		t.Fatal("repeated renders must be byte-identical")
	}
}

func TestRoundTripStylesAndEvents(t *testing.T) {
	style := assdoc.DefaultStyle()
	style.FontName = "Futura"
	style.Italic = true
	style.Outline = 2.5
	doc := assdoc.Build(sampleCues(), style, false)

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	parsed, err := assdoc.Parse(out)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(parsed.Styles) != 1 || parsed.Styles[0] != style {
		t.Fatalf("style did not round-trip:\n got %+v\nwant %+v", parsed.Styles[0], style)
	}
	if len(parsed.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(parsed.Events))
	}
	if parsed.Events[0].Text != "Hello world" {
		t.Fatalf("unexpected event text: %q", parsed.Events[0].Text)
	}
	if parsed.Events[1].Start != 2.0 || parsed.Events[1].End != 3.5 {
		t.Fatalf("timing did not round-trip: (%v, %v)", parsed.Events[1].Start, parsed.Events[1].End)
	}
}

func TestWordByWordMode(t *testing.T) {
	doc := assdoc.Build(sampleCues(), assdoc.DefaultStyle(), true)
	if len(doc.Events) != 4 {
		t.Fatalf("word-by-word should emit one event per token, got %d", len(doc.Events))
	}
	if doc.Events[0].Text != "Hello" || doc.Events[0].End != 0.4 {
		t.Fatalf("unexpected first word event: %+v", doc.Events[0])
	}
}

func TestFormatTimestampRounding(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0:00:00.00"},
		{0.004, "0:00:00.00"},
		{0.005, "0:00:00.01"}, // round half up
		{1.8, "0:00:01.80"},
		{59.999, "0:01:00.00"},
		{3599.995, "1:00:00.00"},
		{3661.23, "1:01:01.23"},
	}
	for _, tc := range cases {
		if got := assdoc.FormatTimestamp(tc.in); got != tc.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseTimestampRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "1:02:03", "0:00:00.5", "0:61:00.00", "x:00:00.00"} {
		if _, err := assdoc.ParseTimestamp(in); err == nil {
			t.Fatalf("ParseTimestamp(%q) should fail", in)
		}
	}
}

func TestStyleFromConfigOverridesDefaults(t *testing.T) {
	cfg := config.Default().Style
	cfg.FontName = "Futura"
	cfg.FontSize = 48
	cfg.Italic = true
	cfg.Bold = false

	style := assdoc.StyleFromConfig(cfg)
	if style.FontName != "Futura" || style.FontSize != 48 {
		t.Fatalf("font overrides not applied: %+v", style)
	}
	if !style.Italic || style.Bold {
		t.Fatalf("flag overrides not applied: %+v", style)
	}
	if style.PrimaryColour != "&H00FFFFFF" || style.Alignment != 2 {
		t.Fatalf("defaults lost: %+v", style)
	}
}

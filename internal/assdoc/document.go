package assdoc

import (
	"fmt"
	"strings"

	"autocaptions/internal/segment"
	"autocaptions/internal/services"
)

// Event is one Dialogue line. Times are seconds; serialization rounds them
// to centiseconds.
type Event struct {
	Layer   int
	Start   float64
	End     float64
	Style   string
	Name    string
	MarginL int
	MarginR int
	MarginV int
	Effect  string
	Text    string
}

// Document is an ASS file: script header, named styles, ordered events.
type Document struct {
	Title  string
	Styles []Style
	Events []Event
}

// eventFormatLine is the exact Events section field order.
const eventFormatLine = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"

// Build assembles a document from segmented cues. With wordByWord set, each
// aligned token becomes its own dialogue event instead of one event per cue.
func Build(cues []segment.Cue, style Style, wordByWord bool) Document {
	doc := Document{
		Title:  "autocaptions",
		Styles: []Style{style},
	}
	for _, cue := range cues {
		if wordByWord {
			for _, token := range cue.Tokens {
				doc.Events = append(doc.Events, Event{
					Start: token.Start,
					End:   token.End,
					Style: style.Name,
					Text:  token.Surface,
				})
			}
			continue
		}
		doc.Events = append(doc.Events, Event{
			Start: cue.Start,
			End:   cue.End,
			Style: style.Name,
			Text:  escapeText(cue.Text),
		})
	}
	return doc
}

// Render serializes the document. Event starts must be non-decreasing after
// centisecond rounding; out-of-order events are a contract violation, not
// something to reorder silently.
func (d Document) Render() (string, error) {
	prevStart := int64(-1)
	for i, event := range d.Events {
		start := centiseconds(event.Start)
		end := centiseconds(event.End)
		if end < start {
			return "", services.Wrap(services.ErrInvariant, "styling", "render",
				fmt.Sprintf("event %d %q ends before it starts (%s > %s)", i, event.Text, FormatTimestamp(event.Start), FormatTimestamp(event.End)), nil)
		}
		if start < prevStart {
			return "", services.Wrap(services.ErrInvariant, "styling", "render",
				fmt.Sprintf("event %d %q starts at %s before the preceding event", i, event.Text, FormatTimestamp(event.Start)), nil)
		}
		prevStart = start
	}

	var b strings.Builder
	b.WriteString("[Script Info]\n")
	title := d.Title
	if strings.TrimSpace(title) == "" {
		title = "autocaptions"
	}
	b.WriteString("Title: " + title + "\n")
	b.WriteString("ScriptType: v4.00+\n")
	b.WriteString("WrapStyle: 0\n")
	b.WriteString("ScaledBorderAndShadow: yes\n")
	b.WriteString("YCbCr Matrix: None\n")
	b.WriteString("\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString(styleFormatLine + "\n")
	styles := d.Styles
	if len(styles) == 0 {
		styles = []Style{DefaultStyle()}
	}
	for _, style := range styles {
		b.WriteString(style.marshal() + "\n")
	}
	b.WriteString("\n")

	b.WriteString("[Events]\n")
	b.WriteString(eventFormatLine + "\n")
	for _, event := range d.Events {
		b.WriteString(event.marshal() + "\n")
	}
	return b.String(), nil
}

func (e Event) marshal() string {
	style := e.Style
	if style == "" {
		style = DefaultStyleName
	}
	return fmt.Sprintf("Dialogue: %d,%s,%s,%s,%s,%d,%d,%d,%s,%s",
		e.Layer,
		FormatTimestamp(e.Start),
		FormatTimestamp(e.End),
		style,
		e.Name,
		e.MarginL,
		e.MarginR,
		e.MarginV,
		e.Effect,
		e.Text,
	)
}

// escapeText converts wrapped cue text to dialogue text: hard line breaks
// become \N and stray section-corrupting characters are dropped.
func escapeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", `\N`)
	return text
}

package assdoc

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads an ASS document back for the fields this system controls:
// the script title, style records, and dialogue timing/text. Unknown
// sections and unknown header keys are ignored.
func Parse(input string) (Document, error) {
	var doc Document
	section := ""

	for lineNo, raw := range strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.Trim(line, "[]"))
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimLeft(value, " ")

		switch section {
		case "script info":
			if key == "Title" {
				doc.Title = value
			}
		case "v4+ styles":
			if key != "Style" {
				continue
			}
			style, err := parseStyle(value)
			if err != nil {
				return Document{}, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			doc.Styles = append(doc.Styles, style)
		case "events":
			if key != "Dialogue" {
				continue
			}
			event, err := parseEvent(value)
			if err != nil {
				return Document{}, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			doc.Events = append(doc.Events, event)
		}
	}
	return doc, nil
}

func parseEvent(value string) (Event, error) {
	// Text is the final field and may itself contain commas.
	parts := strings.SplitN(value, ",", 10)
	if len(parts) != 10 {
		return Event{}, fmt.Errorf("dialogue line has %d fields, want 10", len(parts))
	}
	var event Event
	var err error
	if event.Layer, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return Event{}, fmt.Errorf("layer: %w", err)
	}
	if event.Start, err = ParseTimestamp(parts[1]); err != nil {
		return Event{}, err
	}
	if event.End, err = ParseTimestamp(parts[2]); err != nil {
		return Event{}, err
	}
	event.Style = strings.TrimSpace(parts[3])
	event.Name = strings.TrimSpace(parts[4])
	if event.MarginL, err = strconv.Atoi(strings.TrimSpace(parts[5])); err != nil {
		return Event{}, fmt.Errorf("margin l: %w", err)
	}
	if event.MarginR, err = strconv.Atoi(strings.TrimSpace(parts[6])); err != nil {
		return Event{}, fmt.Errorf("margin r: %w", err)
	}
	if event.MarginV, err = strconv.Atoi(strings.TrimSpace(parts[7])); err != nil {
		return Event{}, fmt.Errorf("margin v: %w", err)
	}
	event.Effect = strings.TrimSpace(parts[8])
	event.Text = parts[9]
	return event, nil
}

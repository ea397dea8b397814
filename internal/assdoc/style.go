package assdoc

import (
	"fmt"
	"strconv"
	"strings"

	"autocaptions/internal/config"
)

// DefaultStyleName is the style every dialogue event references unless
// overridden.
const DefaultStyleName = "Default"

// Style is one named V4+ style record. Colour fields use the ASS
// &HAABBGGRR representation.
type Style struct {
	Name            string
	FontName        string
	FontSize        int
	PrimaryColour   string
	SecondaryColour string
	OutlineColour   string
	BackColour      string
	Bold            bool
	Italic          bool
	Underline       bool
	StrikeOut       bool
	ScaleX          int
	ScaleY          int
	Spacing         float64
	Angle           float64
	BorderStyle     int
	Outline         float64
	Shadow          float64
	Alignment       int
	MarginL         int
	MarginR         int
	MarginV         int
	Encoding        int
}

// DefaultStyle returns the built-in caption style.
func DefaultStyle() Style {
	return Style{
		Name:            DefaultStyleName,
		FontName:        "Arial",
		FontSize:        36,
		PrimaryColour:   "&H00FFFFFF",
		SecondaryColour: "&H000000FF",
		OutlineColour:   "&H000000FF",
		BackColour:      "&H80000000",
		Bold:            true,
		ScaleX:          100,
		ScaleY:          100,
		BorderStyle:     1,
		Outline:         2,
		Shadow:          2,
		Alignment:       2,
		MarginL:         20,
		MarginR:         20,
		MarginV:         50,
		Encoding:        1,
	}
}

// StyleFromConfig resolves the configured style over the built-in defaults.
// Empty or zero config fields keep their default values.
func StyleFromConfig(cfg config.Style) Style {
	style := DefaultStyle()
	if name := strings.TrimSpace(cfg.FontName); name != "" {
		style.FontName = name
	}
	if cfg.FontSize > 0 {
		style.FontSize = cfg.FontSize
	}
	if colour := strings.TrimSpace(cfg.PrimaryColour); colour != "" {
		style.PrimaryColour = colour
	}
	if colour := strings.TrimSpace(cfg.OutlineColour); colour != "" {
		style.OutlineColour = colour
	}
	if colour := strings.TrimSpace(cfg.BackColour); colour != "" {
		style.BackColour = colour
	}
	style.Bold = cfg.Bold
	style.Italic = cfg.Italic
	style.Underline = cfg.Underline
	style.StrikeOut = cfg.StrikeOut
	if cfg.Alignment >= 1 && cfg.Alignment <= 9 {
		style.Alignment = cfg.Alignment
	}
	if cfg.MarginL > 0 {
		style.MarginL = cfg.MarginL
	}
	if cfg.MarginR > 0 {
		style.MarginR = cfg.MarginR
	}
	if cfg.MarginV > 0 {
		style.MarginV = cfg.MarginV
	}
	if cfg.BorderStyle == 1 || cfg.BorderStyle == 3 {
		style.BorderStyle = cfg.BorderStyle
	}
	if cfg.Outline >= 0 {
		style.Outline = cfg.Outline
	}
	if cfg.Shadow >= 0 {
		style.Shadow = cfg.Shadow
	}
	return style
}

// styleFormatLine is the exact V4+ Styles field order.
const styleFormatLine = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"

func (s Style) marshal() string {
	fields := []string{
		s.Name,
		s.FontName,
		strconv.Itoa(s.FontSize),
		s.PrimaryColour,
		s.SecondaryColour,
		s.OutlineColour,
		s.BackColour,
		assBool(s.Bold),
		assBool(s.Italic),
		assBool(s.Underline),
		assBool(s.StrikeOut),
		strconv.Itoa(s.ScaleX),
		strconv.Itoa(s.ScaleY),
		assFloat(s.Spacing),
		assFloat(s.Angle),
		strconv.Itoa(s.BorderStyle),
		assFloat(s.Outline),
		assFloat(s.Shadow),
		strconv.Itoa(s.Alignment),
		strconv.Itoa(s.MarginL),
		strconv.Itoa(s.MarginR),
		strconv.Itoa(s.MarginV),
		strconv.Itoa(s.Encoding),
	}
	return "Style: " + strings.Join(fields, ",")
}

func parseStyle(value string) (Style, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 23 {
		return Style{}, fmt.Errorf("style line has %d fields, want 23", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	style := Style{
		Name:            parts[0],
		FontName:        parts[1],
		PrimaryColour:   parts[3],
		SecondaryColour: parts[4],
		OutlineColour:   parts[5],
		BackColour:      parts[6],
	}
	var err error
	if style.FontSize, err = strconv.Atoi(parts[2]); err != nil {
		return Style{}, fmt.Errorf("font size: %w", err)
	}
	style.Bold = parts[7] == "-1"
	style.Italic = parts[8] == "-1"
	style.Underline = parts[9] == "-1"
	style.StrikeOut = parts[10] == "-1"
	if style.ScaleX, err = strconv.Atoi(parts[11]); err != nil {
		return Style{}, fmt.Errorf("scale x: %w", err)
	}
	if style.ScaleY, err = strconv.Atoi(parts[12]); err != nil {
		return Style{}, fmt.Errorf("scale y: %w", err)
	}
	if style.Spacing, err = strconv.ParseFloat(parts[13], 64); err != nil {
		return Style{}, fmt.Errorf("spacing: %w", err)
	}
	if style.Angle, err = strconv.ParseFloat(parts[14], 64); err != nil {
		return Style{}, fmt.Errorf("angle: %w", err)
	}
	if style.BorderStyle, err = strconv.Atoi(parts[15]); err != nil {
		return Style{}, fmt.Errorf("border style: %w", err)
	}
	if style.Outline, err = strconv.ParseFloat(parts[16], 64); err != nil {
		return Style{}, fmt.Errorf("outline: %w", err)
	}
	if style.Shadow, err = strconv.ParseFloat(parts[17], 64); err != nil {
		return Style{}, fmt.Errorf("shadow: %w", err)
	}
	if style.Alignment, err = strconv.Atoi(parts[18]); err != nil {
		return Style{}, fmt.Errorf("alignment: %w", err)
	}
	if style.MarginL, err = strconv.Atoi(parts[19]); err != nil {
		return Style{}, fmt.Errorf("margin l: %w", err)
	}
	if style.MarginR, err = strconv.Atoi(parts[20]); err != nil {
		return Style{}, fmt.Errorf("margin r: %w", err)
	}
	if style.MarginV, err = strconv.Atoi(parts[21]); err != nil {
		return Style{}, fmt.Errorf("margin v: %w", err)
	}
	if style.Encoding, err = strconv.Atoi(parts[22]); err != nil {
		return Style{}, fmt.Errorf("encoding: %w", err)
	}
	return style, nil
}

// assBool renders ASS boolean flags: -1 is true, 0 is false.
func assBool(value bool) string {
	if value {
		return "-1"
	}
	return "0"
}

// assFloat renders numeric style fields without a trailing ".0" for whole
// values, matching common ASS tooling output.
func assFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

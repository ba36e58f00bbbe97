package style

import (
	"strconv"
	"strings"

	"github.com/starford/mailcraft/internal/models"
)

// Length returns the prop at key as a CSS length. Unitless numbers, whether
// stored as numbers or numeric strings, are given a px unit.
func Length(p models.Props, key, def string) string {
	s, ok := p.String(key)
	if !ok {
		return def
	}
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s + "px"
	}
	return s
}

// Pixels formats n as a px length.
func Pixels(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64) + "px"
}

// ButtonRadius returns the button corner radius, default 4px.
func ButtonRadius(p models.Props) string {
	return Length(p, "borderRadius", Pixels(DefaultButtonRadius))
}

// ImageWidth returns the image width percentage clamped to 0–100.
func ImageWidth(p models.Props) float64 {
	w, ok := p.Number("width")
	if !ok {
		return DefaultImageWidth
	}
	switch {
	case w < 0:
		return 0
	case w > 100:
		return 100
	}
	return w
}

// SpacerHeight returns the spacer height as a px length.
func SpacerHeight(p models.Props) string {
	return Length(p, "height", Pixels(DefaultSpacerHeight))
}

// FontSize returns the text font size as a px length.
func FontSize(p models.Props) string {
	return Length(p, "fontSize", Pixels(DefaultFontSize))
}

// ColumnCount returns how many empty cells a childless columns block shows.
func ColumnCount(p models.Props) int {
	n, ok := p.Number("count")
	if !ok || n < 1 {
		return DefaultColumnCount
	}
	if n > 6 {
		return 6
	}
	return int(n)
}

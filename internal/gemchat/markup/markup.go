// Package markup normalizes raw answer text returned by the Gemini API.
// It detects heading lines written as "**Title*" style emphasis and strips
// emphasis markers so the answer reads cleanly in a terminal.
//
// Example usage:
//
//	if markup.IsHeading(line) {
//		line = markup.StripHeadingMarkers(line)
//	}
//	text := markup.CleanResponseText(raw)
package markup

import (
	"regexp"
	"strings"
)

var (
	headingPattern    = regexp.MustCompile(`^\*\*(.*)\*$`)
	spaceBeforePeriod = regexp.MustCompile(`\s+\.`)
	excessNewlines    = regexp.MustCompile(`\n{3,}`)
	lineSeparator     = regexp.MustCompile(`\* |\n`)
)

// Line is a single display line of an answer
type Line struct {
	Text    string `json:"text"`
	Heading bool   `json:"heading"`
}

// IsHeading reports whether text starts with two markers and ends with one
func IsHeading(text string) bool {
	return headingPattern.MatchString(text)
}

// StripHeadingMarkers removes the two leading markers and the single trailing
// marker of a heading. Text that is not a heading is returned unchanged.
func StripHeadingMarkers(text string) string {
	m := headingPattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return m[1]
}

// CleanResponseText removes emphasis markers, whitespace before periods and
// runs of more than two newlines.
func CleanResponseText(text string) string {
	if text == "" {
		return text
	}
	text = strings.ReplaceAll(text, "*", "")
	text = spaceBeforePeriod.ReplaceAllString(text, ".")
	return excessNewlines.ReplaceAllString(text, "\n\n")
}

// Lines splits raw answer text into display lines.
// Pieces are separated by a newline or by "* " (a list bullet or the tail of
// a bold span); heading detection runs on the raw piece before cleaning.
func Lines(raw string) []Line {
	var lines []Line
	for _, piece := range lineSeparator.Split(raw, -1) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		heading := IsHeading(piece)
		text := piece
		if heading {
			text = StripHeadingMarkers(piece)
		}
		text = strings.TrimSpace(CleanResponseText(text))
		if text == "" {
			continue
		}

		lines = append(lines, Line{Text: text, Heading: heading})
	}
	return lines
}

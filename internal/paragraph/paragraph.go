// Package paragraph splits document text into blank-line delimited
// paragraphs and joins them back without losing a single byte.
package paragraph

import (
	"strings"
	"unicode"
)

// Separator is the blank line that delimits paragraphs.
const Separator = "\n\n"

// Paragraph is one span of document text addressed by its ordinal position.
// Text is the raw span; comparisons use Trimmed.
type Paragraph struct {
	Index int
	Text  string
}

// Trimmed returns the paragraph without leading or trailing whitespace.
func (p Paragraph) Trimmed() string {
	return strings.TrimSpace(p.Text)
}

// Empty reports whether the paragraph holds only whitespace.
func (p Paragraph) Empty() bool {
	return p.Trimmed() == ""
}

// Segment splits text on Separator. Consecutive separators produce empty
// paragraphs that keep their position; the empty string yields one empty
// paragraph.
func Segment(text string) []Paragraph {
	parts := strings.Split(text, Separator)
	paragraphs := make([]Paragraph, len(parts))
	for i, part := range parts {
		paragraphs[i] = Paragraph{Index: i, Text: part}
	}
	return paragraphs
}

// Join reassembles paragraphs with Separator. Join(Segment(s)) == s.
func Join(paragraphs []Paragraph) string {
	var b strings.Builder
	for i, p := range paragraphs {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// Replace returns a copy of paragraphs where the trimmed body of the paragraph
// at index is swapped for text. Whitespace surrounding the old body is kept.
// It returns false when index is out of range.
func Replace(paragraphs []Paragraph, index int, text string) ([]Paragraph, bool) {
	if index < 0 || index >= len(paragraphs) {
		return nil, false
	}
	out := append([]Paragraph(nil), paragraphs...)
	raw := out[index].Text
	if strings.TrimSpace(raw) == "" {
		out[index].Text = text
		return out, true
	}
	lead := raw[:len(raw)-len(strings.TrimLeftFunc(raw, unicode.IsSpace))]
	trail := raw[len(strings.TrimRightFunc(raw, unicode.IsSpace)):]
	out[index].Text = lead + text + trail
	return out, true
}

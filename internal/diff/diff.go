// Package diff computes word-level edit scripts between two paragraphs.
//
// Tokens are runs of letters and digits, or single punctuation runes, each
// carrying the whitespace that follows it, so concatenating tokens always
// reproduces the input exactly. When neither side has a word boundary the
// script falls back to runes. Alignment is a longest-common-subsequence walk
// that matches equal heads first and prefers removals on ties, which keeps the
// output stable for a given pair of inputs.
package diff

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a segment of an edit script.
type Kind string

const (
	Unchanged Kind = "unchanged"
	Added     Kind = "added"
	Removed   Kind = "removed"
)

// MaxCells bounds the LCS table (tokens(original) * tokens(corrected)).
// Larger inputs get a coarse script: everything removed, then everything added.
const MaxCells = 4_000_000

// Segment is one run of the edit script.
type Segment struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Compute returns the edit script turning original into corrected.
func Compute(original, corrected string) []Segment {
	a := tokenize(original)
	b := tokenize(corrected)
	if len(a) <= 1 && len(b) <= 1 {
		a = runes(original)
		b = runes(corrected)
	}
	if len(a)*len(b) > MaxCells {
		return coarse(original, corrected)
	}
	return align(a, b)
}

// Original rebuilds the left side of the script (unchanged + removed).
func Original(segments []Segment) string {
	return rebuild(segments, Removed)
}

// Corrected rebuilds the right side of the script (unchanged + added).
func Corrected(segments []Segment) string {
	return rebuild(segments, Added)
}

// Stats counts the words touched by a script.
type Stats struct {
	Added   int
	Removed int
}

// Summarize counts added and removed words.
func Summarize(segments []Segment) Stats {
	var stats Stats
	for _, seg := range segments {
		words := len(strings.Fields(seg.Text))
		if words == 0 {
			// whitespace-only edit
			words = 1
		}
		switch seg.Kind {
		case Added:
			stats.Added += words
		case Removed:
			stats.Removed += words
		}
	}
	return stats
}

// HasChanges reports whether the script contains any added or removed text.
func HasChanges(segments []Segment) bool {
	for _, seg := range segments {
		if seg.Kind != Unchanged {
			return true
		}
	}
	return false
}

func rebuild(segments []Segment, side Kind) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind == Unchanged || seg.Kind == side {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func align(a, b []string) []Segment {
	n, m := len(a), len(b)
	width := m + 1
	// lcs[i*width+j] is the LCS length of a[i:] and b[j:].
	lcs := make([]int32, (n+1)*width)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i*width+j] = lcs[(i+1)*width+j+1] + 1
			} else if down, right := lcs[(i+1)*width+j], lcs[i*width+j+1]; down >= right {
				lcs[i*width+j] = down
			} else {
				lcs[i*width+j] = right
			}
		}
	}

	var script builder
	i, j := 0, 0
	for i < n && j < m {
		if a[i] == b[j] {
			script.keep(a[i])
			i++
			j++
			continue
		}
		if lcs[(i+1)*width+j] >= lcs[i*width+j+1] {
			script.remove(a[i])
			i++
		} else {
			script.add(b[j])
			j++
		}
	}
	for ; i < n; i++ {
		script.remove(a[i])
	}
	for ; j < m; j++ {
		script.add(b[j])
	}
	return script.finish()
}

func coarse(original, corrected string) []Segment {
	var script builder
	script.remove(original)
	script.add(corrected)
	return script.finish()
}

// builder accumulates a script, holding pending removals and additions so a
// changed region is always emitted removed-then-added.
type builder struct {
	segments []Segment
	removed  strings.Builder
	added    strings.Builder
}

func (s *builder) keep(token string) {
	s.flush()
	s.push(Unchanged, token)
}

func (s *builder) remove(token string) {
	s.removed.WriteString(token)
}

func (s *builder) add(token string) {
	s.added.WriteString(token)
}

func (s *builder) flush() {
	if s.removed.Len() > 0 {
		s.push(Removed, s.removed.String())
		s.removed.Reset()
	}
	if s.added.Len() > 0 {
		s.push(Added, s.added.String())
		s.added.Reset()
	}
}

func (s *builder) push(kind Kind, text string) {
	if text == "" {
		return
	}
	if last := len(s.segments) - 1; last >= 0 && s.segments[last].Kind == kind {
		s.segments[last].Text += text
		return
	}
	s.segments = append(s.segments, Segment{Kind: kind, Text: text})
}

func (s *builder) finish() []Segment {
	s.flush()
	return s.segments
}

func tokenize(s string) []string {
	var tokens []string
	i := skipSpace(s, 0)
	if i > 0 {
		tokens = append(tokens, s[:i])
	}
	for i < len(s) {
		start := i
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if isWord(r) {
			for i < len(s) {
				r, size = utf8.DecodeRuneInString(s[i:])
				if !isWord(r) {
					break
				}
				i += size
			}
		}
		i = skipSpace(s, i)
		tokens = append(tokens, s[start:i])
	}
	return tokens
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

func runes(s string) []string {
	tokens := make([]string, 0, utf8.RuneCountInString(s))
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		tokens = append(tokens, s[i:i+size])
		i += size
	}
	return tokens
}

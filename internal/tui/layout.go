package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/vibewrite/internal/diff"
	"github.com/csheth/vibewrite/internal/suggest"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	listHeight     int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 12,
		listHeight:     6,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth

	const chrome = 9
	usable := height - chrome
	if usable < 10 {
		usable = 10
	}
	l.listHeight = usable / 3
	if l.listHeight < 3 {
		l.listHeight = 3
	}
	if l.listHeight > 10 {
		l.listHeight = 10
	}
	l.viewportHeight = usable - l.listHeight
	if l.viewportHeight < 5 {
		l.viewportHeight = 5
	}
}

// visibleWindow returns the [start, end) slice of n rows that keeps cursor
// on screen within height rows.
func visibleWindow(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

func (m *model) suggestionList() string {
	if len(m.pending) == 0 {
		return helperStyle.Render("No pending suggestions.")
	}
	start, end := visibleWindow(len(m.pending), m.cursor, m.layout.listHeight)
	rows := make([]string, 0, end-start)
	width := m.layout.viewportWidth
	for i := start; i < end; i++ {
		sg := m.pending[i]
		stats := diff.Summarize(sg.Diff)
		prefix := fmt.Sprintf("¶%-3d %s %s  ", sg.ParagraphIndex+1,
			addedStyle.Render(fmt.Sprintf("+%d", stats.Added)),
			removedStyle.Render(fmt.Sprintf("-%d", stats.Removed)))
		plainPrefix := fmt.Sprintf("¶%-3d +%d -%d  ", sg.ParagraphIndex+1, stats.Added, stats.Removed)
		preview := truncate(previewText(sg.Corrected, listPreviewLimit), width-runewidth.StringWidth(plainPrefix)-2)
		if i == m.cursor {
			rows = append(rows, currentLineStyle.Render("▸ "+plainPrefix+preview))
			continue
		}
		rows = append(rows, "  "+prefix+helperStyle.Render(preview))
	}
	if start > 0 || end < len(m.pending) {
		rows = append(rows, helperStyle.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(m.pending))))
	}
	return strings.Join(rows, "\n")
}

// renderSuggestion shows the inline diff followed by the full rewrite.
func renderSuggestion(sg suggest.Suggestion, width int) string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Paragraph %d", sg.ParagraphIndex+1)))
	b.WriteRune('\n')
	b.WriteString(wordwrap.String(renderDiff(sg.Diff), width))
	b.WriteString("\n\n")
	b.WriteString(sectionHeaderStyle.Render("Rewrite"))
	b.WriteRune('\n')
	b.WriteString(wordwrap.String(sg.Corrected, width))
	return b.String()
}

func renderDiff(segments []diff.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case diff.Added:
			b.WriteString(addedStyle.Render(seg.Text))
		case diff.Removed:
			b.WriteString(removedStyle.Render(seg.Text))
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func previewText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 1 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "…")
}

package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/csheth/vibewrite/internal/diff"
	"github.com/csheth/vibewrite/internal/suggest"
)

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name           string
		width          int
		height         int
		viewportWidth  int
		viewportHeight int
		listHeight     int
	}{
		{name: "narrow", width: 80, height: 24, viewportWidth: 76, viewportHeight: 10, listHeight: 5},
		{name: "wide", width: 200, height: 40, viewportWidth: 196, viewportHeight: 21, listHeight: 10},
		{name: "tiny", width: 30, height: 10, viewportWidth: 40, viewportHeight: 7, listHeight: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.viewportWidth != tc.viewportWidth {
				t.Fatalf("viewport width mismatch: got %d want %d", layout.viewportWidth, tc.viewportWidth)
			}
			if layout.viewportHeight != tc.viewportHeight {
				t.Fatalf("viewport height mismatch: got %d want %d", layout.viewportHeight, tc.viewportHeight)
			}
			if layout.listHeight != tc.listHeight {
				t.Fatalf("list height mismatch: got %d want %d", layout.listHeight, tc.listHeight)
			}
		})
	}
}

func TestVisibleWindowKeepsCursorOnScreen(t *testing.T) {
	cases := []struct {
		n, cursor, height int
		start, end        int
	}{
		{n: 3, cursor: 2, height: 5, start: 0, end: 3},
		{n: 20, cursor: 0, height: 5, start: 0, end: 5},
		{n: 20, cursor: 10, height: 5, start: 8, end: 13},
		{n: 20, cursor: 19, height: 5, start: 15, end: 20},
	}
	for _, tc := range cases {
		start, end := visibleWindow(tc.n, tc.cursor, tc.height)
		if start != tc.start || end != tc.end {
			t.Fatalf("visibleWindow(%d,%d,%d) = [%d,%d), want [%d,%d)", tc.n, tc.cursor, tc.height, start, end, tc.start, tc.end)
		}
		if tc.cursor < start || tc.cursor >= end {
			t.Fatalf("cursor %d outside [%d,%d)", tc.cursor, start, end)
		}
	}
}

func TestTruncateRespectsDisplayWidth(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate kept = %q", got)
	}
	got := truncate("日本語のテキストです", 8)
	if w := runewidth.StringWidth(got); w > 8 {
		t.Fatalf("width %d exceeds 8 (%q)", w, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	if got := truncate("anything", 0); got != "" {
		t.Fatalf("zero width should be empty, got %q", got)
	}
}

func TestPreviewTextCollapsesWhitespace(t *testing.T) {
	if got := previewText("one\n  two\tthree", 0); got != "one two three" {
		t.Fatalf("previewText = %q", got)
	}
	if got := previewText("abcdefgh", 4); got != "abcd…" {
		t.Fatalf("previewText limit = %q", got)
	}
}

func TestRenderSuggestionIncludesDiffAndRewrite(t *testing.T) {
	sg := suggest.Suggestion{
		ID:             "suggestion-1",
		ParagraphIndex: 2,
		Original:       "The end is neigh.",
		Corrected:      "The end is nigh.",
		Diff:           diff.Compute("The end is neigh.", "The end is nigh."),
	}
	out := renderSuggestion(sg, 60)
	for _, want := range []string{"Paragraph 3", "Rewrite", "neigh", "nigh"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered suggestion missing %q:\n%s", want, out)
		}
	}
}

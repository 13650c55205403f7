package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pairs = []struct {
	original  string
	corrected string
}{
	{"The quick brown fox", "The quick red fox"},
	{"A", "B2"},
	{"", "added from nothing"},
	{"removed to nothing", ""},
	{"same text", "same text"},
	{"Their going too the store.", "They're going to the store."},
	{"one  two\tthree", "one two three"},
	{"Hello, world!", "Hello world."},
	{"日本語の段落", "日本語の文章"},
	{"a b a b a", "b a b a b"},
	{"It was the best of times, it was the worst of times.", "It was the best of times; it was also the worst."},
}

func TestComputeRoundTrips(t *testing.T) {
	for _, tc := range pairs {
		script := Compute(tc.original, tc.corrected)
		assert.Equal(t, tc.original, Original(script), "original side of %q -> %q", tc.original, tc.corrected)
		assert.Equal(t, tc.corrected, Corrected(script), "corrected side of %q -> %q", tc.original, tc.corrected)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	for _, tc := range pairs {
		first := Compute(tc.original, tc.corrected)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, Compute(tc.original, tc.corrected))
		}
	}
}

func TestComputeWordLevel(t *testing.T) {
	got := Compute("The quick brown fox", "The quick red fox")
	want := []Segment{
		{Kind: Unchanged, Text: "The quick "},
		{Kind: Removed, Text: "brown "},
		{Kind: Added, Text: "red "},
		{Kind: Unchanged, Text: "fox"},
	}
	assert.Equal(t, want, got)
}

func TestComputeIdenticalHasNoChanges(t *testing.T) {
	script := Compute("nothing changes here", "nothing changes here")
	require.Len(t, script, 1)
	assert.Equal(t, Unchanged, script[0].Kind)
	assert.False(t, HasChanges(script))
}

func TestComputeFallsBackToRunes(t *testing.T) {
	got := Compute("日本語の段落", "日本語の文章")
	want := []Segment{
		{Kind: Unchanged, Text: "日本語の"},
		{Kind: Removed, Text: "段落"},
		{Kind: Added, Text: "文章"},
	}
	assert.Equal(t, want, got)
}

func TestComputePreservesWhitespace(t *testing.T) {
	script := Compute("one  two\tthree", "one two three")
	assert.True(t, HasChanges(script))
	assert.Equal(t, "one  two\tthree", Original(script))
	assert.Equal(t, "one two three", Corrected(script))
}

func TestChangedRegionsEmitRemovalsFirst(t *testing.T) {
	script := Compute("Their going too the store.", "They're going to the store.")
	for i := 1; i < len(script); i++ {
		if script[i].Kind == Removed {
			assert.NotEqual(t, Added, script[i-1].Kind, "removal follows addition at %d: %#v", i, script)
		}
		assert.NotEqual(t, script[i-1].Kind, script[i].Kind, "adjacent segments not merged: %#v", script)
	}
}

func TestComputeCoarseAboveLimit(t *testing.T) {
	original := strings.Repeat("alpha ", 2100)
	corrected := strings.Repeat("beta ", 2100)
	script := Compute(original, corrected)
	require.Len(t, script, 2)
	assert.Equal(t, Removed, script[0].Kind)
	assert.Equal(t, Added, script[1].Kind)
	assert.Equal(t, original, Original(script))
	assert.Equal(t, corrected, Corrected(script))
}

func TestSummarize(t *testing.T) {
	stats := Summarize(Compute("The quick brown fox", "The very quick red fox"))
	assert.Equal(t, Stats{Added: 2, Removed: 1}, stats)
}

package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/vibewrite/internal/llm"
)

type fakeDrafter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeDrafter) Name() string { return "fake" }

func (f *fakeDrafter) Draft(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestAppend(t *testing.T) {
	cases := []struct {
		name     string
		document string
		reply    string
		want     string
	}{
		{"blank document", "", "  Hello.\n", "Hello."},
		{"whitespace document", " \n ", "Hello.", " \n Hello."},
		{"existing text", "First.", "Second.", "First.\n\nSecond."},
		{"empty reply", "First.", "  ", "First."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Append(tc.document, tc.reply))
		})
	}
}

func TestComposeAppendsTrimmedReply(t *testing.T) {
	drafter := &fakeDrafter{reply: "\n  A closing paragraph.  \n"}
	result, err := Compose(context.Background(), drafter, "Opening.", "Write a conclusion.")
	require.NoError(t, err)
	assert.Equal(t, "A closing paragraph.", result.Draft)
	assert.Equal(t, "Opening.\n\nA closing paragraph.", result.Document)
	assert.Equal(t, []string{"Write a conclusion."}, drafter.prompts)
}

func TestComposeRejectsBlankPrompt(t *testing.T) {
	drafter := &fakeDrafter{reply: "ignored"}
	_, err := Compose(context.Background(), drafter, "Opening.", "   ")
	assert.ErrorIs(t, err, llm.ErrEmptyPrompt)
	assert.Empty(t, drafter.prompts)
}

func TestComposeSurfacesServiceErrors(t *testing.T) {
	boom := &llm.ServiceError{Kind: llm.KindStatus, Provider: "ollama", StatusCode: 404, Message: "model not found"}
	_, err := Compose(context.Background(), &fakeDrafter{err: boom}, "", "Say hi.")
	require.Error(t, err)
	assert.Equal(t, llm.KindStatus, llm.KindOf(err))
	assert.True(t, errors.As(err, new(*llm.ServiceError)))
}

func TestComposeRejectsEmptyReply(t *testing.T) {
	_, err := Compose(context.Background(), &fakeDrafter{reply: " \n"}, "Opening.", "Say hi.")
	assert.ErrorContains(t, err, "empty draft")
}

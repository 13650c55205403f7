package mcptools

import (
	"github.com/csheth/vibewrite/internal/diff"
	"github.com/csheth/vibewrite/internal/suggest"
)

// AnalyzeDocumentInput is the input for the analyze_document tool.
type AnalyzeDocumentInput struct {
	Document string `json:"document" jsonschema:"the full document text; paragraphs are separated by a blank line"`
	Replace  bool   `json:"replace,omitempty" jsonschema:"drop suggestions left over from earlier passes"`
}

// FailureView describes a paragraph that produced no suggestion.
type FailureView struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AnalyzeDocumentOutput is the result of the analyze_document tool.
type AnalyzeDocumentOutput struct {
	Paragraphs  int                  `json:"paragraphs"`
	Requested   int                  `json:"requested"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
	Unchanged   []int                `json:"unchanged,omitempty"`
	Failures    []FailureView        `json:"failures,omitempty"`
}

// ApplySuggestionInput is the input for the apply_suggestion tool.
type ApplySuggestionInput struct {
	ID       string `json:"id" jsonschema:"suggestion id returned by analyze_document"`
	Document string `json:"document" jsonschema:"the current document text the suggestion should be applied to"`
}

// ApplySuggestionOutput is the result of the apply_suggestion tool.
type ApplySuggestionOutput struct {
	Status   string `json:"status" jsonschema:"applied, stale or not_found"`
	Document string `json:"document" jsonschema:"the updated text, or the input text when nothing was applied"`
	Message  string `json:"message,omitempty"`
}

// DiscardSuggestionInput is the input for the discard_suggestion tool.
type DiscardSuggestionInput struct {
	ID string `json:"id" jsonschema:"suggestion id to drop"`
}

// DiscardSuggestionOutput is the result of the discard_suggestion tool.
type DiscardSuggestionOutput struct {
	Status string `json:"status" jsonschema:"discarded or not_found"`
}

// ListPendingInput is the input for the list_pending tool.
type ListPendingInput struct{}

// PendingView is a compact listing entry.
type PendingView struct {
	ID             string `json:"id"`
	ParagraphIndex int    `json:"paragraphIndex"`
	Added          int    `json:"added"`
	Removed        int    `json:"removed"`
	Corrected      string `json:"correctedParagraph"`
}

// ListPendingOutput is the result of the list_pending tool.
type ListPendingOutput struct {
	Pending []PendingView `json:"pending"`
}

// DraftInput is the input for the draft tool.
type DraftInput struct {
	Document string `json:"document" jsonschema:"current document text; may be empty"`
	Prompt   string `json:"prompt" jsonschema:"what the model should write"`
}

// DraftOutput is the result of the draft tool.
type DraftOutput struct {
	Document string `json:"document" jsonschema:"document with the draft appended as a new paragraph"`
	Draft    string `json:"draft,omitempty"`
}

func pendingView(sg suggest.Suggestion) PendingView {
	stats := diff.Summarize(sg.Diff)
	return PendingView{
		ID:             sg.ID,
		ParagraphIndex: sg.ParagraphIndex,
		Added:          stats.Added,
		Removed:        stats.Removed,
		Corrected:      sg.Corrected,
	}
}

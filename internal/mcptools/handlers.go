package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/csheth/vibewrite/internal/draft"
	"github.com/csheth/vibewrite/internal/llm"
	"github.com/csheth/vibewrite/internal/revise"
	"github.com/csheth/vibewrite/internal/suggest"
)

const (
	statusApplied   = "applied"
	statusStale     = "stale"
	statusNotFound  = "not_found"
	statusDiscarded = "discarded"
)

// RevisionService handles MCP tool calls against a revision engine.
type RevisionService struct {
	engine  *revise.Engine
	opts    revise.Options
	drafter llm.Drafter
}

// NewRevisionService creates a RevisionService. opts apply to every
// analyze_document call; Replace is taken from the call input.
func NewRevisionService(engine *revise.Engine, opts revise.Options) *RevisionService {
	opts.OnProgress = nil
	return &RevisionService{engine: engine, opts: opts}
}

// WithDrafter enables the draft tool.
func (s *RevisionService) WithDrafter(d llm.Drafter) *RevisionService {
	s.drafter = d
	return s
}

// AnalyzeDocument runs a revision pass over the document.
func (s *RevisionService) AnalyzeDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeDocumentInput,
) (*mcp.CallToolResult, AnalyzeDocumentOutput, error) {
	opts := s.opts
	opts.Replace = input.Replace
	report, err := s.engine.Analyze(ctx, input.Document, opts)
	if err != nil {
		return nil, AnalyzeDocumentOutput{}, fmt.Errorf("analyze document: %w", err)
	}

	return nil, NewAnalyzeDocumentOutput(report), nil
}

// NewAnalyzeDocumentOutput converts a pass report into its wire form.
func NewAnalyzeDocumentOutput(report revise.Report) AnalyzeDocumentOutput {
	out := AnalyzeDocumentOutput{
		Paragraphs:  report.Paragraphs,
		Requested:   report.Requested,
		Suggestions: report.Suggestions,
		Unchanged:   report.Unchanged,
	}
	if out.Suggestions == nil {
		out.Suggestions = []suggest.Suggestion{}
	}
	for _, f := range report.Failures {
		out.Failures = append(out.Failures, FailureView{Index: f.Index, Kind: string(f.Kind), Message: f.Err.Error()})
	}
	return out
}

// ApplySuggestion applies one suggestion to the supplied document.
func (s *RevisionService) ApplySuggestion(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ApplySuggestionInput,
) (*mcp.CallToolResult, ApplySuggestionOutput, error) {
	updated, err := s.engine.Apply(input.ID, input.Document)
	switch {
	case err == nil:
		return nil, ApplySuggestionOutput{Status: statusApplied, Document: updated}, nil
	case errors.Is(err, revise.ErrStale):
		return toolError(err), ApplySuggestionOutput{Status: statusStale, Document: input.Document, Message: err.Error()}, nil
	case errors.Is(err, revise.ErrNotFound):
		return toolError(err), ApplySuggestionOutput{Status: statusNotFound, Document: input.Document, Message: err.Error()}, nil
	default:
		return nil, ApplySuggestionOutput{}, err
	}
}

// DiscardSuggestion drops a pending suggestion.
func (s *RevisionService) DiscardSuggestion(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DiscardSuggestionInput,
) (*mcp.CallToolResult, DiscardSuggestionOutput, error) {
	if !s.engine.Discard(input.ID) {
		return nil, DiscardSuggestionOutput{Status: statusNotFound}, nil
	}
	return nil, DiscardSuggestionOutput{Status: statusDiscarded}, nil
}

// ListPending lists pending suggestions in paragraph order.
func (s *RevisionService) ListPending(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListPendingInput,
) (*mcp.CallToolResult, ListPendingOutput, error) {
	out := ListPendingOutput{Pending: []PendingView{}}
	for _, sg := range s.engine.ListPending() {
		out.Pending = append(out.Pending, pendingView(sg))
	}
	return nil, out, nil
}

// Draft appends model-written text answering the prompt to the document.
// Failures leave the document unchanged and are reported as tool errors.
func (s *RevisionService) Draft(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DraftInput,
) (*mcp.CallToolResult, DraftOutput, error) {
	if s.drafter == nil {
		return nil, DraftOutput{}, errors.New("drafting is not configured")
	}
	result, err := draft.Compose(ctx, s.drafter, input.Document, input.Prompt)
	if err != nil {
		return toolError(err), DraftOutput{Document: input.Document}, nil
	}
	return nil, DraftOutput{Document: result.Document, Draft: result.Draft}, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

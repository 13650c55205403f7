// Package mcptools exposes the revision engine as MCP tools.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewRevisionMCPServer creates an MCP server with analyze_document,
// apply_suggestion, discard_suggestion and list_pending registered, plus
// draft when the service has a drafter.
func NewRevisionMCPServer(svc *RevisionService, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "vibewrite",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_document",
		Description: "Request a rewrite of every paragraph and return the suggestions that differ from the original, with word-level diffs.",
	}, svc.AnalyzeDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_suggestion",
		Description: "Apply one pending suggestion to the current document text. Fails with status stale when the paragraph changed since analysis.",
	}, svc.ApplySuggestion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "discard_suggestion",
		Description: "Drop a pending suggestion without applying it.",
	}, svc.DiscardSuggestion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_pending",
		Description: "List pending suggestions in paragraph order.",
	}, svc.ListPending)

	if svc.drafter != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "draft",
			Description: "Ask the model to write new text for the prompt and append it to the document as a new paragraph.",
		}, svc.Draft)
	}

	return server
}

// RunStdio serves on stdin/stdout until the client disconnects or ctx ends.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

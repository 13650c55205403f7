// Package draft appends model-written text to the end of a document.
package draft

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/csheth/vibewrite/internal/llm"
	"github.com/csheth/vibewrite/internal/paragraph"
)

// Result is a document after a draft was appended.
type Result struct {
	Document string
	Draft    string
}

// Append adds reply to the end of document as a new paragraph. A blank
// document gets the reply alone.
func Append(document, reply string) string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return document
	}
	if strings.TrimSpace(document) == "" {
		return document + reply
	}
	return document + paragraph.Separator + reply
}

// Compose asks drafter for text answering prompt and appends it to document.
// An empty reply is an error and leaves the document untouched.
func Compose(ctx context.Context, drafter llm.Drafter, document, prompt string) (Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return Result{}, llm.ErrEmptyPrompt
	}
	reply, err := drafter.Draft(ctx, prompt)
	if err != nil {
		log.Printf("[draft] %s failed: %v", drafter.Name(), err)
		return Result{}, err
	}
	reply = norm.NFC.String(strings.TrimSpace(reply))
	if reply == "" {
		return Result{}, fmt.Errorf("%s returned an empty draft", drafter.Name())
	}
	return Result{Document: Append(document, reply), Draft: reply}, nil
}

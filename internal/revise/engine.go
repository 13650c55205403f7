// Package revise drives a revision pass over a document and reconciles the
// resulting suggestions against the live text.
package revise

import (
	"errors"
	"fmt"
	"time"

	"github.com/csheth/vibewrite/internal/llm"
	"github.com/csheth/vibewrite/internal/suggest"
)

const (
	DefaultConcurrency = 4
	DefaultTimeout     = 30 * time.Second
	DefaultMinLength   = 5
)

// KindValidation marks a reply that parsed but is too short to be a rewrite.
const KindValidation llm.ErrorKind = "validation_failed"

var (
	// ErrNotFound is returned when a suggestion id is unknown or already retired.
	ErrNotFound = errors.New("suggestion not found")
	// ErrStale is matched by every *StaleError.
	ErrStale = errors.New("suggestion is stale")
	// ErrValidation wraps replies rejected after a successful call.
	ErrValidation = errors.New("revision rejected")
)

// StaleError reports that the targeted paragraph changed after the
// suggestion was computed. The suggestion has been retired.
type StaleError struct {
	ID             string
	ParagraphIndex int
	Paragraphs     int
}

func (e *StaleError) Error() string {
	if e.ParagraphIndex >= e.Paragraphs {
		return fmt.Sprintf("suggestion %s is stale: paragraph %d no longer exists (document has %d)", e.ID, e.ParagraphIndex, e.Paragraphs)
	}
	return fmt.Sprintf("suggestion %s is stale: paragraph %d changed since analysis", e.ID, e.ParagraphIndex)
}

func (e *StaleError) Is(target error) bool {
	return target == ErrStale
}

// Options tune a single Analyze pass. Zero values take the package defaults.
type Options struct {
	// Concurrency bounds in-flight revision requests.
	Concurrency int
	// Timeout bounds each request.
	Timeout time.Duration
	// MinLength is the minimum rune count of an accepted rewrite. Negative
	// disables the check.
	MinLength int
	// Replace clears pending suggestions before the new ones are stored.
	Replace bool
	// OnProgress is called from worker goroutines and must be safe for
	// concurrent use.
	OnProgress func(ProgressEvent)
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MinLength == 0 {
		o.MinLength = DefaultMinLength
	}
	return o
}

// Engine couples a revision client with the suggestion store.
type Engine struct {
	client llm.Client
	store  *suggest.Store
}

// NewEngine returns an Engine. A nil store gets a fresh one.
func NewEngine(client llm.Client, store *suggest.Store) *Engine {
	if store == nil {
		store = suggest.NewStore(nil)
	}
	return &Engine{client: client, store: store}
}

// Name describes the revision backend.
func (e *Engine) Name() string {
	if e.client == nil {
		return "none"
	}
	return e.client.Name()
}

// ListPending returns the pending suggestions in paragraph order.
func (e *Engine) ListPending() []suggest.Suggestion {
	return e.store.List()
}

// Get returns a pending suggestion by id.
func (e *Engine) Get(id string) (suggest.Suggestion, bool) {
	return e.store.Get(id)
}

// Clear drops every pending suggestion.
func (e *Engine) Clear() {
	e.store.Clear()
}

// Package suggest holds the in-memory registry of paragraph rewrite
// suggestions and owns their lifecycle.
package suggest

import (
	"time"

	"github.com/csheth/vibewrite/internal/diff"
)

// Status is the lifecycle state of a Suggestion.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApplied   Status = "applied"
	StatusStale     Status = "stale"
	StatusDiscarded Status = "discarded"
)

// Terminal reports whether the status retires a suggestion.
func (s Status) Terminal() bool {
	switch s {
	case StatusApplied, StatusStale, StatusDiscarded:
		return true
	default:
		return false
	}
}

// Suggestion is a proposed replacement for one paragraph.
type Suggestion struct {
	ID             string         `json:"id"`
	ParagraphIndex int            `json:"paragraphIndex"`
	Original       string         `json:"originalParagraph"`
	Corrected      string         `json:"correctedParagraph"`
	Diff           []diff.Segment `json:"diff"`
	Status         Status         `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`

	seq uint64
}

func (s Suggestion) clone() Suggestion {
	s.Diff = append([]diff.Segment(nil), s.Diff...)
	return s
}

package revise

import (
	"errors"
	"fmt"

	"github.com/csheth/vibewrite/internal/paragraph"
	"github.com/csheth/vibewrite/internal/suggest"
)

// Apply substitutes the suggestion's rewrite into text and returns the new
// document. When the target paragraph no longer matches what was analysed
// the suggestion is retired as stale and a *StaleError is returned. On any
// error the returned string is text unchanged.
func (e *Engine) Apply(id, text string) (string, error) {
	result := text
	_, err := e.store.Settle(id, func(sg suggest.Suggestion) (suggest.Status, error) {
		paragraphs := paragraph.Segment(text)
		stale := &StaleError{ID: sg.ID, ParagraphIndex: sg.ParagraphIndex, Paragraphs: len(paragraphs)}
		if sg.ParagraphIndex >= len(paragraphs) {
			return suggest.StatusStale, stale
		}
		if paragraphs[sg.ParagraphIndex].Trimmed() != sg.Original {
			return suggest.StatusStale, stale
		}
		updated, ok := paragraph.Replace(paragraphs, sg.ParagraphIndex, sg.Corrected)
		if !ok {
			return suggest.StatusStale, stale
		}
		result = paragraph.Join(updated)
		return suggest.StatusApplied, nil
	})
	switch {
	case errors.Is(err, suggest.ErrNotPending):
		return text, fmt.Errorf("%w: %s", ErrNotFound, id)
	case err != nil:
		return text, err
	}
	return result, nil
}

// Discard retires a pending suggestion without touching any document. It
// reports whether the id was pending.
func (e *Engine) Discard(id string) bool {
	_, err := e.store.Settle(id, func(suggest.Suggestion) (suggest.Status, error) {
		return suggest.StatusDiscarded, nil
	})
	return err == nil
}

// BatchResult lists what ApplyAll did with each pending suggestion.
type BatchResult struct {
	Text    string
	Applied []string
	Stale   []string
}

// ApplyAll applies every pending suggestion to text in paragraph order.
// Suggestions whose paragraph was changed by an earlier one go stale.
func (e *Engine) ApplyAll(text string) BatchResult {
	result := BatchResult{Text: text}
	for _, sg := range e.store.List() {
		updated, err := e.Apply(sg.ID, result.Text)
		switch {
		case err == nil:
			result.Text = updated
			result.Applied = append(result.Applied, sg.ID)
		case errors.Is(err, ErrStale):
			result.Stale = append(result.Stale, sg.ID)
		}
	}
	return result
}

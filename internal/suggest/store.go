package suggest

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/csheth/vibewrite/internal/diff"
)

var (
	// ErrNotPending is returned by Settle when the id is unknown or retired.
	ErrNotPending = errors.New("suggestion not pending")
	// ErrInvalid is returned by Create for arguments that cannot form a suggestion.
	ErrInvalid = errors.New("invalid suggestion")
)

// Decision computes the terminal status for a pending suggestion. It runs
// while the store lock is held and must not call back into the Store.
type Decision func(Suggestion) (Status, error)

// Store is a concurrency-safe registry of pending suggestions. Create,
// Remove, Settle and Clear are serialized by a single mutex.
type Store struct {
	mu      sync.Mutex
	ids     IDSource
	pending map[string]*Suggestion
	seq     uint64
	now     func() time.Time
}

// NewStore returns an empty Store drawing ids from ids. A nil source falls
// back to a Counter owned by this Store.
func NewStore(ids IDSource) *Store {
	if ids == nil {
		ids = NewCounter("")
	}
	return &Store{
		ids:     ids,
		pending: make(map[string]*Suggestion),
		now:     time.Now,
	}
}

// Create registers a pending suggestion and returns its id.
func (s *Store) Create(paragraphIndex int, original, corrected string, script []diff.Segment) (string, error) {
	switch {
	case paragraphIndex < 0:
		return "", fmt.Errorf("%w: negative paragraph index %d", ErrInvalid, paragraphIndex)
	case corrected == "":
		return "", fmt.Errorf("%w: empty corrected text", ErrInvalid)
	case original == corrected:
		return "", fmt.Errorf("%w: corrected text equals original", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids.NextID()
	if _, exists := s.pending[id]; exists || id == "" {
		return "", fmt.Errorf("%w: id %q already issued", ErrInvalid, id)
	}
	s.seq++
	s.pending[id] = &Suggestion{
		ID:             id,
		ParagraphIndex: paragraphIndex,
		Original:       original,
		Corrected:      corrected,
		Diff:           append([]diff.Segment(nil), script...),
		Status:         StatusPending,
		CreatedAt:      s.now(),
		seq:            s.seq,
	}
	return id, nil
}

// Get returns a copy of the pending suggestion with the given id.
func (s *Store) Get(id string) (Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, ok := s.pending[id]
	if !ok {
		return Suggestion{}, false
	}
	return sg.clone(), true
}

// List returns the pending suggestions ordered by paragraph index, then by
// creation order.
func (s *Store) List() []Suggestion {
	s.mu.Lock()
	out := make([]Suggestion, 0, len(s.pending))
	for _, sg := range s.pending {
		out = append(out, sg.clone())
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ParagraphIndex != out[j].ParagraphIndex {
			return out[i].ParagraphIndex < out[j].ParagraphIndex
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Len reports the number of pending suggestions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Remove deletes the suggestion. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Clear drops every pending suggestion.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]*Suggestion)
}

// Settle runs decide against the pending suggestion under the store lock.
// When decide returns a terminal status the suggestion is retired with that
// status and removed; the retired copy is returned alongside decide's error.
// A non-terminal status leaves the suggestion pending.
func (s *Store) Settle(id string, decide Decision) (Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, ok := s.pending[id]
	if !ok {
		return Suggestion{}, fmt.Errorf("%w: %q", ErrNotPending, id)
	}
	status, err := decide(sg.clone())
	if !status.Terminal() {
		return sg.clone(), err
	}
	delete(s.pending, id)
	retired := sg.clone()
	retired.Status = status
	return retired, err
}

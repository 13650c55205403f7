package suggest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/vibewrite/internal/diff"
)

func create(t *testing.T, s *Store, index int, original, corrected string) string {
	t.Helper()
	id, err := s.Create(index, original, corrected, diff.Compute(original, corrected))
	require.NoError(t, err)
	return id
}

func TestCreateAndGet(t *testing.T) {
	s := NewStore(NewCounter("sg"))
	id := create(t, s, 1, "B", "B2")
	assert.Equal(t, "sg-1", id)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, 1, got.ParagraphIndex)
	assert.Equal(t, "B", got.Original)
	assert.Equal(t, "B2", got.Corrected)
	assert.Equal(t, StatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, "B", diff.Original(got.Diff))
}

func TestCreateRejectsInvalidArguments(t *testing.T) {
	s := NewStore(nil)
	cases := []struct {
		index     int
		original  string
		corrected string
	}{
		{-1, "a", "b"},
		{0, "a", ""},
		{0, "same", "same"},
	}
	for _, tc := range cases {
		_, err := s.Create(tc.index, tc.original, tc.corrected, nil)
		assert.ErrorIs(t, err, ErrInvalid)
	}
	assert.Equal(t, 0, s.Len())
}

type fixedIDs struct{}

func (fixedIDs) NextID() string { return "dup" }

func TestCreateRejectsCollidingIDs(t *testing.T) {
	s := NewStore(fixedIDs{})
	create(t, s, 0, "a", "b")
	_, err := s.Create(1, "c", "d", nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore(nil)
	id := create(t, s, 0, "the cat", "the dog")
	got, _ := s.Get(id)
	got.Diff[0].Text = "mutated"
	again, _ := s.Get(id)
	assert.NotEqual(t, "mutated", again.Diff[0].Text)
}

func TestListOrdersByIndexThenCreation(t *testing.T) {
	s := NewStore(nil)
	third := create(t, s, 2, "c", "c2")
	first := create(t, s, 0, "a", "a2")
	secondA := create(t, s, 1, "b", "b2")
	secondB := create(t, s, 1, "b", "b3")

	var ids []string
	for _, sg := range s.List() {
		ids = append(ids, sg.ID)
	}
	assert.Equal(t, []string{first, secondA, secondB, third}, ids)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := NewStore(nil)
	id := create(t, s, 0, "a", "b")
	s.Remove(id)
	s.Remove(id)
	s.Remove("never-existed")
	_, ok := s.Get(id)
	assert.False(t, ok)
	assert.Empty(t, s.List())
}

func TestSettleRetiresSuggestion(t *testing.T) {
	s := NewStore(nil)
	id := create(t, s, 0, "a", "b")

	retired, err := s.Settle(id, func(sg Suggestion) (Status, error) {
		assert.Equal(t, StatusPending, sg.Status)
		return StatusApplied, nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, retired.Status)
	assert.Equal(t, 0, s.Len())

	_, err = s.Settle(id, func(Suggestion) (Status, error) { return StatusApplied, nil })
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestSettleKeepsPendingOnNonTerminalStatus(t *testing.T) {
	s := NewStore(nil)
	id := create(t, s, 0, "a", "b")
	boom := errors.New("boom")

	_, err := s.Settle(id, func(Suggestion) (Status, error) { return StatusPending, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := s.Get(id)
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	s := NewStore(nil)
	create(t, s, 0, "a", "b")
	create(t, s, 1, "c", "d")
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestIDsUniqueAcrossPasses(t *testing.T) {
	for name, ids := range map[string]IDSource{"counter": NewCounter("sg"), "uuid": UUIDs{}} {
		t.Run(name, func(t *testing.T) {
			s := NewStore(ids)
			seen := map[string]bool{}
			for pass := 0; pass < 3; pass++ {
				for i := 0; i < 50; i++ {
					id := create(t, s, i, fmt.Sprintf("p%d", i), fmt.Sprintf("p%d-%d", i, pass))
					require.False(t, seen[id], "id %s reused", id)
					seen[id] = true
				}
				s.Clear()
			}
		})
	}
}

func TestConcurrentCreateAndSettle(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	ids := make(chan string, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.Create(i, "x", fmt.Sprintf("y%d", i), nil)
			if err == nil {
				ids <- id
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	var applied sync.Map
	for id := range ids {
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := s.Settle(id, func(Suggestion) (Status, error) { return StatusApplied, nil }); err == nil {
					_, dup := applied.LoadOrStore(id, true)
					assert.False(t, dup, "suggestion %s applied twice", id)
				}
			}(id)
		}
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
}

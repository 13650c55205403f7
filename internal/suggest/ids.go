package suggest

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource hands out suggestion identifiers. Implementations must never
// return the same value twice.
type IDSource interface {
	NextID() string
}

// Counter is a monotonic IDSource producing "<prefix>-<n>".
type Counter struct {
	prefix string
	n      atomic.Uint64
}

// NewCounter returns a Counter starting at 1.
func NewCounter(prefix string) *Counter {
	if prefix == "" {
		prefix = "suggestion"
	}
	return &Counter{prefix: prefix}
}

func (c *Counter) NextID() string {
	return fmt.Sprintf("%s-%d", c.prefix, c.n.Add(1))
}

// UUIDs is an IDSource backed by random (v4) UUIDs.
type UUIDs struct{}

func (UUIDs) NextID() string {
	return uuid.NewString()
}

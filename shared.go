package dedupq

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// shared is a reference-counted cell that lets Tracked keep one value in both
// its queue and its set without copying it. Each holder owns one reference.
type shared[T any] struct {
	value T
	refs  atomic.Int32
}

func newShared[T any](v T) *shared[T] {
	c := &shared[T]{value: v}
	c.refs.Store(1)
	return c
}

// retain adds a reference and returns c for the new holder.
func (c *shared[T]) retain() *shared[T] {
	c.refs.Add(1)
	return c
}

// release drops one reference.
func (c *shared[T]) release() {
	if c.refs.Add(-1) < 0 {
		panic(errors.WithStack(ErrOwnershipLost))
	}
}

// reclaim takes sole ownership of the value. It succeeds only when the caller
// holds the last reference; the cell is dead afterwards.
func (c *shared[T]) reclaim() (T, bool) {
	if !c.refs.CompareAndSwap(1, 0) {
		var zero T
		return zero, false
	}
	return c.value, true
}

func (c *shared[T]) count() int32 {
	return c.refs.Load()
}

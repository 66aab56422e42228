package dedupq

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/xyhelper/dedupq/internal/lfqueue"
)

// Tracked is a de-duplicating FIFO built from a lock-free queue and a
// concurrent membership set. Both structures hold a reference to the same
// shared cell for every pending value.
//
// The set and the queue are each safe for concurrent use on their own; lock
// serializes Push and Pop so that membership always mirrors presence in the
// queue. Len and IsEmpty read the queue without taking lock and are only
// momentarily consistent. The zero value is not ready for use; construct via
// NewTracked.
type Tracked[T comparable] struct {
	lock  sync.Mutex
	set   *xsync.MapOf[T, *shared[T]]
	queue *lfqueue.Queue[*shared[T]]
	log   zerolog.Logger
}

// NewTracked creates an empty Tracked queue.
func NewTracked[T comparable](opts ...Option) *Tracked[T] {
	o := newOptions(opts)
	var set *xsync.MapOf[T, *shared[T]]
	if o.capacity > 0 {
		set = xsync.NewMapOf[T, *shared[T]](xsync.WithPresize(o.capacity))
	} else {
		set = xsync.NewMapOf[T, *shared[T]]()
	}
	return &Tracked[T]{
		set:   set,
		queue: lfqueue.New[*shared[T]](),
		log:   o.log,
	}
}

// Push appends v to the tail unless an equal value is already pending, in
// which case it does nothing.
//
// Push panics with ErrUnequalValue if v is not equal to itself.
func (t *Tracked[T]) Push(v T) {
	mustEqualSelf(t.log, v)

	t.lock.Lock()
	defer t.lock.Unlock()

	if _, exists := t.set.Load(v); exists {
		t.log.Debug().Interface("value", v).Msg("duplicate push dropped")
		return
	}
	cell := newShared(v)
	t.queue.Enqueue(cell.retain())
	t.set.Store(v, cell)
}

// Pop removes and returns the head value.
//
// The second result is false when the queue is empty. Pop panics with
// ErrOwnershipLost if the dequeued cell is still referenced after the set
// released it.
func (t *Tracked[T]) Pop() (T, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.popLocked()
}

// popLocked dequeues the head cell, evicts it from the set and reclaims its
// value. t.lock must be held.
func (t *Tracked[T]) popLocked() (T, bool) {
	cell, ok := t.queue.Dequeue()
	if !ok {
		var zero T
		return zero, false
	}
	if held, ok := t.set.LoadAndDelete(cell.value); ok {
		held.release()
	}

	v, ok := cell.reclaim()
	if !ok {
		err := errors.WithStack(ErrOwnershipLost)
		t.log.Error().Err(err).Int32("refs", cell.count()).Interface("value", cell.value).Msg("reclaim pending value")
		panic(err)
	}
	return v, true
}

// Clear removes all pending values, releasing each one the same way Pop does.
func (t *Tracked[T]) Clear() {
	t.lock.Lock()
	defer t.lock.Unlock()
	for {
		if _, ok := t.popLocked(); !ok {
			return
		}
	}
}

// Peek returns the head value without removing it.
// Like Len, it does not synchronize with Push or Pop.
func (t *Tracked[T]) Peek() (T, bool) {
	cell, ok := t.queue.Peek()
	if !ok {
		var zero T
		return zero, false
	}
	return cell.value, true
}

// Contains reports whether a value equal to v is pending.
// It reads the membership set without taking the lock.
func (t *Tracked[T]) Contains(v T) bool {
	_, ok := t.set.Load(v)
	return ok
}

// IsEmpty reports whether the queue is empty by checking the queue's head
// link. It does not synchronize with Push or Pop, and may briefly disagree
// with Len, which reads a separate counter.
func (t *Tracked[T]) IsEmpty() bool {
	return t.queue.IsEmpty()
}

// Len returns the number of pending values.
// It does not synchronize with Push or Pop, so the result may be stale.
func (t *Tracked[T]) Len() int {
	return t.queue.Len()
}

// String renders the membership set and the queue contents. The two halves
// are read without locking and may disagree under concurrent use.
func (t *Tracked[T]) String() string {
	var b strings.Builder
	b.WriteString("Tracked{set: [")
	sep := ""
	t.set.Range(func(v T, _ *shared[T]) bool {
		fmt.Fprintf(&b, "%s%v", sep, v)
		sep = " "
		return true
	})
	b.WriteString("], queue: [")
	sep = ""
	t.queue.Range(func(c *shared[T]) bool {
		fmt.Fprintf(&b, "%s%v", sep, c.value)
		sep = " "
		return true
	})
	b.WriteString("]}")
	return b.String()
}

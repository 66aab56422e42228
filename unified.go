package dedupq

import (
	"fmt"
	"iter"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog"
)

// Unified is a de-duplicating FIFO that keeps an ordered deque and a
// membership map behind a single lock. Every exported method is one complete
// transaction and is safe for concurrent use. The zero value is not ready for
// use; construct via NewUnified.
type Unified[T comparable] struct {
	mu   sync.RWMutex
	data deque.Deque[T]
	set  map[T]struct{}
	log  zerolog.Logger
}

// NewUnified creates an empty Unified queue.
func NewUnified[T comparable](opts ...Option) *Unified[T] {
	o := newOptions(opts)
	q := &Unified[T]{
		set: make(map[T]struct{}, o.capacity),
		log: o.log,
	}
	if o.capacity > 0 {
		q.data.SetBaseCap(o.capacity)
	}
	return q
}

// Push appends v to the tail unless an equal value is already pending, in
// which case it does nothing. Amortized complexity: O(1).
//
// Push panics with ErrUnequalValue if v is not equal to itself.
func (q *Unified[T]) Push(v T) {
	mustEqualSelf(q.log, v)

	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.set[v]; exists {
		q.log.Debug().Interface("value", v).Msg("duplicate push dropped")
		return
	}
	q.set[v] = struct{}{}
	q.data.PushBack(v)
}

// Pop removes and returns the head value.
//
// The second result is false when the queue is empty. Amortized complexity: O(1).
func (q *Unified[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.data.Len() == 0 {
		var zero T
		return zero, false
	}
	v := q.data.PopFront()
	delete(q.set, v)
	return v, true
}

// Peek returns the head value without removing it.
// The second result is false when the queue is empty. Complexity: O(1).
func (q *Unified[T]) Peek() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.data.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.data.Front(), true
}

// Contains reports whether a value equal to v is pending.
// Complexity: O(1).
func (q *Unified[T]) Contains(v T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, ok := q.set[v]
	return ok
}

// Clear removes all pending values.
func (q *Unified[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.data.Clear()
	clear(q.set)
}

// Drain returns an iterator that pops up to amount values, one per step.
//
// Values are popped only as the caller ranges over the iterator, and
// iteration ends early as soon as the queue is empty. Each pop is atomic on
// its own; the drain as a whole is not, so other consumers may interleave.
// The iterator is single-use: ranging over it a second time yields nothing.
func (q *Unified[T]) Drain(amount int) iter.Seq[T] {
	var used atomic.Bool
	return func(yield func(T) bool) {
		if !used.CompareAndSwap(false, true) {
			return
		}
		for i := 0; i < amount; i++ {
			v, ok := q.Pop()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Len returns the number of pending values.
func (q *Unified[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.data.Len()
}

// IsEmpty reports whether the queue is empty.
// Equivalent to Len() == 0.
func (q *Unified[T]) IsEmpty() bool {
	return q.Len() == 0
}

// String renders the membership set and the queue contents in FIFO order.
func (q *Unified[T]) String() string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Unified{set: [")
	sep := ""
	for v := range q.set {
		fmt.Fprintf(&b, "%s%v", sep, v)
		sep = " "
	}
	b.WriteString("], queue: [")
	for i := 0; i < q.data.Len(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v", q.data.At(i))
	}
	b.WriteString("]}")
	return b.String()
}

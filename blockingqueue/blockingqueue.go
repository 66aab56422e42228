// Package blockingqueue adds blocking, context-aware consumption on top of a
// dedupq.Queue. Producers wake waiting consumers; consumers wait until a value
// arrives or their context is done.
package blockingqueue

import (
	"context"
	"errors"
	"sync"

	"github.com/xyhelper/dedupq"
)

// Queue is a blocking, concurrency-safe FIFO built on a dedupq.Queue. Values
// already pending in the underlying queue are dropped by Put; after removal
// the value can be added again.
//
// All methods are safe for concurrent use by multiple goroutines.
type Queue[T comparable] struct {
	mu sync.Mutex
	cv *sync.Cond
	q  dedupq.Queue[T]

	wakeups uint64 // broadcasts issued by Put and PutMany
}

// New wraps q. The caller must not use q directly afterwards: Put relies on
// every push and pop going through the wrapper, or waiting consumers may miss
// a wakeup.
func New[T comparable](q dedupq.Queue[T]) *Queue[T] {
	b := &Queue[T]{q: q}
	b.cv = sync.NewCond(&b.mu)
	return b
}

// NewTracked creates a blocking queue backed by dedupq.Tracked.
func NewTracked[T comparable](opts ...dedupq.Option) *Queue[T] {
	return New[T](dedupq.NewTracked[T](opts...))
}

// NewUnified creates a blocking queue backed by dedupq.Unified.
func NewUnified[T comparable](opts ...dedupq.Option) *Queue[T] {
	return New[T](dedupq.NewUnified[T](opts...))
}

// Put appends v to the tail unless it is already pending. Waiters are woken
// only when v was actually added; a duplicate wakes nobody.
func (b *Queue[T]) Put(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putLocked(v) {
		b.signalLocked()
	}
}

// PutMany enqueues items in order and broadcasts once if any was added.
func (b *Queue[T]) PutMany(items ...T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	added := false
	for _, v := range items {
		if b.putLocked(v) {
			added = true
		}
	}
	if added {
		b.signalLocked()
	}
}

// putLocked pushes v and reports whether it was added. Every Push and Pop on
// the wrapped queue happens under b.mu, so v cannot be popped between the
// Contains check and the Push.
func (b *Queue[T]) putLocked(v T) bool {
	if b.q.Contains(v) {
		return false
	}
	b.q.Push(v)
	return true
}

func (b *Queue[T]) signalLocked() {
	b.wakeups++
	b.cv.Broadcast()
}

// TryTake removes and returns the head value without blocking.
// ok is false if the queue is empty.
func (b *Queue[T]) TryTake() (v T, ok bool) {
	b.mu.Lock()
	v, ok = b.q.Pop()
	b.mu.Unlock()
	return
}

// Take blocks until an element is available or ctx is done. On success returns
// (value, nil). On cancellation returns the zero value and ctx.Err().
func (b *Queue[T]) Take(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	b.mu.Lock()
	// Fast path
	if v, ok := b.q.Pop(); ok {
		b.mu.Unlock()
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		b.mu.Unlock()
		var zero T
		return zero, err
	}
	// Wait with context cancellation. A short-lived watcher broadcasts on
	// cancellation to wake Wait.
	for {
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				b.mu.Lock()
				b.cv.Broadcast()
				b.mu.Unlock()
			case <-done:
			}
		}()

		b.cv.Wait() // releases and re-acquires b.mu
		close(done)

		if v, ok := b.q.Pop(); ok {
			b.mu.Unlock()
			return v, nil
		}
		if err := ctx.Err(); err != nil {
			b.mu.Unlock()
			var zero T
			return zero, err
		}
	}
}

// Peek returns the head value without removing it. ok is false when empty.
func (b *Queue[T]) Peek() (v T, ok bool) {
	b.mu.Lock()
	v, ok = b.q.Peek()
	b.mu.Unlock()
	return
}

// Contains reports whether v is currently pending.
func (b *Queue[T]) Contains(v T) bool {
	b.mu.Lock()
	ok := b.q.Contains(v)
	b.mu.Unlock()
	return ok
}

// Clear removes all pending values.
func (b *Queue[T]) Clear() {
	b.mu.Lock()
	b.q.Clear()
	b.mu.Unlock()
}

// Len returns the number of elements currently queued.
func (b *Queue[T]) Len() int { return b.q.Len() }

// IsEmpty reports whether the queue is empty.
func (b *Queue[T]) IsEmpty() bool { return b.q.IsEmpty() }

// String renders the underlying queue.
func (b *Queue[T]) String() string { return b.q.String() }

// IsContextError reports whether err equals context.Canceled or context.DeadlineExceeded.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

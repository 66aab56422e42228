// Package lfqueue implements an unbounded lock-free multi-producer
// multi-consumer FIFO queue.
//
// The algorithm is the Michael-Scott queue: a singly linked list with a
// sentinel head node, where producers CAS the tail's next pointer and
// consumers CAS the head forward. The garbage collector keeps retired nodes
// alive while any goroutine still holds them, so there is no ABA hazard and
// no hazard-pointer bookkeeping.
package lfqueue

import "sync/atomic"

type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Queue is a lock-free FIFO. All methods are safe for concurrent use by any
// number of goroutines. The zero value is not ready for use; construct via New.
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
	len  atomic.Int64
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	sentinel := &node[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Enqueue appends v to the tail. It never blocks and never fails.
func (q *Queue[T]) Enqueue(v T) {
	n := &node[T]{value: v}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail is lagging; help the other producer finish.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			q.len.Add(1)
			return
		}
	}
}

// Dequeue removes and returns the head value.
// The second result is false when the queue is empty.
func (q *Queue[T]) Dequeue() (T, bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				var zero T
				return zero, false
			}
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		// next becomes the new sentinel. Its value is never written again,
		// so reading it before the CAS is safe even if the CAS loses.
		v := next.value
		if q.head.CompareAndSwap(head, next) {
			q.len.Add(-1)
			return v, true
		}
	}
}

// Peek returns the head value without removing it.
// The second result is false when the queue is empty. Under concurrent use the
// value may already have been dequeued by the time Peek returns.
func (q *Queue[T]) Peek() (T, bool) {
	next := q.head.Load().next.Load()
	if next == nil {
		var zero T
		return zero, false
	}
	return next.value, true
}

// Len returns the number of queued elements.
// This is an approximation and may be slightly stale under concurrent use.
func (q *Queue[T]) Len() int {
	n := q.len.Load()
	if n < 0 {
		// A consumer can account for a node before its producer does.
		return 0
	}
	return int(n)
}

// IsEmpty reports whether the queue has no element reachable from its head.
func (q *Queue[T]) IsEmpty() bool {
	return q.head.Load().next.Load() == nil
}

// Range calls f for each element from head to tail until f returns false.
// It is a best-effort walk: concurrent Enqueue and Dequeue calls may or may
// not be observed.
func (q *Queue[T]) Range(f func(T) bool) {
	for n := q.head.Load().next.Load(); n != nil; n = n.next.Load() {
		if !f(n.value) {
			return
		}
	}
}

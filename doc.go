// Package dedupq provides generic FIFO queues that collapse duplicate
// submissions: a value is enqueued only if an equal value is not already
// pending. Once a value is dequeued it may be enqueued again.
//
// Two implementations of the same contract are offered, and both are safe for
// concurrent use by any number of producers and consumers:
//
//   - Tracked keeps values in a lock-free queue and a concurrent set, and uses
//     one mutex only to make "check then insert into both" and "dequeue then
//     evict" atomic. Len and IsEmpty never take the mutex and are therefore
//     approximate while other goroutines mutate the queue.
//   - Unified keeps an ordered deque and a map behind one sync.RWMutex. Every
//     operation is a complete transaction. It also offers Drain, a lazy
//     iterator that pops up to n values on demand.
//
// Push is silently idempotent: pushing a value that is already pending does
// nothing and does not move the pending entry. FIFO order therefore holds
// among values that do not collide, in the order of their successful pushes.
//
// Neither queue blocks waiting for values or supports cancellation. See the
// blockingqueue package for a wrapper that adds context-aware Take.
package dedupq

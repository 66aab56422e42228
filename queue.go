package dedupq

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Queue is the contract shared by Tracked and Unified.
//
// Values must equal themselves. A float NaN, or a struct or interface value
// holding one, can never be found again in the membership set, so Push
// rejects it by panicking with ErrUnequalValue before touching the queue.
type Queue[T comparable] interface {
	// Push enqueues v unless an equal value is already pending.
	Push(v T)

	// Pop removes and returns the oldest pending value.
	// The second result is false when the queue is empty.
	Pop() (T, bool)

	// Peek returns the oldest pending value without removing it.
	Peek() (T, bool)

	// Contains reports whether a value equal to v is pending.
	Contains(v T) bool

	// Clear removes all pending values.
	Clear()

	// Len returns the number of pending values.
	Len() int

	// IsEmpty reports whether no value is pending.
	IsEmpty() bool

	// String renders the internal state for diagnostics.
	fmt.Stringer
}

var (
	_ Queue[int] = (*Tracked[int])(nil)
	_ Queue[int] = (*Unified[int])(nil)
)

// ErrOwnershipLost reports that a stored value was still referenced from
// somewhere else when Tracked tried to hand it back to the caller. It is
// raised as a panic: the queue's internal bookkeeping is broken and the
// instance must not be used again.
var ErrOwnershipLost = errors.New("dedupq: ownership of pending value lost")

// ErrUnequalValue reports a pushed value that is not equal to itself, such as
// a NaN. Such a value cannot be de-duplicated or evicted.
var ErrUnequalValue = errors.New("dedupq: value is not equal to itself")

// mustEqualSelf panics with ErrUnequalValue if v != v.
func mustEqualSelf[T comparable](log zerolog.Logger, v T) {
	if v == v {
		return
	}
	err := errors.WithStack(ErrUnequalValue)
	log.Error().Err(err).Interface("value", v).Msg("reject push")
	panic(err)
}

// Option configures a queue.
type Option func(*options)

type options struct {
	log      zerolog.Logger
	capacity int
}

// WithLogger sets the logger used for diagnostics. Duplicates are logged at
// debug level and invariant violations at error level. The default discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithCapacity preallocates the membership set for n values. It is a hint
// only; queues are never bounded.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.capacity = n
	}
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

package main

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	ring "github.com/randomizedcoder/go-lock-free-ring"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xyhelper/dedupq"
)

const (
	variantTracked = "tracked"
	variantUnified = "unified"

	// sampleEvery is how many operations a worker performs between Len checks.
	sampleEvery = 64
	// shardCapacity is the collector ring capacity per worker shard.
	shardCapacity = 1024
)

type config struct {
	Variant  string
	Workers  int
	Universe int
	Ops      int
}

func (c config) validate() error {
	switch c.Variant {
	case variantTracked, variantUnified:
	default:
		return errors.Errorf("unknown variant %q", c.Variant)
	}
	if c.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Universe <= 0 {
		return errors.Errorf("universe must be positive, got %d", c.Universe)
	}
	if c.Ops < 0 {
		return errors.Errorf("ops must not be negative, got %d", c.Ops)
	}
	return nil
}

type report struct {
	Pushes    int64
	Pops      int64
	MaxLen    int
	Remaining int
}

func newQueue(variant string, log zerolog.Logger) dedupq.Queue[int] {
	if variant == variantUnified {
		return dedupq.NewUnified[int](dedupq.WithLogger(log))
	}
	return dedupq.NewTracked[int](dedupq.WithLogger(log))
}

func nextPow2(n int) uint64 {
	p := uint64(1)
	for p < uint64(n) {
		p <<= 1
	}
	return p
}

// run hammers one queue with cfg.Workers goroutines that push and pop values
// from [0, cfg.Universe). Every popped value is handed to a single collector
// through a sharded MPSC ring. It fails if the pending count ever exceeds the
// universe, if a value is popped more often than it was pushed, or if the
// queue holds a value twice when it is drained at the end.
func run(ctx context.Context, cfg config, log zerolog.Logger) (report, error) {
	var rep report
	if err := cfg.validate(); err != nil {
		return rep, err
	}

	q := newQueue(cfg.Variant, log)
	shards := nextPow2(cfg.Workers)
	collector, err := ring.NewShardedRing(shardCapacity*shards, shards)
	if err != nil {
		return rep, errors.Wrap(err, "create collector ring")
	}

	attempts := make([]atomic.Int64, cfg.Universe)
	var maxLen atomic.Int64

	pops := make([]int64, cfg.Universe)
	workersDone := make(chan struct{})
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		misses := 0
		for {
			if item, ok := collector.TryRead(); ok {
				pops[item.(int)]++
				misses = 0
				continue
			}
			select {
			case <-workersDone:
				// Every write has landed; keep reading until all shards look empty.
				misses++
				if misses > int(shards) {
					return
				}
			default:
				runtime.Gosched()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			rnd := rand.New(rand.NewSource(int64(w) + 1))
			for i := 0; i < cfg.Ops; i++ {
				v := rnd.Intn(cfg.Universe)
				if rnd.Intn(2) == 0 {
					attempts[v].Add(1)
					q.Push(v)
				} else if p, ok := q.Pop(); ok {
					for !collector.Write(uint64(w), p) {
						runtime.Gosched()
					}
				}

				if i%sampleEvery != 0 {
					continue
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				n := int64(q.Len())
				for {
					cur := maxLen.Load()
					if n <= cur || maxLen.CompareAndSwap(cur, n) {
						break
					}
				}
				if n > int64(cfg.Universe) {
					return errors.Errorf("pending count %d exceeds universe %d", n, cfg.Universe)
				}
			}
			return nil
		})
	}
	werr := g.Wait()
	close(workersDone)
	<-collected
	if werr != nil {
		return rep, werr
	}

	rep.MaxLen = int(maxLen.Load())
	rep.Remaining = q.Len()
	log.Debug().Str("queue", q.String()).Msg("quiescent state")

	seen := make(map[int]struct{}, rep.Remaining)
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		if _, dup := seen[v]; dup {
			return rep, errors.Errorf("value %d pending twice", v)
		}
		seen[v] = struct{}{}
		pops[v]++
	}
	if len(seen) != rep.Remaining {
		return rep, errors.Errorf("length %d disagrees with %d drained values", rep.Remaining, len(seen))
	}
	if !q.IsEmpty() {
		return rep, errors.New("queue not empty after drain")
	}

	for v := range pops {
		pushed := attempts[v].Load()
		rep.Pushes += pushed
		rep.Pops += pops[v]
		if pops[v] > pushed {
			return rep, errors.Errorf("value %d popped %d times but pushed only %d times", v, pops[v], pushed)
		}
	}
	return rep, nil
}

package lfqueue

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestEmpty(t *testing.T) {
	q := New[int]()
	require.True(t, q.IsEmpty())
	require.Zero(t, q.Len())

	_, ok := q.Dequeue()
	require.False(t, ok, "dequeue on empty queue")
}

func TestFIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		q.Enqueue(i)
	}
	require.Equal(t, 5, q.Len())
	require.False(t, q.IsEmpty())

	for i := 0; i < 5; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v, "FIFO violation")
	}
	require.True(t, q.IsEmpty())
	require.Zero(t, q.Len())
}

func TestRange(t *testing.T) {
	q := New[string]()
	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c")

	var got []string
	q.Range(func(s string) bool {
		got = append(got, s)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, got)

	got = got[:0]
	q.Range(func(s string) bool {
		got = append(got, s)
		return false
	})
	assert.Equal(t, []string{"a"}, got)

	q.Dequeue()
	got = got[:0]
	q.Range(func(s string) bool {
		got = append(got, s)
		return true
	})
	assert.Equal(t, []string{"b", "c"}, got)
}

func TestConcurrentProducersConsumers(t *testing.T) {
	const (
		producers = 8
		consumers = 8
		perWorker = 2000
		total     = producers * perWorker
	)
	q := New[int]()

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				q.Enqueue(p*perWorker + i)
			}
			return nil
		})
	}

	var (
		mu       sync.Mutex
		seen     = make(map[int]int, total)
		consumed atomic.Int64
	)
	for c := 0; c < consumers; c++ {
		g.Go(func() error {
			for consumed.Load() < total {
				v, ok := q.Dequeue()
				if !ok {
					continue
				}
				consumed.Add(1)
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, seen, total)
	for v, n := range seen {
		require.Equalf(t, 1, n, "value %d dequeued %d times", v, n)
	}
	require.True(t, q.IsEmpty())
	require.Zero(t, q.Len())
}

func TestPerProducerOrder(t *testing.T) {
	const (
		producers = 4
		perWorker = 5000
	)
	type item struct{ producer, seq int }
	q := New[item]()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				q.Enqueue(item{producer: p, seq: i})
			}
		}()
	}
	wg.Wait()

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for {
		it, ok := q.Dequeue()
		if !ok {
			break
		}
		require.Greater(t, it.seq, last[it.producer], "producer %d reordered", it.producer)
		last[it.producer] = it.seq
	}
	for p := range last {
		assert.Equal(t, perWorker-1, last[p])
	}
}

func BenchmarkEnqueueDequeue(b *testing.B) {
	q := New[int]()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Enqueue(i)
		q.Dequeue()
	}
}

func BenchmarkParallel(b *testing.B) {
	q := New[int]()
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Enqueue(i)
			q.Dequeue()
			i++
		}
	})
}

func TestPeek(t *testing.T) {
	q := New[int]()
	_, ok := q.Peek()
	require.False(t, ok)

	q.Enqueue(1)
	q.Enqueue(2)
	v, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, q.Len())

	q.Dequeue()
	v, _ = q.Peek()
	require.Equal(t, 2, v)
}

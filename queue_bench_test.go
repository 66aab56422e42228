package dedupq

import (
	"math/rand"
	"testing"
)

func benchVariants(b *testing.B, f func(b *testing.B, q Queue[int])) {
	b.Run("Tracked", func(b *testing.B) { f(b, NewTracked[int]()) })
	b.Run("Unified", func(b *testing.B) { f(b, NewUnified[int]()) })
}

func BenchmarkPush(b *testing.B) {
	benchVariants(b, func(b *testing.B, q Queue[int]) {
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			q.Push(i)
		}
	})
}

func BenchmarkPushPop(b *testing.B) {
	benchVariants(b, func(b *testing.B, q Queue[int]) {
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			q.Push(i)
			if i%2 == 1 { // keep size bounded
				q.Pop()
			}
		}
	})
}

func BenchmarkPush_DedupHits(b *testing.B) {
	benchVariants(b, func(b *testing.B, q Queue[int]) {
		// Preload with a small range to force many duplicate hits.
		for i := 0; i < 1024; i++ {
			q.Push(i)
		}
		rnd := rand.New(rand.NewSource(1))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			q.Push(rnd.Intn(1024)) // always ignored due to dedup
		}
	})
}

func BenchmarkParallelPushPop(b *testing.B) {
	benchVariants(b, func(b *testing.B, q Queue[int]) {
		b.ReportAllocs()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			rnd := rand.New(rand.NewSource(rand.Int63()))
			for pb.Next() {
				q.Push(rnd.Intn(4096))
				q.Pop()
			}
		})
	})
}

func BenchmarkParallelLen(b *testing.B) {
	benchVariants(b, func(b *testing.B, q Queue[int]) {
		for i := 0; i < 1024; i++ {
			q.Push(i)
		}
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_ = q.Len()
			}
		})
	})
}

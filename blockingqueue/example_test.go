package blockingqueue

import (
	"context"
	"fmt"
	"time"
)

func Example_basic() {
	bq := NewTracked[string]()
	go func() {
		// Producer; the second "a" is ignored while the first is pending.
		bq.PutMany("a", "a", "b")
	}()

	// Consumer with timeout safety
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v1, _ := bq.Take(ctx)
	v2, _ := bq.Take(ctx)
	fmt.Println(v1, v2)
	// Output:
	// a b
}

func Example_errorHandling() {
	bq := NewUnified[int]()

	// Context timeout leads to an error from Take.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := bq.Take(ctx)
	fmt.Println(IsContextError(err))

	// TryTake is non-blocking and reports via ok.
	bq.Put(1)
	if v, ok := bq.TryTake(); ok {
		fmt.Println(v, ok)
	}
	if _, ok := bq.TryTake(); !ok {
		fmt.Println("empty", ok)
	}
	// Output:
	// true
	// 1 true
	// empty false
}

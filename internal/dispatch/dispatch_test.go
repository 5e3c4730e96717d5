package dispatch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := NewLoop(8)
	go loop.Run(ctx)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		loop.Async(func() { order = append(order, i) })
	}
	// Sync runs after every task queued before it.
	loop.Sync(func() {})

	if len(order) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Errorf("order[%d] = %d", i, v)
		}
	}
}

func TestLoopSyncAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(1)
	go loop.Run(ctx)
	cancel()
	<-loop.Done()

	returned := make(chan struct{})
	go func() {
		loop.Sync(func() {})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Sync blocked on a stopped loop")
	}
}

func TestGoroutinesWait(t *testing.T) {
	var g Goroutines
	var n atomic.Int32
	for i := 0; i < 10; i++ {
		g.Go(func() { n.Add(1) })
	}
	g.Wait()
	if n.Load() != 10 {
		t.Errorf("expected 10 completions, got %d", n.Load())
	}
}

func TestInline(t *testing.T) {
	ran := 0
	Inline{}.Async(func() { ran++ })
	Inline{}.Sync(func() { ran++ })
	Inline{}.Go(func() { ran++ })
	if ran != 3 {
		t.Errorf("expected 3 inline runs, got %d", ran)
	}
}

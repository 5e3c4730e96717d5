// Package dispatch provides the two execution contexts the story manager
// hands work between: a serial queue standing in for the UI thread, and a
// background executor for library scans.
package dispatch

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Queue is a serial execution context. Work submitted to the same Queue
// never runs concurrently.
type Queue interface {
	// Async schedules fn and returns immediately.
	Async(fn func())
	// Sync runs fn and returns once it has completed. It must not be called
	// from work already running on the same Queue.
	Sync(fn func())
}

// Executor runs work off the calling goroutine.
type Executor interface {
	Go(fn func())
}

// Inline runs work immediately on the caller's goroutine. It is the queue
// and executor used by tests and one-shot commands.
type Inline struct{}

var (
	_ Queue    = Inline{}
	_ Executor = Inline{}
)

func (Inline) Async(fn func()) { fn() }
func (Inline) Sync(fn func())  { fn() }
func (Inline) Go(fn func())    { fn() }

// Goroutines runs each piece of work on its own goroutine and can wait for
// all of them to finish.
type Goroutines struct {
	wg sync.WaitGroup
}

var _ Executor = (*Goroutines)(nil)

// Go starts fn on a new goroutine.
func (g *Goroutines) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait blocks until all started work has returned.
func (g *Goroutines) Wait() {
	g.wg.Wait()
}

// Loop is a Queue backed by a single goroutine draining a channel.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

var _ Queue = (*Loop)(nil)

// NewLoop creates a Loop with room for buffer pending tasks. Call Run to
// start processing.
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run processes tasks until ctx is cancelled. Tasks still queued at that
// point are dropped.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	log.Debug().Msg("Main loop started")
	for {
		select {
		case <-ctx.Done():
			log.Debug().Int("dropped", len(l.tasks)).Msg("Main loop stopped")
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Async enqueues fn. Work submitted after the loop stopped is discarded.
func (l *Loop) Async(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Sync enqueues fn and waits for it to run. It returns without running fn
// if the loop has stopped.
func (l *Loop) Sync(fn func()) {
	finished := make(chan struct{})
	l.Async(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

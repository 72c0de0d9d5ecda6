package server

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool is the bounded "companion thread-pool" from spec.md §4.11/§5: it
// executes handler work so the connection's own read/write goroutine is
// never blocked behind user code for longer than it takes to hand off and
// wait. Grounded on golang.org/x/sync, the dependency
// MiraiMindz-watt/capacitor and MiraiMindz-watt/bolt both carry for exactly
// this kind of bounded-concurrency primitive.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool bounds concurrent handler executions at size, the
// ConnectionHandlerThreads config value (spec.md §6).
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Run executes fn on a pooled goroutine and blocks the caller until it
// completes, handing the result back "through a channel... guarding the
// Connection's writer" exactly as spec.md §4.11 describes.
func (p *Pool) Run(fn func()) {
	ctx := context.Background()
	if err := p.sem.Acquire(ctx, 1); err != nil {
		fn()
		return
	}
	defer p.sem.Release(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	<-done
}

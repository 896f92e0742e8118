// Package worker provides the background execution helpers used by the
// shell: a collapsing single-task runner for recompute bursts and a
// bounded pool for per-slice work.
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Task is a unit of background work.
type Task func(ctx context.Context) error

// SingleRunner runs at most one task at a time. Submitting while a task is
// running parks it as the pending task; submitting again replaces the
// pending task, so a burst of submissions collapses to the running task
// plus the most recent one.
type SingleRunner struct {
	mu      sync.Mutex
	running bool
	pending Task
	cancel  context.CancelFunc
	done    chan struct{}

	// OnError is called with the error of a task that failed. Nil by
	// default; failures are dropped.
	OnError func(error)
}

// NewSingleRunner creates an idle runner.
func NewSingleRunner() *SingleRunner {
	return &SingleRunner{done: make(chan struct{})}
}

// Submit schedules task. If the runner is idle the task starts at once;
// otherwise it becomes the pending task, replacing any earlier pending one.
func (r *SingleRunner) Submit(task Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.pending = task
		return
	}
	r.start(task)
}

// start launches task in a goroutine. Caller holds r.mu.
func (r *SingleRunner) start(task Task) {
	ctx, cancel := context.WithCancel(context.Background())
	r.running = true
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done

	go func() {
		defer cancel()
		err := task(ctx)
		if err != nil && r.OnError != nil {
			r.OnError(err)
		}

		r.mu.Lock()
		r.running = false
		r.cancel = nil
		next := r.pending
		r.pending = nil
		if next != nil {
			r.start(next)
		}
		r.mu.Unlock()
		close(done)
	}()
}

// Cancel aborts the running task and drops any pending one.
func (r *SingleRunner) Cancel() {
	r.mu.Lock()
	r.pending = nil
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the runner is idle with no pending task.
func (r *SingleRunner) Wait() {
	for {
		r.mu.Lock()
		if !r.running && r.pending == nil {
			r.mu.Unlock()
			return
		}
		done := r.done
		r.mu.Unlock()
		<-done
	}
}

// Close cancels any running task, drops pending work and waits for the
// runner to go idle.
func (r *SingleRunner) Close() {
	r.Cancel()
	r.Wait()
}

// Busy reports whether a task is running or pending.
func (r *SingleRunner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running || r.pending != nil
}

// Map runs fn over indices 0..n-1 with at most workers goroutines. The
// first error cancels the remaining work and is returned. workers <= 0
// means one goroutine per CPU.
func Map(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indices := make(chan int)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if err := ctx.Err(); err != nil {
					errCh <- err
					return
				}
				if err := fn(ctx, i); err != nil {
					cancel()
					errCh <- err
					return
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			i = n
		}
	}
	close(indices)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return ctx.Err()
}

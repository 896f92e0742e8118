package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleRunnerRunsTask(t *testing.T) {
	r := NewSingleRunner()
	var ran atomic.Int32
	r.Submit(func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	r.Wait()
	if ran.Load() != 1 {
		t.Errorf("task ran %d times, want 1", ran.Load())
	}
}

func TestSingleRunnerCollapsesBurst(t *testing.T) {
	r := NewSingleRunner()
	release := make(chan struct{})
	var ran atomic.Int32

	r.Submit(func(ctx context.Context) error {
		<-release
		return nil
	})
	for i := 0; i < 5; i++ {
		r.Submit(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	close(release)
	r.Wait()

	// The burst collapses to the single most recent pending task.
	if ran.Load() != 1 {
		t.Errorf("pending tasks ran %d times, want 1", ran.Load())
	}
}

func TestSingleRunnerCancel(t *testing.T) {
	r := NewSingleRunner()
	started := make(chan struct{})
	var sawCancel atomic.Bool

	r.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return ctx.Err()
	})
	<-started
	r.Cancel()
	r.Wait()

	if !sawCancel.Load() {
		t.Errorf("running task did not observe cancellation")
	}
	if r.Busy() {
		t.Errorf("runner still busy after Wait")
	}
}

func TestSingleRunnerReportsErrors(t *testing.T) {
	r := NewSingleRunner()
	var mu sync.Mutex
	var got error
	r.OnError = func(err error) {
		mu.Lock()
		got = err
		mu.Unlock()
	}
	want := errors.New("boom")
	r.Submit(func(ctx context.Context) error { return want })
	r.Wait()

	mu.Lock()
	defer mu.Unlock()
	if got != want {
		t.Errorf("OnError got %v, want %v", got, want)
	}
}

func TestMapVisitsAllIndices(t *testing.T) {
	var visited [100]atomic.Int32
	err := Map(context.Background(), len(visited), 4, func(ctx context.Context, i int) error {
		visited[i].Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	for i := range visited {
		if visited[i].Load() != 1 {
			t.Errorf("index %d visited %d times, want 1", i, visited[i].Load())
		}
	}
}

func TestMapFirstErrorCancels(t *testing.T) {
	want := errors.New("slice failed")
	var after atomic.Int32
	err := Map(context.Background(), 1000, 2, func(ctx context.Context, i int) error {
		if i == 3 {
			return want
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
		after.Add(1)
		return nil
	})
	if !errors.Is(err, want) {
		t.Fatalf("Map error = %v, want %v", err, want)
	}
	if after.Load() >= 1000 {
		t.Errorf("cancellation did not stop remaining work")
	}
}

func TestMapEmpty(t *testing.T) {
	if err := Map(context.Background(), 0, 4, func(ctx context.Context, i int) error {
		t.Errorf("fn called for empty input")
		return nil
	}); err != nil {
		t.Fatalf("Map: %v", err)
	}
}

func TestMapRespectsWorkerBound(t *testing.T) {
	var current, peak atomic.Int32
	err := Map(context.Background(), 50, 2, func(ctx context.Context, i int) error {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		current.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("observed %d concurrent workers, want at most 2", peak.Load())
	}
}

func TestMapWrappedCancellationIsNotAnError(t *testing.T) {
	err := Map(context.Background(), 10, 2, func(ctx context.Context, i int) error {
		return fmt.Errorf("slice %d: %w", i, context.Canceled)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Map error = %v, want context.Canceled", err)
	}
	if strings.Contains(err.Error(), "slice") {
		t.Errorf("wrapped cancellation surfaced as a real error: %v", err)
	}
}

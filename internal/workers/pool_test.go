package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := NewPool(2)
	defer pool.Shutdown()

	var ran atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := pool.Submit(func(ctx context.Context) {
			defer wg.Done()
			ran.Add(1)
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	wg.Wait()
	if ran.Load() != 10 {
		t.Errorf("Expected 10 jobs run, got %d", ran.Load())
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	pool := NewPool(2)
	defer pool.Shutdown()

	var current, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		_ = pool.Submit(func(ctx context.Context) {
			defer wg.Done()
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
		})
	}

	wg.Wait()
	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 concurrent jobs, saw %d", peak.Load())
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(1)
	pool.Shutdown()

	err := pool.Submit(func(ctx context.Context) {})
	if !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("Expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_RecoversPanics(t *testing.T) {
	pool := NewPool(1)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = pool.Submit(func(ctx context.Context) {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()

	// A panicked job must not poison the pool
	wg.Add(1)
	var ran atomic.Bool
	_ = pool.Submit(func(ctx context.Context) {
		defer wg.Done()
		ran.Store(true)
	})
	wg.Wait()

	if !ran.Load() {
		t.Error("Pool stopped running jobs after a panic")
	}
}

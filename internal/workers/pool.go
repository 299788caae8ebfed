package workers

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"hotelpulse/internal/logging"
	"hotelpulse/internal/metrics"
)

var ErrPoolClosed = errors.New("worker pool closed")

// Pool is the bounded executor behind every async task. Submit never
// blocks the caller: if no slot is free the job still runs, but only
// once a running job releases its slot.
type Pool struct {
	sem     *semaphore.Weighted
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Submit schedules fn on the pool. The job receives the pool's base
// context, which is cancelled on Shutdown.
func (p *Pool) Submit(fn func(ctx context.Context)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		if err := p.sem.Acquire(p.baseCtx, 1); err != nil {
			// Shutdown raced the submit; the job never started.
			logging.Warn("Worker pool draining, job dropped", "error", err.Error())
			return
		}
		defer p.sem.Release(1)

		metrics.WorkerJobsInFlight.Inc()
		defer metrics.WorkerJobsInFlight.Dec()

		defer func() {
			if r := recover(); r != nil {
				logging.Error("Worker job panicked", "panic", r)
				metrics.WorkerJobPanics.Inc()
			}
		}()

		fn(p.baseCtx)
	}()

	return nil
}

// Shutdown stops accepting work, cancels running jobs and waits for them
// to return.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// Package worker runs fire-and-forget jobs on a small bounded pool. The HTTP
// API uses it to kick scrape runs without holding the request open.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when the submission queue has no room. Callers
// surface it as backpressure rather than blocking the request.
var ErrQueueFull = errors.New("worker: queue full")

type job struct {
	name string
	fn   func(ctx context.Context) error
}

type Pool struct {
	queue chan job
	wg    sync.WaitGroup
	log   *zap.SugaredLogger

	mu     sync.Mutex
	closed bool
}

// NewPool starts size workers reading from a queue of depth backlog.
func NewPool(ctx context.Context, size, backlog int, log *zap.SugaredLogger) *Pool {
	if size <= 0 {
		size = 1
	}
	if backlog <= 0 {
		backlog = 16
	}
	p := &Pool{
		queue: make(chan job, backlog),
		log:   log,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.loop(ctx)
	}
	return p
}

func (p *Pool) loop(ctx context.Context) {
	defer p.wg.Done()
	for j := range p.queue {
		if ctx.Err() != nil {
			p.log.Infow("job skipped, shutting down", "job", j.name)
			continue
		}
		if err := j.fn(ctx); err != nil {
			p.log.Warnw("job failed", "job", j.name, "error", err)
		}
	}
}

// Submit enqueues a job without waiting for it to run.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("worker: pool closed")
	}
	select {
	case p.queue <- job{name: name, fn: fn}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to drain.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

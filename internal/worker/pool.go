package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/baharkarakas/storefront-backend/internal/metrics"
)

const (
	queueSize  = 1024
	jobTimeout = 30 * time.Second
)

type job struct {
	name string
	fn   func(context.Context) error
}

// Pool runs fire-and-forget jobs such as deleting images that no product
// references anymore. Failures are logged and counted, never returned.
type Pool struct {
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	jobs   chan job
	log    *slog.Logger
}

func NewPool(n int, log *slog.Logger) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan job, queueSize), log: log}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				p.run(j)
			}
		}()
	}
	return p
}

func (p *Pool) run(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			metrics.WorkerJobsFailed.WithLabelValues(j.name).Inc()
			p.log.Error("worker job panic", "job", j.name, "err", rec)
		}
	}()
	if err := j.fn(ctx); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(j.name).Inc()
		p.log.Error("worker job failed", "job", j.name, "err", err)
	}
}

// Submit enqueues fn without blocking. It reports false when the pool is
// stopped or the queue is full.
func (p *Pool) Submit(name string, fn func(context.Context) error) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job{name: name, fn: fn}:
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
		return true
	default:
		p.log.Warn("worker queue full, dropping job", "job", name)
		return false
	}
}

// Stop drains queued jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

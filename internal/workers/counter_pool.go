// Package workers runs background goroutines that apply redirect counts
// off the request path.
package workers

import (
	"context"
	"sync"
	"time"

	"qrstats/internal/repository"
	"qrstats/pkg/logger"
)

// CounterPool applies redirect-count increments on a fixed set of workers.
// Record never blocks: when the queue is full or the pool is stopped the
// increment is dropped and logged, so counts are exact or under, never over.
type CounterPool struct {
	store   repository.CounterStore
	logger  *logger.Logger
	timeout time.Duration
	workers int

	queue chan string
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewCounterPool creates a pool; call Start before recording
func NewCounterPool(store repository.CounterStore, workers, queueSize int, timeout time.Duration, logger *logger.Logger) *CounterPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &CounterPool{
		store:   store,
		logger:  logger.With("component", "counter_pool"),
		timeout: timeout,
		workers: workers,
		queue:   make(chan string, queueSize),
	}
}

// Start launches the workers
func (p *CounterPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

// Record queues one increment for id. Returns false if it was dropped.
func (p *CounterPool) Record(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.logger.Warn("Counter pool stopped, dropping increment", "id", id)
		return false
	}

	select {
	case p.queue <- id:
		return true
	default:
		p.logger.Warn("Counter queue full, dropping increment", "id", id)
		return false
	}
}

// Stop refuses new increments, lets the workers drain the queue and waits for
// them until ctx is done.
func (p *CounterPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *CounterPool) run(workerID int) {
	defer p.wg.Done()

	p.logger.Debug("Counter worker started", "worker_id", workerID)
	for id := range p.queue {
		p.apply(workerID, id)
	}
	p.logger.Debug("Counter worker stopped", "worker_id", workerID)
}

// apply uses a context detached from the redirect request, so a client
// disconnect never cancels an accepted increment.
func (p *CounterPool) apply(workerID int, id string) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.store.Increment(ctx, id); err != nil {
		p.logger.Error("Failed to increment redirect count",
			"error", err,
			"id", id,
			"worker_id", workerID,
		)
	}
}

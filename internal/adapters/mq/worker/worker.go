package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/raidtier/internal/adapters/mq/queue"
	"github.com/okian/raidtier/pkg/logger"
	"github.com/okian/raidtier/pkg/metrics"
)

// Default pool configuration constants.
const (
	defaultQueueSize    = 256
	poolShutdownTimeout = 30 * time.Second
)

// Sentinel errors for this package.
var (
	ErrNotStarted = errors.New("worker pool not started")
	ErrStopped    = errors.New("worker pool stopped")
)

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue() <-chan queue.Task
}

// worker drains tasks until the queue is closed.
type worker struct {
	name    string
	queue   Queue
	done    chan struct{}
	logger  logger.Logger
	metrics *metrics.Manager
}

func (w *worker) run() {
	defer close(w.done)
	for t := range w.queue.Dequeue() {
		w.process(t)
	}
}

// process runs one task. A panicking task is recorded as failed and does
// not take the worker down.
func (w *worker) process(t queue.Task) {
	start := time.Now()
	status := metrics.TaskOK
	defer func() {
		if r := recover(); r != nil {
			status = metrics.TaskFailed
			w.logger.Error(t.Ctx, "task panicked",
				logger.Int("task", t.ID),
				logger.String("panic", fmt.Sprint(r)))
		}
		w.metrics.RecordWorkerTask(status, time.Since(start))
	}()

	ctx := t.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	t.Fn(ctx)
}

// Pool manages a fixed set of workers sharing one queue. It implements the
// ranking fan-out: Run submits a batch and waits for it.
type Pool struct {
	name      string
	size      int
	queueSize int
	queue     *queue.InMemoryQueue
	workers   []*worker

	mu      sync.RWMutex
	started bool
	stopped bool

	logger  logger.Logger
	metrics *metrics.Manager
}

// NewPool creates a pool of workerCount workers. Zero or less uses one
// worker per CPU.
func NewPool(workerCount int, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		name:      "worker-pool",
		size:      workerCount,
		queueSize: defaultQueueSize,
		logger:    logger.Nop(),
		metrics:   metrics.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	p.queue = queue.NewInMemoryQueue(queue.WithCapacity(p.queueSize))

	p.workers = make([]*worker, workerCount)
	for i := range p.workers {
		p.workers[i] = &worker{
			name:    "worker-" + strconv.Itoa(i),
			queue:   p.queue,
			done:    make(chan struct{}),
			logger:  p.logger,
			metrics: p.metrics,
		}
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// QueueDepth returns the number of tasks waiting for a worker.
func (p *Pool) QueueDepth() int { return p.queue.Len() }

// QueueCapacity returns the task queue bound.
func (p *Pool) QueueCapacity() int { return p.queue.Capacity() }

// Start launches the workers. Calling it again is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	for _, w := range p.workers {
		go w.run()
	}
	p.metrics.UpdateWorkerCount(p.size)
	p.logger.Info(ctx, "worker pool started",
		logger.Int("workers", p.size),
		logger.Int("queueSize", p.queueSize))
}

// Run executes task for every index in [0, n) on the pool and returns once
// all submitted tasks have finished. If ctx ends while submitting, the
// remaining indices are not submitted and ctx's error is returned after
// the submitted ones finish.
func (p *Pool) Run(ctx context.Context, n int, task func(ctx context.Context, i int)) error {
	p.mu.RLock()
	started, stopped := p.started, p.stopped
	p.mu.RUnlock()
	switch {
	case stopped:
		return ErrStopped
	case !started:
		return ErrNotStarted
	}

	var wg sync.WaitGroup
	var submitErr error
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		t := queue.Task{
			ID:  i,
			Ctx: ctx,
			Fn: func(ctx context.Context) {
				defer wg.Done()
				if ctx.Err() != nil {
					return
				}
				task(ctx, i)
			},
		}
		if p.queue.TryEnqueue(t) {
			continue
		}
		// Queue full or closed; Enqueue waits for room or reports which.
		if err := p.queue.Enqueue(ctx, t); err != nil {
			wg.Done()
			if errors.Is(err, queue.ErrClosed) {
				err = ErrStopped
			}
			submitErr = err
			break
		}
	}
	wg.Wait()
	if submitErr != nil {
		return submitErr
	}
	return ctx.Err()
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	started := p.started
	p.mu.Unlock()

	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	if !started {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
		}
	}
	p.metrics.UpdateWorkerCount(0)
	return nil
}

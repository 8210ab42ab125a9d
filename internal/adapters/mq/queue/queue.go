// Package queue defines the contract for enqueuing and consuming scoring
// tasks.
package queue

import (
	"context"
	"sync"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Task is one unit of work. Fn receives the context the task was
// submitted with.
type Task struct {
	ID  int
	Ctx context.Context
	Fn  func(ctx context.Context)
}

// Queue provides enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue blocks until the task is queued, ctx is done, or the queue
	// is closed.
	Enqueue(ctx context.Context, t Task) error

	// TryEnqueue adds a task without blocking. It returns false if the
	// queue is full or closed.
	TryEnqueue(t Task) bool

	// Dequeue returns the channel tasks are delivered on. It is closed
	// once the queue is closed and drained.
	Dequeue() <-chan Task

	// Len returns the current number of queued tasks.
	Len() int

	// Close stops accepting tasks. Tasks already queued are still
	// delivered.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)
	return q
}

// Enqueue adds a task to the queue, waiting for room.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	select {
	case q.tasks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryEnqueue adds a task if there is room.
func (q *InMemoryQueue) TryEnqueue(t Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}
	select {
	case q.tasks <- t:
		return true
	default:
		return false
	}
}

// Dequeue returns the delivery channel.
func (q *InMemoryQueue) Dequeue() <-chan Task {
	return q.tasks
}

// Len returns the current number of queued tasks.
func (q *InMemoryQueue) Len() int {
	return len(q.tasks)
}

// Capacity returns the queue bound.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

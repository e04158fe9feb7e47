package invalidation

import (
	"context"
	"sync"
)

// RetryQueue runs failed steps on a bounded pool of background workers.
type RetryQueue struct {
	steps      chan Step
	workerFunc func(ctx context.Context, step Step) error
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	started    bool
	stopped    bool
	mu         sync.RWMutex
}

// NewRetryQueue creates a retry queue with the specified buffer size and worker function.
func NewRetryQueue(bufferSize int, workerFunc func(ctx context.Context, step Step) error) *RetryQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &RetryQueue{
		steps:      make(chan Step, bufferSize),
		workerFunc: workerFunc,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the queue workers.
func (q *RetryQueue) Start(workerCount int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.stopped {
		return
	}
	q.started = true

	for i := 0; i < workerCount; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *RetryQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			return
		case step, ok := <-q.steps:
			if !ok {
				return
			}
			// Outcomes are reported by workerFunc.
			_ = q.workerFunc(q.ctx, step)
		}
	}
}

// Enqueue adds a step without blocking. Returns false if the queue is full
// or stopped and the step was dropped.
func (q *RetryQueue) Enqueue(step Step) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return false
	}
	select {
	case q.steps <- step:
		return true
	default:
		return false
	}
}

// Stop cancels in-flight work and waits for the workers to exit.
func (q *RetryQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.cancel()
	close(q.steps)
	q.mu.Unlock()

	q.wg.Wait()
}

// Len returns the number of steps waiting in the queue.
func (q *RetryQueue) Len() int {
	return len(q.steps)
}

// Package queue buffers geocoding work between the backfill scheduler and
// the processor workers.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Job is one address waiting to be resolved to coordinates.
type Job struct {
	PropertyID string
	Address    string
	City       string
}

// GeocodeQueue is an in-memory buffer of geocode jobs. Producers push
// without blocking so a full buffer never stalls the scheduler; workers pop
// with a context so shutdown and cancellation interrupt the wait.
type GeocodeQueue struct {
	jobs   chan Job
	done   chan struct{}
	closed bool
	mu     sync.RWMutex
	logger *logrus.Logger
}

func NewGeocodeQueue(bufferSize int, logger *logrus.Logger) *GeocodeQueue {
	return &GeocodeQueue{
		jobs:   make(chan Job, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Push enqueues jobs without blocking. Jobs accepted before the buffer
// fills stay queued; the caller learns via ErrQueueFull that the rest were
// dropped and will be picked up by a later sweep.
func (q *GeocodeQueue) Push(ctx context.Context, jobs ...Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return ErrQueueClosed
	}

	for i, job := range jobs {
		select {
		case q.jobs <- job:
		default:
			q.logger.WithFields(logrus.Fields{
				"queued":  i,
				"dropped": len(jobs) - i,
			}).Warn("Geocode queue is full")
			return ErrQueueFull
		}
	}

	q.logger.WithField("jobs", len(jobs)).Debug("Queued geocode jobs")
	return nil
}

// Pop blocks until a job is available or the context is cancelled. After
// Close, buffered jobs are still handed out; once drained, Pop returns
// ErrQueueClosed.
func (q *GeocodeQueue) Pop(ctx context.Context) (Job, error) {
	// Buffered jobs win over a concurrent close
	select {
	case job := <-q.jobs:
		return job, nil
	default:
	}

	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	case <-q.done:
		select {
		case job := <-q.jobs:
			return job, nil
		default:
			return Job{}, ErrQueueClosed
		}
	}
}

// Close stops the queue: pushes are rejected and blocked Pop calls return
// once the buffer drains. The jobs channel is never closed, so there is no
// window where receivers see zero-value jobs.
func (q *GeocodeQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	return nil
}

// Len returns the current number of buffered jobs
func (q *GeocodeQueue) Len() int {
	return len(q.jobs)
}

// IsClosed returns whether the queue has been closed
func (q *GeocodeQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

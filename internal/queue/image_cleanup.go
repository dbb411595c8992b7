// Package queue runs background work that should not hold up a request.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/metrics"
	"github.com/afivan20/yatube/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrQueueFull    = errors.New("image cleanup queue is full")
	ErrQueueStopped = errors.New("image cleanup queue is stopped")
)

const (
	defaultWorkers = 2
	queueCapacity  = 100
	deleteTimeout  = 30 * time.Second
)

// ImageCleanup deletes images that a post no longer references.
type ImageCleanup struct {
	store   storage.ImageStore
	jobs    chan string
	workers int
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

func NewImageCleanup(store storage.ImageStore, workers int) *ImageCleanup {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &ImageCleanup{
		store:   store,
		jobs:    make(chan string, queueCapacity),
		workers: workers,
	}
}

// Start launches the worker pool. Calling it twice is a no-op.
func (q *ImageCleanup) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
		return
	}
	q.started = true

	logger.Log.Info("Starting image cleanup queue", zap.Int("workers", q.workers))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Submit schedules key for deletion without blocking.
func (q *ImageCleanup) Submit(key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrQueueStopped
	}
	select {
	case q.jobs <- key:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new work and waits for queued deletions to finish or ctx to expire.
func (q *ImageCleanup) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	close(q.jobs)
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ImageCleanup) worker(workerID int) {
	defer q.wg.Done()
	for key := range q.jobs {
		q.process(workerID, key)
	}
	logger.Log.Debug("Image cleanup worker shutting down", zap.Int("worker_id", workerID))
}

func (q *ImageCleanup) process(workerID int, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	err := q.store.DeleteImage(ctx, key)
	metrics.RecordImageCleanup(err)
	if err != nil {
		logger.Log.Warn("Failed to delete replaced image",
			zap.Int("worker_id", workerID),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	logger.Log.Debug("Deleted replaced image", zap.Int("worker_id", workerID), zap.String("key", key))
}

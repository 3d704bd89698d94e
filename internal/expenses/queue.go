package expenses

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/richxcame/expense-tracker/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultWorkers    = 4
	defaultQueueSize  = 256
	defaultJobTimeout = 2 * time.Minute
)

// ErrQueueClosed is reported for jobs offered after Shutdown
var ErrQueueClosed = errors.New("categorization queue is closed")

// JobHandler processes one categorization job
type JobHandler func(ctx context.Context, job categorizationJob) error

type queuedJob struct {
	ctx context.Context
	job categorizationJob
}

// CategorizationQueue runs background categorization on a fixed pool of
// workers. Enqueue never blocks; jobs that cannot be queued are logged as
// dead letters and their expense stays pending.
type CategorizationQueue struct {
	jobs       chan queuedJob
	workers    int
	jobTimeout time.Duration
	handle     JobHandler

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewCategorizationQueue creates a queue. Non-positive sizes use defaults.
func NewCategorizationQueue(workers, size int, handle JobHandler) *CategorizationQueue {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if size <= 0 {
		size = defaultQueueSize
	}
	return &CategorizationQueue{
		jobs:       make(chan queuedJob, size),
		workers:    workers,
		jobTimeout: defaultJobTimeout,
		handle:     handle,
	}
}

// Start launches the workers. Calling it more than once is a no-op.
func (q *CategorizationQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	logger.Info("categorization queue started", zap.Int("workers", q.workers), zap.Int("capacity", cap(q.jobs)))
}

// Enqueue offers a job. The job runs on a context detached from ctx: it keeps
// ctx's values (correlation id, user id) but not its cancellation.
func (q *CategorizationQueue) Enqueue(ctx context.Context, job categorizationJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.deadLetter(ctx, job, ErrQueueClosed)
		queueJobs.WithLabelValues("rejected").Inc()
		return false
	}

	select {
	case q.jobs <- queuedJob{ctx: context.WithoutCancel(ctx), job: job}:
		queueDepth.Inc()
		return true
	default:
		q.deadLetter(ctx, job, fmt.Errorf("categorization queue is full (capacity %d)", cap(q.jobs)))
		queueJobs.WithLabelValues("rejected").Inc()
		return false
	}
}

// Shutdown stops accepting jobs, lets the workers drain what is queued and
// waits for them until ctx is done
func (q *CategorizationQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
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
		logger.Info("categorization queue drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("categorization queue did not drain: %w", ctx.Err())
	}
}

// Pending returns the number of queued jobs not yet picked up
func (q *CategorizationQueue) Pending() int {
	return len(q.jobs)
}

func (q *CategorizationQueue) worker(id int) {
	defer q.wg.Done()
	for item := range q.jobs {
		queueDepth.Dec()
		q.run(id, item)
	}
}

func (q *CategorizationQueue) run(workerID int, item queuedJob) {
	ctx, cancel := context.WithTimeout(item.ctx, q.jobTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		jobDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			queueJobs.WithLabelValues("failed").Inc()
			q.deadLetter(ctx, item.job, fmt.Errorf("panic in categorization worker %d: %v", workerID, r))
		}
	}()

	if err := q.handle(ctx, item.job); err != nil {
		queueJobs.WithLabelValues("failed").Inc()
		q.deadLetter(ctx, item.job, err)
		return
	}
	queueJobs.WithLabelValues("done").Inc()
}

// deadLetter records a job that will not be retried
func (q *CategorizationQueue) deadLetter(ctx context.Context, job categorizationJob, cause error) {
	logger.WithContext(ctx).Error("categorization job dead-lettered",
		zap.String("expense_id", job.ExpenseID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.Error(cause),
	)
}

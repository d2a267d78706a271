package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sjsage522/estatecrawler/logger"
	crawlerrors "sjsage522/estatecrawler/pkg/errors"
)

// ErrQueueClosed is returned when a task is submitted after Close
var ErrQueueClosed = errors.New("task queue closed")

// Task is one unit of work executed by the queue
type Task func(ctx context.Context) error

// RetryPolicy bounds how often a retryable task failure is attempted again
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type queuedTask struct {
	ctx    context.Context
	name   string
	task   Task
	result chan error
}

// TaskQueue runs tasks one at a time, in submission order, with at least
// interval between the start of consecutive attempts.
type TaskQueue struct {
	limiter   *rate.Limiter
	retry     RetryPolicy
	tasks     chan queuedTask
	done      chan struct{}
	closeOnce sync.Once
	log       *logger.Logger
}

// NewTaskQueue creates a queue and starts its worker
func NewTaskQueue(interval time.Duration, retry RetryPolicy) *TaskQueue {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	q := &TaskQueue{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		retry:   retry,
		tasks:   make(chan queuedTask),
		done:    make(chan struct{}),
		log:     logger.ForWorker().WithField("queue", "fetch"),
	}
	go q.run()
	return q
}

// Do submits a task and blocks until it has finished
func (q *TaskQueue) Do(ctx context.Context, name string, task Task) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	qt := queuedTask{ctx: ctx, name: name, task: task, result: make(chan error, 1)}

	select {
	case q.tasks <- qt:
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}

	return <-qt.result
}

// Close stops the worker once the running task, if any, has finished
func (q *TaskQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func (q *TaskQueue) run() {
	for {
		select {
		case qt := <-q.tasks:
			qt.result <- q.execute(qt)
		case <-q.done:
			return
		}
	}
}

// execute runs a task, retrying retryable failures with exponential backoff
func (q *TaskQueue) execute(qt queuedTask) error {
	delay := q.retry.BaseDelay
	var err error

	for attempt := 1; attempt <= q.retry.MaxAttempts; attempt++ {
		if waitErr := q.limiter.Wait(qt.ctx); waitErr != nil {
			return waitErr
		}

		err = qt.task(qt.ctx)
		if err == nil || !crawlerrors.IsRetryable(err) || attempt == q.retry.MaxAttempts {
			break
		}

		q.log.Warn().
			Err(err).
			Str("task", qt.name).
			Int("attempt", attempt).
			Int("max_attempts", q.retry.MaxAttempts).
			Dur("backoff", delay).
			Msg("Task failed, retrying")

		if sleepErr := sleep(qt.ctx, delay); sleepErr != nil {
			return sleepErr
		}
		delay *= 2
	}

	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

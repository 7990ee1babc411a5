package playback

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrQueueClosed is returned by [Queue.Submit] when the queue has been closed.
var ErrQueueClosed = errors.New("playback: queue is closed")

// Queue runs future reactions one at a time, in submission order, on a
// single worker goroutine. It is the "next turn" on which every [Future]
// callback fires: a reaction never runs inside the call that registered it,
// and two reactions of the same queue never run concurrently.
//
// Submit never blocks; the backlog is unbounded.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
	logger *slog.Logger

	// Observability counters.
	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// QueueStats provides a point-in-time snapshot of queue activity.
type QueueStats struct {
	Submitted int64 // reactions accepted
	Completed int64 // reactions finished, including those that panicked
	Panicked  int64 // reactions that panicked
	Pending   int   // reactions waiting to run
}

// QueueOption configures a [Queue].
type QueueOption func(*queueConfig)

type queueConfig struct {
	logger *slog.Logger
}

// WithQueueLogger sets the logger used to report reactions that panic.
// Panics if l is nil.
func WithQueueLogger(l *slog.Logger) QueueOption {
	if l == nil {
		panic("playback: WithQueueLogger requires non-nil logger")
	}
	return func(c *queueConfig) {
		c.logger = l
	}
}

// NewQueue creates a queue and starts its worker goroutine. The worker runs
// until [Queue.Close] is called.
func NewQueue(opts ...QueueOption) *Queue {
	cfg := queueConfig{logger: discardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	q := &Queue{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: cfg.logger,
	}
	go q.worker()
	return q
}

var defaultQueue = sync.OnceValue(func() *Queue { return NewQueue() })

// DefaultQueue returns the process-wide queue used by futures and groups
// that were not given one explicitly. It is never closed.
func DefaultQueue() *Queue {
	return defaultQueue()
}

func (q *Queue) worker() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 {
			if q.closed {
				q.mu.Unlock()
				return
			}
			q.mu.Unlock()
			<-q.wake
			q.mu.Lock()
		}
		batch := q.tasks
		q.tasks = nil
		q.mu.Unlock()

		for i, fn := range batch {
			batch[i] = nil
			q.run(fn)
		}
	}
}

func (q *Queue) run(fn func()) {
	defer q.completed.Add(1)

	if pe := try(fn); pe != nil {
		q.panicked.Add(1)
		q.logger.Error("reaction panicked",
			slog.Any("value", pe.Value),
			slog.String("stack", pe.Stack),
		)
	}
}

// Submit appends fn to the queue. It never blocks and never runs fn
// synchronously. Returns [ErrQueueClosed] if the queue has been closed.
func (q *Queue) Submit(fn func()) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.tasks = append(q.tasks, fn)
	q.submitted.Add(1)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// schedule submits fn, falling back to a fresh goroutine when the queue is
// closed so that a reaction is never dropped.
func (q *Queue) schedule(fn func()) {
	if err := q.Submit(fn); err != nil {
		go func() {
			if pe := try(fn); pe != nil {
				q.logger.Error("reaction panicked after queue close",
					slog.Any("value", pe.Value),
					slog.String("stack", pe.Stack),
				)
			}
		}()
	}
}

// Stats returns a point-in-time snapshot of queue activity.
// Safe to call concurrently.
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	pending := len(q.tasks)
	q.mu.Unlock()

	return QueueStats{
		Submitted: q.submitted.Load(),
		Completed: q.completed.Load(),
		Panicked:  q.panicked.Load(),
		Pending:   pending,
	}
}

// Close stops accepting new reactions, runs every reaction already
// submitted, and waits for the worker to exit. Close must not be called
// from a reaction running on q.
// Safe to call multiple times.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

package alerting

import (
	"context"
	"errors"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrDispatcherClosed is returned when a task is dispatched after Close.
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// ErrQueueFull is returned when the dispatcher cannot accept more work.
var ErrQueueFull = errors.New("dispatch queue is full")

// Task is a unit of detached work.
type Task func(ctx context.Context)

// Dispatcher runs tasks outside of the caller's request.
type Dispatcher interface {
	// Dispatch hands the task off without waiting for it to run.
	Dispatch(name string, task Task) error
	// Close stops accepting tasks and waits for queued ones to finish.
	Close()
}

// PoolDispatcher runs tasks on a fixed set of workers fed by a bounded queue.
// Tasks never block the caller; when the queue is full the task is dropped.
type PoolDispatcher struct {
	ctx    context.Context
	tasks  chan namedTask
	pool   *pool.Pool
	mu     sync.RWMutex
	closed bool
	logger *zap.Logger
}

type namedTask struct {
	name string
	run  Task
}

// NewPoolDispatcher creates a dispatcher and starts its workers. Tasks receive
// ctx, which should outlive any single request.
func NewPoolDispatcher(ctx context.Context, workers, queueSize int, logger *zap.Logger) *PoolDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}

	d := &PoolDispatcher{
		ctx:    ctx,
		tasks:  make(chan namedTask, queueSize),
		pool:   pool.New().WithMaxGoroutines(workers),
		logger: logger.Named("alert_dispatcher"),
	}

	for range workers {
		d.pool.Go(d.work)
	}

	return d
}

// Dispatch queues the task for a worker.
func (d *PoolDispatcher) Dispatch(name string, task Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.tasks <- namedTask{name: name, run: task}:
		return nil
	default:
		d.logger.Warn("Dropping task, queue is full", zap.String("task", name))
		return ErrQueueFull
	}
}

// Close drains the queue and waits for running tasks.
func (d *PoolDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()

	d.pool.Wait()
}

// work consumes tasks until the queue is closed.
func (d *PoolDispatcher) work() {
	for task := range d.tasks {
		runTask(d.ctx, task, d.logger)
	}
}

// InlineDispatcher runs every task synchronously in Dispatch.
// Tests use it to observe alerting side effects deterministically.
type InlineDispatcher struct {
	ctx    context.Context
	logger *zap.Logger
}

// NewInlineDispatcher creates a synchronous dispatcher.
func NewInlineDispatcher(ctx context.Context, logger *zap.Logger) *InlineDispatcher {
	return &InlineDispatcher{
		ctx:    ctx,
		logger: logger.Named("alert_dispatcher"),
	}
}

// Dispatch runs the task before returning.
func (d *InlineDispatcher) Dispatch(name string, task Task) error {
	runTask(d.ctx, namedTask{name: name, run: task}, d.logger)
	return nil
}

// Close is a no-op.
func (d *InlineDispatcher) Close() {}

// runTask executes a task and logs any panic instead of crashing the process.
func runTask(ctx context.Context, task namedTask, logger *zap.Logger) {
	var catcher panics.Catcher
	catcher.Try(func() { task.run(ctx) })

	if recovered := catcher.Recovered(); recovered != nil {
		logger.Error("Task panicked",
			zap.String("task", task.name),
			zap.Any("panic", recovered.Value),
			zap.ByteString("stack", recovered.Stack))
	}
}

// Package asyncruntime implements the cooperative task runtime of spec.md
// §4.6: a shared, lazily-started background executor (one dedicated worker
// goroutine processing a serial queue) plus a way to run work on a fresh,
// detached goroutine for true parallelism.
//
// The background worker's queue-plus-coalescing-wakeup shape is adapted
// from internal/infrastructure/processmgr's scheduler/mainloop pair: that
// package drives a heap of time-ordered process-restart events through one
// dedicated goroutine; AsyncRuntime drives a FIFO queue of submitted tasks
// through the same single-worker, never-panics loop shape, dropping the
// heap since AsyncRuntime has no delayed-scheduling role of its own —
// pacing.Pacer already owns delay, so the queue only ever needs "run next".
package asyncruntime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Runtime is a process-wide cooperative scheduler. The zero value is not
// usable; construct with New.
type Runtime struct {
	log *zap.Logger

	once  sync.Once
	queue chan func(context.Context)
	done  chan struct{}
}

// New constructs a Runtime. The background worker goroutine is not started
// until the first call to RunOnBackground.
func New(log *zap.Logger) *Runtime {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runtime{
		log:   log.Named("async"),
		queue: make(chan func(context.Context), 256),
		done:  make(chan struct{}),
	}
}

// RunOnBackground submits task onto the shared background executor. The
// executor runs on a single dedicated worker, started lazily on first use;
// within it, tasks execute cooperatively — task runs to completion (or to
// its own internal suspension points) before the next queued task starts.
// RunOnBackground itself never blocks on task's execution; it only blocks
// briefly if the queue is momentarily full.
func (r *Runtime) RunOnBackground(ctx context.Context, task func(context.Context)) {
	r.once.Do(r.startWorker)
	select {
	case r.queue <- task:
	case <-ctx.Done():
	case <-r.done:
	}
}

// RunOnBackgroundSync behaves like RunOnBackground but blocks the caller
// until task has run to completion (or ctx is cancelled first). This is
// how Connection funnels a subscription poller's or the reconnect
// supervisor's per-tick body through the single shared worker while still
// letting each loop's own pacing wait happen off the worker: the loop
// goroutine suspends here, freeing the worker to run another task's tick,
// which is exactly the "suspend at pacing waits and I/O, interleave other
// tasks" contract of spec.md §5.
func (r *Runtime) RunOnBackgroundSync(ctx context.Context, task func(context.Context)) {
	done := make(chan struct{})
	r.RunOnBackground(ctx, func(taskCtx context.Context) {
		defer close(done)
		task(taskCtx)
	})
	select {
	case <-done:
	case <-ctx.Done():
	case <-r.done:
	}
}

// RunOnThread starts fn on a fresh goroutine, detached: the runtime does
// not join it. Unlike RunOnBackground, concurrently running RunOnThread
// tasks execute in parallel with each other and with the background
// executor, matching the "multi_thread" configuration's contract in
// spec.md §4.7.
func (r *Runtime) RunOnThread(fn func()) {
	go fn()
}

// Close stops accepting new background work and lets the worker goroutine
// exit once its queue drains. Close does not cancel in-flight tasks.
func (r *Runtime) Close() {
	close(r.done)
}

func (r *Runtime) startWorker() {
	go func() {
		for {
			select {
			case task := <-r.queue:
				r.runSafely(task)
			case <-r.done:
				for {
					select {
					case task := <-r.queue:
						r.runSafely(task)
					default:
						return
					}
				}
			}
		}
	}()
}

// runSafely executes task, recovering a panic and logging it rather than
// taking down the shared worker — the same "supervisor never throws"
// guarantee spec.md §4.7 requires of the reconnect and subscribe loops that
// run on this executor.
func (r *Runtime) runSafely(task func(context.Context)) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("background task panicked", zap.Any("panic", p))
		}
	}()
	task(context.Background())
}

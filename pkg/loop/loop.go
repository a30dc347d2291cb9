// Package loop provides the cooperative task queue the bridge uses to
// defer nested-mutation flushes until the current synchronous work has
// finished.
//
// The model is single-threaded and explicit: components schedule
// functions, and the owner of the loop drains them at a checkpoint of
// its choosing. Drain runs tasks in FIFO order, including tasks that
// were scheduled by tasks already running in the same drain, so a
// checkpoint always observes fully settled state.
package loop

import "sync"

// Loop is a FIFO queue of deferred tasks. The zero value is ready to use.
// Once scheduled, a task always runs; there is no cancellation.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
}

// New creates an empty Loop.
func New() *Loop {
	return &Loop{}
}

// Schedule appends fn to the queue. It never runs fn inline, even when
// called from a task that is currently draining.
func (l *Loop) Schedule(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
}

// Drain runs queued tasks until the queue is empty. Tasks scheduled
// while draining run in the same call.
func (l *Loop) Drain() {
	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		fn()
	}
}

// Len returns the number of tasks currently queued.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

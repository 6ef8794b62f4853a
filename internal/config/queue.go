package config

import "sync"

// Action is a deferred configuration change. A non-nil error means the
// change was rejected and nothing was applied.
type Action func() error

// Queue holds configuration changes until the next tick drains them, so a
// recompute never observes a half-applied configuration. Enqueue may be called
// from any goroutine; Drain runs on the tick goroutine.
type Queue struct {
	mu      sync.Mutex
	pending []Action
}

// NewQueue returns an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a change
func (q *Queue) Enqueue(a Action) {
	if a == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, a)
	q.mu.Unlock()
}

// Len returns the number of pending changes
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs every pending change in enqueue order and empties the queue. It
// returns the errors of rejected changes, in order.
func (q *Queue) Drain() []error {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	var errs []error
	for _, a := range batch {
		if err := a(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

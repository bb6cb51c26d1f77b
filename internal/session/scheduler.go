package session

import "sync"

// Scheduler runs continuations of asynchronous operations, typically on
// the UI thread.
type Scheduler interface {
	Post(fn func())
}

// Immediate runs continuations on the goroutine that posts them.
type Immediate struct{}

// Post runs fn.
func (Immediate) Post(fn func()) { fn() }

// Queue holds continuations until Drain is called.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	ready   chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Post enqueues fn.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after a Post.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of queued continuations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs every queued continuation in order and returns how many ran.
func (q *Queue) Drain() int {
	q.mu.Lock()
	fns := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Package dispatch provides delivery executors for the watch library.
//
// An observer delivers events on whatever goroutine its source uses to
// emit them. Callers that want delivery elsewhere inject a Dispatcher:
// Inline (the default) invokes on the emitting goroutine, Queue moves
// invocation onto a single worker goroutine while preserving emission
// order.
package dispatch

import "sync"

// Dispatcher schedules delivery functions for execution.
type Dispatcher interface {
	// Dispatch runs fn, either inline or on the dispatcher's own
	// execution context. Implementations must preserve per-caller
	// submission order.
	Dispatch(fn func())
}

// Inline is the default dispatcher. It runs functions synchronously on
// the calling goroutine.
var Inline Dispatcher = inline{}

type inline struct{}

func (inline) Dispatch(fn func()) { fn() }

// defaultQueueBuffer is the queue capacity when NewQueue is given a
// non-positive buffer size.
const defaultQueueBuffer = 64

// Queue is a serial executor: dispatched functions run one at a time,
// in submission order, on a dedicated goroutine. Dispatch blocks while
// the queue is full. After Close, dispatched functions are dropped.
type Queue struct {
	mu     sync.Mutex
	fns    chan func()
	closed bool
	done   chan struct{}
}

// NewQueue creates a running queue dispatcher.
func NewQueue(buffer int) *Queue {
	if buffer <= 0 {
		buffer = defaultQueueBuffer
	}
	q := &Queue{
		fns:  make(chan func(), buffer),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for fn := range q.fns {
		fn()
	}
}

// Dispatch implements Dispatcher.
func (q *Queue) Dispatch(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.fns <- fn
}

// Close stops the queue and waits for already-dispatched functions to
// finish. Idempotent. Must not be called from a dispatched function.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.fns)
	q.mu.Unlock()
	<-q.done
}

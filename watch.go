// Package watch provides lifecycle-managed observation of mutable
// sources: property objects, named-event centers, or anything else
// adapted to the source capability interface.
//
// An Observer binds one (source, selector) pair to a delivery
// callback. It starts delivering immediately on construction and
// guarantees that teardown happens exactly once, deterministically,
// however it is triggered: an explicit Pause, an explicit Close, or —
// as a backstop — garbage collection of a dropped Observer.
//
// Example usage:
//
//	obj := property.NewObject()
//	_ = obj.Define("counter", 0)
//
//	obs, err := watch.New(obj, source.Property("counter"), func(ev source.Event) {
//	    fmt.Println("counter is now", ev.Value)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obs.Close()
//
//	_ = obj.Set("counter", 10) // callback fires with 10
//
// A Publisher is the same state machine with the single callback
// replaced by a multicast channel: one upstream registration fans out
// to any number of downstream Subscriptions, each of which observes an
// explicit end-of-stream (channel close) when the publisher is torn
// down.
//
// Delivery happens on whatever goroutine the source emits on unless a
// dispatcher is injected with WithDispatcher. Pause is a strict
// barrier: it waits for in-flight deliveries to complete, and no
// delivery begins after Pause returns. Because of that wait, Pause and
// Close must not be called from inside the delivery callback of the
// same Observer; hand off to another goroutine instead. Mutating the
// watched source from inside the callback is fine: the nested delivery
// runs recursively on the same goroutine.
package watch

import (
	"sync"

	"github.com/agentstation/watch/pkg/source"
)

// Callback receives observed events from an Observer.
//
// When the owner of an Observer is also the object being watched (or
// otherwise stores the Observer as one of its fields), the callback
// should not capture the Observer itself. The registered handler never
// does, so a dropped Observer stays collectible and the cleanup
// backstop can run.
type Callback func(source.Event)

// Lifecycle is the pause/resume surface shared by Observer and
// Publisher.
type Lifecycle interface {
	// Resume re-registers with the source if not already running.
	// Idempotent. Fails with errors.ErrTornDown after Close.
	Resume() error

	// Pause cancels the current registration. Idempotent and silent
	// when already paused. After Pause returns, no delivery begins
	// until Resume.
	Pause()

	// Running reports whether a live registration exists.
	Running() bool

	// Close tears down permanently. Idempotent. After Close, Resume
	// fails and no event is ever delivered again.
	Close() error
}

// gate tracks in-flight deliveries for one resume cycle and lets Pause
// shut them off with a strict barrier: shutDown blocks until every
// in-flight delivery finishes, and every later delivery sees shut and
// drops. The callback runs without holding the gate lock, so a
// callback may mutate the watched source and re-enter deliver on the
// same goroutine.
type gate struct {
	mu       sync.Mutex
	cond     *sync.Cond
	shut     bool
	inflight int
}

func newGate() *gate {
	g := &gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *gate) shutDown() {
	g.mu.Lock()
	g.shut = true
	for g.inflight > 0 {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

// deliver runs fn unless the gate is shut.
func (g *gate) deliver(fn func()) {
	g.mu.Lock()
	if g.shut {
		g.mu.Unlock()
		return
	}
	g.inflight++
	g.mu.Unlock()

	fn()

	g.mu.Lock()
	g.inflight--
	if g.shut && g.inflight == 0 {
		g.cond.Broadcast()
	}
	g.mu.Unlock()
}

package watch

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/watch/pkg/dispatch"
	"github.com/agentstation/watch/pkg/errors"
	"github.com/agentstation/watch/pkg/logging"
	"github.com/agentstation/watch/pkg/source"
)

// Compile-time interface check to ensure proper implementation.
var _ Lifecycle = (*Observer)(nil)

// Observer binds one (source, selector) pair to a callback with
// pause/resume semantics. It is running from the moment New returns.
// All methods are safe for concurrent use.
type Observer struct {
	st      *observerState
	cleanup runtime.Cleanup
}

// observerState carries everything the Observer owns. It is a separate
// allocation so the cleanup backstop can tear it down once the
// Observer wrapper itself is unreachable; neither the state nor the
// handler registered with the source ever references the wrapper.
type observerState struct {
	mu         sync.Mutex
	src        source.Source
	sel        source.Selector
	callback   Callback
	dispatcher dispatch.Dispatcher
	logger     *zerolog.Logger
	name       string

	reg    source.Registration // nil while paused
	gate   *gate               // one per resume cycle, nil while paused
	closed bool
}

// New creates an Observer and registers it immediately, so the first
// matching mutation after New returns is delivered. It fails when the
// source or callback is missing, or when the source rejects the
// selector (errors.IsSourceInvalid).
func New(src source.Source, sel source.Selector, cb Callback, opts ...Option) (*Observer, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	return newObserver(src, sel, cb, o)
}

// newObserver is shared by New and NewPublisher.
func newObserver(src source.Source, sel source.Selector, cb Callback, o *options) (*Observer, error) {
	if src == nil {
		return nil, errors.NewValidationError("source", nil, "source cannot be nil")
	}
	if cb == nil {
		return nil, errors.NewValidationError("callback", nil, "callback cannot be nil")
	}

	st := &observerState{
		src:        src,
		sel:        sel,
		callback:   cb,
		dispatcher: o.dispatcher,
		logger:     logging.WithSelector(logging.WithWatch(o.logger, o.name), sel.Name),
		name:       o.name,
	}

	st.mu.Lock()
	err := st.resumeLocked()
	st.mu.Unlock()
	if err != nil {
		return nil, errors.WrapResource("start", "observer", o.name, err)
	}

	obs := &Observer{st: st}
	obs.cleanup = runtime.AddCleanup(obs, func(st *observerState) {
		st.teardown()
	}, st)
	return obs, nil
}

// Name returns the observer's configured name, which may be empty.
func (o *Observer) Name() string {
	return o.st.name
}

// Selector returns the selector the observer was constructed with.
func (o *Observer) Selector() source.Selector {
	return o.st.sel
}

// Running implements Lifecycle.
func (o *Observer) Running() bool {
	o.st.mu.Lock()
	defer o.st.mu.Unlock()
	return o.st.reg != nil
}

// Resume implements Lifecycle.
func (o *Observer) Resume() error {
	o.st.mu.Lock()
	defer o.st.mu.Unlock()
	if o.st.closed {
		return errors.ErrTornDown
	}
	if o.st.reg != nil {
		return nil
	}
	return o.st.resumeLocked()
}

// Pause implements Lifecycle.
func (o *Observer) Pause() {
	o.st.pause()
}

// Close implements Lifecycle.
func (o *Observer) Close() error {
	o.st.teardown()
	o.cleanup.Stop()
	return nil
}

// resumeLocked creates the registration. The caller holds st.mu.
func (s *observerState) resumeLocked() error {
	if s.reg != nil {
		// The idempotent path in Resume makes this unreachable; the
		// check keeps a second live registration structurally
		// impossible.
		return errors.ErrDoubleRegistration
	}

	g := newGate()
	d := s.dispatcher
	cb := s.callback

	// The handler captures only the gate, dispatcher and callback, so
	// the source never holds the Observer or its state alive. The gate
	// check runs inside the dispatched function: with an asynchronous
	// dispatcher a delivery queued before Pause is still discarded.
	handler := func(ev source.Event) {
		d.Dispatch(func() {
			g.deliver(func() { cb(ev) })
		})
	}

	reg, err := s.src.Register(s.sel, handler)
	if err != nil {
		return err
	}
	s.reg = reg
	s.gate = g

	s.logger.Debug().Msg("observer resumed")
	return nil
}

// pause detaches the current registration. After it returns no
// delivery begins; a delivery in flight has completed.
func (s *observerState) pause() {
	s.mu.Lock()
	if s.reg == nil {
		s.mu.Unlock()
		return
	}
	reg, g := s.reg, s.gate
	s.reg, s.gate = nil, nil
	s.mu.Unlock()

	// Shut the gate first: this blocks until an in-flight delivery
	// finishes and stops later ones, then the registration is released.
	g.shutDown()
	reg.Unregister()

	s.logger.Debug().Msg("observer paused")
}

// teardown is pause plus a terminal closed mark. Runs at most once
// effectively; later calls are no-ops.
func (s *observerState) teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	reg, g := s.reg, s.gate
	s.reg, s.gate = nil, nil
	s.mu.Unlock()

	if g != nil {
		g.shutDown()
	}
	if reg != nil {
		reg.Unregister()
	}

	s.logger.Debug().Msg("observer torn down")
}

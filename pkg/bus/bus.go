// Package bus provides an in-memory named-event source.
//
// A Center delivers posted events to every registration on the event
// name, synchronously on the posting goroutine. Sender filters are
// applied here in the adapter: a registration restricted to one sender
// never sees events posted by another, and the watch core never has to
// filter.
//
// Event names are an open namespace, so Register cannot validate them:
// watching a name that nothing ever posts registers successfully and
// never fires. That degenerate case is deliberate and documented
// rather than an error.
package bus

import (
	"sync"

	"github.com/agentstation/utc"

	"github.com/agentstation/watch/pkg/errors"
	"github.com/agentstation/watch/pkg/source"
)

// Compile-time interface check to ensure proper implementation.
var _ source.Source = (*Center)(nil)

// Center is an observable named-event broadcast source.
type Center struct {
	mu     sync.Mutex
	regs   map[string]map[uint64]*registration
	nextID uint64
	closed bool
}

// registration is one live handler on one event name.
type registration struct {
	sel     source.Selector
	handler source.Handler
}

// New creates an empty event center.
func New() *Center {
	return &Center{
		regs: make(map[string]map[uint64]*registration),
	}
}

// Post delivers an event to every registration on the name whose
// sender filter matches. Handlers run synchronously on the calling
// goroutine after the center lock is released. Posting to a name with
// no registrations is not an error; the event is dropped.
func (c *Center) Post(name string, sender, payload any) error {
	if name == "" {
		return errors.NewValidationError("name", name, "event name cannot be empty")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrClosed
	}

	event := source.Event{
		Source: c,
		Sender: sender,
		Name:   name,
		Value:  payload,
		Time:   utc.Now(),
	}

	var handlers []source.Handler
	for _, reg := range c.regs[name] {
		if reg.sel.Matches(sender) {
			handlers = append(handlers, reg.handler)
		}
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

// Register implements source.Source. The selector name is the event
// identifier; the selector's sender restricts delivery by identity.
func (c *Center) Register(sel source.Selector, h source.Handler) (source.Registration, error) {
	if h == nil {
		return nil, errors.NewValidationError("handler", nil, "handler cannot be nil")
	}
	if sel.Name == "" {
		return nil, errors.NewValidationError("selector", sel.Name, "event name cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.NewSourceInvalidError("event center", sel.Name, "center is closed")
	}

	c.nextID++
	id := c.nextID
	if c.regs[sel.Name] == nil {
		c.regs[sel.Name] = make(map[uint64]*registration)
	}
	c.regs[sel.Name][id] = &registration{sel: sel, handler: h}

	name := sel.Name
	return source.UnregisterFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.regs[name], id)
	}), nil
}

// Close drops every registration and rejects further posts and
// registrations. Idempotent.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.regs = make(map[string]map[uint64]*registration)
}

// Observers returns the number of live registrations on an event name.
func (c *Center) Observers(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.regs[name])
}

// Package property provides an in-memory property-change source.
//
// An Object is a set of named properties declared up front with Define.
// Mutating a property with Set delivers a change event to every
// registration on that property, synchronously on the mutating
// goroutine. Because the property set is declared, Register can
// validate selectors statically: watching an undefined property fails
// immediately rather than silently never firing.
package property

import (
	"sync"

	"github.com/agentstation/utc"

	"github.com/agentstation/watch/pkg/errors"
	"github.com/agentstation/watch/pkg/source"
)

// Compile-time interface check to ensure proper implementation.
var _ source.Source = (*Object)(nil)

// Object is an observable bag of named properties.
type Object struct {
	mu     sync.Mutex
	values map[string]any
	regs   map[string]map[uint64]*registration
	nextID uint64
}

// registration is one live handler on one property.
type registration struct {
	sel     source.Selector
	handler source.Handler
}

// NewObject creates an empty observable object.
func NewObject() *Object {
	return &Object{
		values: make(map[string]any),
		regs:   make(map[string]map[uint64]*registration),
	}
}

// Define declares a property with an initial value. Defining a
// property does not notify observers. Redefining an existing property
// is an error.
func (o *Object) Define(name string, initial any) error {
	if name == "" {
		return errors.NewValidationError("name", name, "property name cannot be empty")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.values[name]; ok {
		return &errors.ValidationError{
			Field:   "name",
			Value:   name,
			Message: "property already defined",
		}
	}
	o.values[name] = initial
	return nil
}

// Get returns the current value of a property and whether it is
// defined.
func (o *Object) Get(name string) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.values[name]
	return v, ok
}

// Set mutates a property and notifies every registration on it with
// the new value. Handlers run synchronously on the calling goroutine,
// in no particular order relative to each other, after the value is
// stored. Setting an undefined property is an error and notifies
// nobody.
func (o *Object) Set(name string, value any) error {
	o.mu.Lock()
	if _, ok := o.values[name]; !ok {
		o.mu.Unlock()
		return errors.NewNotFoundError("property", name)
	}
	o.values[name] = value

	event := source.Event{
		Source: o,
		Sender: o,
		Name:   name,
		Value:  value,
		Time:   utc.Now(),
	}

	// Snapshot handlers so delivery happens outside the object lock.
	// A registration cancelled concurrently with Set may still see
	// this delivery; the watch core gates against that.
	var handlers []source.Handler
	for _, reg := range o.regs[name] {
		if reg.sel.Matches(event.Sender) {
			handlers = append(handlers, reg.handler)
		}
	}
	o.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

// Register implements source.Source. The selector name must be a
// defined property.
func (o *Object) Register(sel source.Selector, h source.Handler) (source.Registration, error) {
	if h == nil {
		return nil, errors.NewValidationError("handler", nil, "handler cannot be nil")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.values[sel.Name]; !ok {
		return nil, errors.NewSourceInvalidError("property object", sel.Name, "property not defined")
	}

	o.nextID++
	id := o.nextID
	if o.regs[sel.Name] == nil {
		o.regs[sel.Name] = make(map[uint64]*registration)
	}
	o.regs[sel.Name][id] = &registration{sel: sel, handler: h}

	name := sel.Name
	return source.UnregisterFunc(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.regs[name], id)
	}), nil
}

// Observers returns the number of live registrations on a property.
func (o *Object) Observers(name string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.regs[name])
}

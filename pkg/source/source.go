// Package source defines the capability interface between the watch
// core and concrete event source adapters.
//
// A Source is anything that can deliver change events for a Selector:
// a property object, a named-event center, or any external mechanism
// wrapped to fit. The core state machine in the root watch package
// depends on sources only through this package, so it is written once
// and tested against in-memory adapters.
//
// The cancellation contract: Unregister is idempotent and safe to call
// while events are in flight. An adapter is not required to guarantee
// that a delivery already in flight is cut off synchronously — callers
// that need a strict cut-off (the watch core does) must gate delivery
// themselves before invoking their callback.
package source

import (
	"reflect"

	"github.com/agentstation/utc"
)

// Event is a single observed change delivered to a registered handler.
type Event struct {
	// Source is the object the event originated from.
	Source any

	// Sender is the origin identity of the event. For property sources
	// this is the mutated object; for named-event sources it is the
	// poster-supplied sender, which may be nil.
	Sender any

	// Name is the property path or event identifier that matched.
	Name string

	// Value is the new property value or the event payload.
	Value any

	// Time is when the source emitted the event.
	Time utc.Time
}

// Handler receives matching events from a source.
type Handler func(Event)

// Selector identifies what to watch on a source: a property path or a
// named-event identifier, plus an optional sender filter.
type Selector struct {
	// Name is the property path or event identifier.
	Name string

	// Sender, when non-nil, restricts delivery to events whose origin
	// is this identity. Comparison is by identity (same pointer, same
	// comparable value), never by deep equality of payloads.
	Sender any
}

// Property returns a selector for a property path.
func Property(name string) Selector {
	return Selector{Name: name}
}

// Named returns a selector for a named event.
func Named(name string) Selector {
	return Selector{Name: name}
}

// From returns a copy of the selector restricted to events originating
// from the given sender.
func (s Selector) From(sender any) Selector {
	s.Sender = sender
	return s
}

// Matches reports whether an event from the given sender passes the
// selector's sender filter. A selector without a sender filter matches
// every origin.
func (s Selector) Matches(sender any) bool {
	if s.Sender == nil {
		return true
	}
	return SameSender(s.Sender, sender)
}

// Registration is the live subscription handle returned by a source.
// Its presence means events are currently being delivered.
type Registration interface {
	// Unregister cancels delivery. Idempotent.
	Unregister()
}

// UnregisterFunc adapts a plain function to the Registration interface.
type UnregisterFunc func()

// Unregister implements Registration.
func (f UnregisterFunc) Unregister() { f() }

// Source is the capability the watch core consumes from every concrete
// event source adapter.
type Source interface {
	// Register begins delivering events matching the selector to the
	// handler. It fails with an error satisfying
	// errors.IsSourceInvalid when the source cannot be observed with
	// the selector. A selector the source cannot statically validate
	// (such as an event name that is never posted) registers
	// successfully and simply never fires.
	Register(sel Selector, h Handler) (Registration, error)
}

// SameSender reports whether two values are the same identity.
// Pointer-like values (pointers, channels, maps, functions, slices)
// compare by address; comparable values compare with ==; anything else
// is never the same identity.
func SameSender(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if isPointerLike(av.Kind()) || isPointerLike(bv.Kind()) {
		if av.Kind() != bv.Kind() {
			return false
		}
		return av.Pointer() == bv.Pointer()
	}
	if !av.Type().Comparable() || !bv.Type().Comparable() {
		return false
	}
	return a == b
}

func isPointerLike(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

package eventbus

import (
	"context"
	"reflect"
)

// Event is the message dispatched by a Publisher.
//
// Every event variant embeds Base, which carries the type name and sender.
// Variants add their own fields and are published by pointer so handlers
// receive the original instance:
//
//	type Ping struct {
//	    eventbus.Base
//	    Seq int
//	}
//
//	pub.Publish(ctx, "net.ping", &Ping{Seq: 7})
type Event interface {
	// Type returns the event type name assigned by the publisher or the constructor.
	Type() string

	// Sender returns the originator of the event, or nil.
	Sender() any

	setType(eventType string)
}

// Base provides the identity shared by all events.
// The zero value is an untyped event with no sender.
type Base struct {
	eventType string
	sender    any
}

// NewEvent creates an untyped event. The type is assigned when it is published.
func NewEvent(sender any) *Base {
	return &Base{sender: sender}
}

// NewTypedEvent creates an event with its type already set.
// Publishing it under a different type replaces the preset one.
func NewTypedEvent(eventType string, sender any) *Base {
	return &Base{eventType: eventType, sender: sender}
}

// Type returns the event type.
func (b *Base) Type() string {
	return b.eventType
}

// Sender returns the originator.
func (b *Base) Sender() any {
	return b.sender
}

// SetSender sets the originator. Call it before publishing.
func (b *Base) SetSender(sender any) {
	b.sender = sender
}

func (b *Base) setType(eventType string) {
	b.eventType = eventType
}

// isNil reports whether v is nil, including typed nil pointers and funcs
// stored in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// Handler processes a dispatched event.
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt Event) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Source is anything handlers can subscribe to by event type.
// Both Publisher and QueuedPublisher implement it, so queued publishers can
// be stacked on top of each other.
type Source interface {
	Subscribe(eventType string, handler Handler) (*Subscription, error)
}

package eventbus_test

import (
	"context"
	"sync"

	"github.com/randalmurphal/eventbus/pkg/eventbus"
)

// receiver records every event it is handed.
type receiver struct {
	mu     sync.Mutex
	calls  int
	etype  string
	sender any
	last   eventbus.Event
	types  []string
}

func (r *receiver) Handle(_ context.Context, evt eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.etype = evt.Type()
	r.sender = evt.Sender()
	r.last = evt
	r.types = append(r.types, evt.Type())
	return nil
}

func (r *receiver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// payloadEvent is an event variant carrying an extra field.
type payloadEvent struct {
	eventbus.Base
	SomeValue int
}

func newPayloadEvent() *payloadEvent {
	return &payloadEvent{SomeValue: 10}
}

// orderRecorder returns a handler that appends name to *order.
func orderRecorder(mu *sync.Mutex, order *[]string, name string) eventbus.HandlerFunc {
	return func(_ context.Context, _ eventbus.Event) error {
		mu.Lock()
		defer mu.Unlock()
		*order = append(*order, name)
		return nil
	}
}

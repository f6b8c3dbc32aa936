// Package eventbus provides a synchronous, in-process event bus routed by
// event type name, and a queued publisher that defers delivery until the
// consumer asks for it.
//
// # Events
//
// Events embed Base, which carries the type name and sender. Variants add
// their own fields and are published by pointer; handlers receive the
// original instance:
//
//	type Resized struct {
//	    eventbus.Base
//	    Width, Height int
//	}
//
//	pub.SubscribeFunc("window.resized", func(ctx context.Context, evt eventbus.Event) error {
//	    r := evt.(*Resized)
//	    ...
//	})
//	pub.Publish(ctx, "window.resized", &Resized{Width: 800, Height: 600})
//
// The type passed to Publish is always assigned to the event, replacing any
// type it already had.
//
// # Publisher
//
// Publish invokes the handlers registered for the type, in registration
// order, on the caller's goroutine. Every handler runs; failures are
// collected into a *DispatchError returned once the fan-out is complete.
// Handler panics are recovered into *PanicError unless WithPanicRecovery(false).
//
// Subscribe returns a *Subscription handle. Unsubscribe removes exactly that
// registration, so duplicate registrations of one handler are independent.
//
// # QueuedPublisher
//
// A QueuedPublisher subscribes itself on an upstream Source for each type
// its own subscribers ask for, appends captured events to a queue, and
// delivers them when PublishEvents is called:
//
//	bus := eventbus.NewPublisher()
//	frame, _ := eventbus.NewQueuedPublisher(bus)
//	frame.SubscribeFunc("input.key", onKey)
//
//	go producer(bus) // publishes from any goroutine
//
//	for range ticker.C {
//	    if err := frame.PublishEvents(ctx); err != nil {
//	        log.Println(err)
//	    }
//	}
//
// Capture and flush may run on different goroutines. A flush swaps the queue
// out under a lock, so each captured event is delivered exactly once, in
// arrival order.
//
// # Observability
//
// WithLogger, WithMetrics, and WithTracing enable slog logging and
// OpenTelemetry metrics and spans. See the observability package.
package eventbus

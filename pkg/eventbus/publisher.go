package eventbus

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/eventbus/pkg/eventbus/observability"
)

// entry pairs a handler with the subscription that registered it.
type entry struct {
	sub     *Subscription
	handler Handler
}

// Publisher is a synchronous event dispatcher. Handlers are registered per
// event type and invoked in registration order on the publishing goroutine.
//
// Publisher is safe for concurrent use. Handlers may subscribe, unsubscribe,
// and publish from inside a dispatch; registry changes apply to later
// Publish calls.
type Publisher struct {
	config publisherConfig

	mu sync.RWMutex
	// handlers is copy-on-write: slices handed out to dispatches are
	// never modified in place.
	handlers map[string][]entry
}

// NewPublisher creates an empty publisher.
func NewPublisher(opts ...Option) *Publisher {
	return &Publisher{
		config:   newPublisherConfig(opts),
		handlers: make(map[string][]entry),
	}
}

// Name returns the name set with WithName.
func (p *Publisher) Name() string {
	return p.config.name
}

// Subscribe appends handler to the list for eventType. Handlers are not
// de-duplicated.
func (p *Publisher) Subscribe(eventType string, handler Handler) (*Subscription, error) {
	if eventType == "" {
		return nil, ErrEmptyEventType
	}
	if isNil(handler) {
		return nil, ErrNilHandler
	}

	sub := newSubscription(p, eventType)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[eventType] = append(p.handlers[eventType], entry{sub: sub, handler: handler})
	return sub, nil
}

// SubscribeFunc is Subscribe for a plain function.
func (p *Publisher) SubscribeFunc(eventType string, fn func(ctx context.Context, evt Event) error) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return p.Subscribe(eventType, HandlerFunc(fn))
}

func (p *Publisher) remove(sub *Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.handlers[sub.eventType]
	for i, e := range current {
		if e.sub != sub {
			continue
		}
		if len(current) == 1 {
			delete(p.handlers, sub.eventType)
			return
		}
		next := make([]entry, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		p.handlers[sub.eventType] = next
		return
	}
}

// Publish assigns eventType to evt and invokes every handler subscribed to
// eventType, in registration order, passing the same evt to each.
//
// The eventType argument always wins: a different type preset on evt is
// replaced (and logged as a warning).
//
// Every handler runs even when an earlier one fails. If any failed, the
// returned error is a *DispatchError listing each failure. Publishing a type
// nobody subscribed to is not an error.
//
// ctx is handed to handlers and carries trace and log values. Dispatch does
// not stop when ctx is cancelled.
func (p *Publisher) Publish(ctx context.Context, eventType string, evt Event) error {
	if eventType == "" {
		return ErrEmptyEventType
	}
	if isNil(evt) {
		return ErrNilEvent
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Events re-published from a queue already carry eventType and may be
	// shared with other consumers, so they are only written on change.
	if prev := evt.Type(); prev != eventType {
		if prev != "" {
			observability.LogTypeOverwrite(p.config.logger, prev, eventType)
		}
		evt.setType(eventType)
	}

	p.mu.RLock()
	entries := p.handlers[eventType]
	p.mu.RUnlock()

	p.config.metrics.RecordPublish(ctx, p.config.name, eventType, len(entries))
	if len(entries) == 0 {
		return nil
	}

	ctx, span := p.config.spans.StartPublishSpan(ctx, p.config.name, eventType, len(entries))

	var failures []*HandlerError
	for i, e := range entries {
		err := p.invoke(ctx, eventType, e, evt)
		if err == nil {
			continue
		}
		failures = append(failures, &HandlerError{
			EventType:      eventType,
			SubscriptionID: e.sub.id,
			Index:          i,
			Err:            err,
		})
		if _, panicked := err.(*PanicError); !panicked {
			observability.LogHandlerError(p.config.logger, eventType, e.sub.id, err)
		}
		p.config.spans.AddSpanEvent(ctx, "handler.failed",
			attribute.Int64("subscription.id", int64(e.sub.id)),
			attribute.String("error", err.Error()),
		)
	}

	var err error
	if len(failures) > 0 {
		err = &DispatchError{EventType: eventType, Failures: failures}
	}
	p.config.spans.EndSpanWithError(span, err)
	return err
}

// invoke runs one handler, converting a panic into *PanicError when
// recovery is enabled.
func (p *Publisher) invoke(ctx context.Context, eventType string, e entry, evt Event) (err error) {
	start := time.Now()
	defer func() {
		p.config.metrics.RecordHandler(ctx, p.config.name, eventType, time.Since(start), err)
	}()

	if p.config.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				observability.LogHandlerPanic(p.config.logger, eventType, e.sub.id, r, stack)
				err = &PanicError{Value: r, Stack: stack}
			}
		}()
	}

	return e.handler.Handle(ctx, evt)
}

// SubscriberCount returns the number of subscriptions for eventType.
func (p *Publisher) SubscriberCount(eventType string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers[eventType])
}

// EventTypes returns the event types with at least one subscription, sorted.
func (p *Publisher) EventTypes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	types := make([]string, 0, len(p.handlers))
	for t := range p.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// String implements fmt.Stringer.
func (p *Publisher) String() string {
	if p.config.name == "" {
		return "eventbus.Publisher"
	}
	return fmt.Sprintf("eventbus.Publisher(%s)", p.config.name)
}

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/eventbus/pkg/eventbus/observability"
)

// QueuedPublisher buffers events from an upstream Source until the consumer
// calls PublishEvents. Capturing happens on the producer's goroutine inside
// the upstream Publish; delivery happens on whichever goroutine flushes.
//
//	queue, _ := eventbus.NewQueuedPublisher(bus)
//	queue.Subscribe("frame.input", handler)
//
//	// once per tick
//	if err := queue.PublishEvents(ctx); err != nil { ... }
type QueuedPublisher struct {
	upstream Source
	internal *Publisher
	config   publisherConfig

	// regMu serializes Subscribe and Close.
	regMu    sync.Mutex
	captures map[string]*Subscription // event type -> capture subscription on upstream
	closed   atomic.Bool

	mu    sync.Mutex
	queue []Event
}

// NewQueuedPublisher creates a queue listening to upstream. No event types
// are captured until the first Subscribe for each type.
func NewQueuedPublisher(upstream Source, opts ...Option) (*QueuedPublisher, error) {
	if isNil(upstream) {
		return nil, ErrNilUpstream
	}
	return &QueuedPublisher{
		upstream: upstream,
		internal: NewPublisher(opts...),
		config:   newPublisherConfig(opts),
		captures: make(map[string]*Subscription),
	}, nil
}

// Subscribe registers handler for eventType on this queue. The first
// subscription for a type also starts capturing that type on upstream.
// The returned subscription detaches only the handler; capture continues.
func (q *QueuedPublisher) Subscribe(eventType string, handler Handler) (*Subscription, error) {
	q.regMu.Lock()
	defer q.regMu.Unlock()

	if q.closed.Load() {
		return nil, ErrClosed
	}

	sub, err := q.internal.Subscribe(eventType, handler)
	if err != nil {
		return nil, err
	}

	if _, ok := q.captures[eventType]; ok {
		return sub, nil
	}

	capture, err := q.upstream.Subscribe(eventType, HandlerFunc(q.capture))
	if err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("capture %s on upstream: %w", eventType, err)
	}
	q.captures[eventType] = capture
	return sub, nil
}

// SubscribeFunc is Subscribe for a plain function.
func (q *QueuedPublisher) SubscribeFunc(eventType string, fn func(ctx context.Context, evt Event) error) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return q.Subscribe(eventType, HandlerFunc(fn))
}

// capture appends evt to the queue. It never invokes downstream handlers.
func (q *QueuedPublisher) capture(ctx context.Context, evt Event) error {
	if q.closed.Load() {
		return nil
	}

	// Once queued, evt may be flushed on another goroutine.
	eventType := evt.Type()

	q.mu.Lock()
	q.queue = append(q.queue, evt)
	pending := len(q.queue)
	q.mu.Unlock()

	q.config.metrics.RecordCapture(ctx, q.config.name, eventType)
	observability.LogCapture(q.config.logger, eventType, pending)
	return nil
}

// PublishEvents delivers every event captured before the call, in arrival
// order, to this queue's subscribers. The queue is swapped for an empty one
// first, so events captured while handlers run belong to the next flush.
//
// A failing event does not stop the flush. The returned error joins the
// *DispatchError of every event that had failing handlers.
func (q *QueuedPublisher) PublishEvents(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	q.mu.Lock()
	events := q.queue
	q.queue = nil
	q.mu.Unlock()

	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	done := observability.TimedOperation()
	ctx, span := q.config.spans.StartFlushSpan(ctx, q.config.name, len(events))

	var errs []error
	for _, evt := range events {
		if err := q.internal.Publish(ctx, evt.Type(), evt); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)

	q.config.spans.EndSpanWithError(span, err)
	q.config.metrics.RecordFlush(ctx, q.config.name, len(events), time.Since(start))
	observability.LogFlush(q.config.logger, len(events), done(), err)
	return err
}

// Pending returns the number of captured events awaiting PublishEvents.
func (q *QueuedPublisher) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// SubscriberCount returns the number of queue subscriptions for eventType.
func (q *QueuedPublisher) SubscriberCount(eventType string) int {
	return q.internal.SubscriberCount(eventType)
}

// CapturedTypes returns the event types captured on upstream, sorted.
func (q *QueuedPublisher) CapturedTypes() []string {
	q.regMu.Lock()
	defer q.regMu.Unlock()

	types := make([]string, 0, len(q.captures))
	for t := range q.captures {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Name returns the name set with WithName.
func (q *QueuedPublisher) Name() string {
	return q.config.name
}

// Close stops capturing on upstream. Events already queued stay available
// to PublishEvents. Subscribe fails with ErrClosed afterwards.
func (q *QueuedPublisher) Close() error {
	q.regMu.Lock()
	defer q.regMu.Unlock()

	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	for eventType, capture := range q.captures {
		capture.Unsubscribe()
		delete(q.captures, eventType)
	}
	return nil
}

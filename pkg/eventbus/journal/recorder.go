package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/eventbus/pkg/eventbus"
)

// NewEntry snapshots evt. The payload is the JSON encoding of the event's
// exported fields; Base itself contributes nothing to it.
func NewEntry(evt eventbus.Event) (Entry, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return Entry{}, fmt.Errorf("encode %s payload: %w", evt.Type(), err)
	}
	return Entry{
		EventType: evt.Type(),
		Sender:    senderString(evt.Sender()),
		Payload:   payload,
	}, nil
}

func senderString(sender any) string {
	if sender == nil {
		return ""
	}
	return fmt.Sprint(sender)
}

// Recorder returns a handler that appends every event it receives to store.
func Recorder(store Store) eventbus.Handler {
	return eventbus.HandlerFunc(func(ctx context.Context, evt eventbus.Event) error {
		e, err := NewEntry(evt)
		if err != nil {
			return err
		}
		if _, err := store.Append(ctx, e); err != nil {
			return fmt.Errorf("journal %s: %w", evt.Type(), err)
		}
		return nil
	})
}

// Attach subscribes a Recorder for each event type on src. On failure,
// subscriptions made so far are removed.
func Attach(src eventbus.Source, store Store, eventTypes ...string) ([]*eventbus.Subscription, error) {
	rec := Recorder(store)
	subs := make([]*eventbus.Subscription, 0, len(eventTypes))
	for _, t := range eventTypes {
		sub, err := src.Subscribe(t, rec)
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return nil, fmt.Errorf("attach journal to %q: %w", t, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

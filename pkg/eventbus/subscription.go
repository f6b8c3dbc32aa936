package eventbus

import "sync/atomic"

// subscriptionIDs is shared by all publishers so ids are unique per process.
var subscriptionIDs atomic.Uint64

// Subscription is the handle returned by Subscribe.
// It identifies exactly one registry entry, so the same handler subscribed
// twice yields two independent subscriptions.
type Subscription struct {
	id        uint64
	eventType string
	pub       *Publisher
	removed   atomic.Bool
}

func newSubscription(pub *Publisher, eventType string) *Subscription {
	return &Subscription{
		id:        subscriptionIDs.Add(1),
		eventType: eventType,
		pub:       pub,
	}
}

// ID returns the process-unique subscription id.
func (s *Subscription) ID() uint64 {
	return s.id
}

// EventType returns the event type this subscription listens to.
func (s *Subscription) EventType() string {
	return s.eventType
}

// Active reports whether the subscription is still registered.
func (s *Subscription) Active() bool {
	return !s.removed.Load()
}

// Unsubscribe removes this entry from its publisher without disturbing the
// order of the others. It returns false if the entry was already removed.
// A dispatch already in progress still delivers to the removed handler.
func (s *Subscription) Unsubscribe() bool {
	if s == nil || !s.removed.CompareAndSwap(false, true) {
		return false
	}
	s.pub.remove(s)
	return true
}

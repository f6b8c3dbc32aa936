package journal_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventbus/pkg/eventbus"
	"github.com/randalmurphal/eventbus/pkg/eventbus/journal"
)

type keyPressed struct {
	eventbus.Base
	Key  string `json:"key"`
	Held bool   `json:"held"`
}

func TestNewEntry(t *testing.T) {
	evt := &keyPressed{Key: "q"}
	evt.SetSender("keyboard")

	pub := eventbus.NewPublisher()
	var entry journal.Entry
	_, err := pub.SubscribeFunc("input.key", func(_ context.Context, e eventbus.Event) error {
		var err error
		entry, err = journal.NewEntry(e)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), "input.key", evt))

	assert.Equal(t, "input.key", entry.EventType)
	assert.Equal(t, "keyboard", entry.Sender)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(entry.Payload, &decoded))
	assert.Equal(t, map[string]any{"key": "q", "held": false}, decoded)
}

func TestNewEntry_NilSender(t *testing.T) {
	entry, err := journal.NewEntry(eventbus.NewTypedEvent("tick", nil))
	require.NoError(t, err)
	assert.Empty(t, entry.Sender)
	assert.JSONEq(t, `{}`, string(entry.Payload))
}

type unencodable struct {
	eventbus.Base
	Ch chan int
}

func TestNewEntry_EncodeError(t *testing.T) {
	_, err := journal.NewEntry(&unencodable{Ch: make(chan int)})
	assert.Error(t, err)
}

func TestAttach_RecordsDeliveredEvents(t *testing.T) {
	ctx := context.Background()
	pub := eventbus.NewPublisher()
	store := journal.NewMemoryStore()

	subs, err := journal.Attach(pub, store, "input.key", "frame")
	require.NoError(t, err)
	require.Len(t, subs, 2)

	require.NoError(t, pub.Publish(ctx, "input.key", &keyPressed{Key: "a"}))
	require.NoError(t, pub.Publish(ctx, "frame", eventbus.NewEvent(nil)))
	require.NoError(t, pub.Publish(ctx, "ignored", eventbus.NewEvent(nil)))

	entries, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "input.key", entries[0].EventType)
	assert.Equal(t, "frame", entries[1].EventType)

	for _, s := range subs {
		s.Unsubscribe()
	}
	require.NoError(t, pub.Publish(ctx, "frame", eventbus.NewEvent(nil)))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAttach_QueuedPublisherRecordsOnFlush(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.NewPublisher()
	queue, err := eventbus.NewQueuedPublisher(bus)
	require.NoError(t, err)
	defer queue.Close()

	store := journal.NewMemoryStore()
	_, err = journal.Attach(queue, store, "frame")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "frame", eventbus.NewEvent(nil)))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "queued events are not journaled until delivered")

	require.NoError(t, queue.PublishEvents(ctx))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAttach_RollsBackOnError(t *testing.T) {
	pub := eventbus.NewPublisher()
	store := journal.NewMemoryStore()

	_, err := journal.Attach(pub, store, "ok", "")
	require.ErrorIs(t, err, eventbus.ErrEmptyEventType)
	assert.Equal(t, 0, pub.SubscriberCount("ok"))
}

func TestRecorder_StoreFailureSurfacesAsDispatchError(t *testing.T) {
	ctx := context.Background()
	pub := eventbus.NewPublisher()
	store := journal.NewMemoryStore()
	require.NoError(t, store.Close())

	_, err := pub.Subscribe("tick", journal.Recorder(store))
	require.NoError(t, err)

	err = pub.Publish(ctx, "tick", eventbus.NewEvent(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, journal.ErrStoreClosed))

	var dispatchErr *eventbus.DispatchError
	assert.ErrorAs(t, err, &dispatchErr)
}

package benchmarks

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/randalmurphal/eventbus/pkg/eventbus"
)

type benchEvent struct {
	eventbus.Base
	Seq int
}

func noop(context.Context, eventbus.Event) error { return nil }

func newBus(b *testing.B, handlers int) *eventbus.Publisher {
	b.Helper()
	bus := eventbus.NewPublisher()
	for i := 0; i < handlers; i++ {
		if _, err := bus.SubscribeFunc("bench", noop); err != nil {
			b.Fatal(err)
		}
	}
	return bus
}

// BenchmarkPublish measures synchronous fan-out by handler count.
func BenchmarkPublish(b *testing.B) {
	for _, n := range []int{0, 1, 10, 100} {
		b.Run(fmt.Sprintf("handlers=%d", n), func(b *testing.B) {
			bus := newBus(b, n)
			ctx := context.Background()
			evt := &benchEvent{}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = bus.Publish(ctx, "bench", evt)
			}
		})
	}
}

// BenchmarkPublish_Parallel measures publish contention on one registry.
func BenchmarkPublish_Parallel(b *testing.B) {
	bus := newBus(b, 10)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		evt := &benchEvent{}
		for pb.Next() {
			_ = bus.Publish(ctx, "bench", evt)
		}
	})
}

// BenchmarkPublish_WithChurn measures publish while other goroutines
// subscribe and unsubscribe.
func BenchmarkPublish_WithChurn(b *testing.B) {
	bus := newBus(b, 10)
	ctx := context.Background()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				sub, err := bus.SubscribeFunc("bench", noop)
				if err == nil {
					sub.Unsubscribe()
				}
			}
		}
	}()

	evt := &benchEvent{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Publish(ctx, "bench", evt)
	}
	b.StopTimer()
	close(stop)
	wg.Wait()
}

// BenchmarkQueuedPublisher_Flush measures capture plus a flush of 100 events.
func BenchmarkQueuedPublisher_Flush(b *testing.B) {
	bus := eventbus.NewPublisher()
	queue, err := eventbus.NewQueuedPublisher(bus)
	if err != nil {
		b.Fatal(err)
	}
	defer queue.Close()
	for i := 0; i < 5; i++ {
		if _, err := queue.SubscribeFunc("bench", noop); err != nil {
			b.Fatal(err)
		}
	}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 100; j++ {
			_ = bus.Publish(ctx, "bench", &benchEvent{Seq: j})
		}
		_ = queue.PublishEvents(ctx)
	}
}

package engine

import (
	"context"
	"testing"
	"time"

	"crewkit/core"
)

func TestEventBusSync(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	bus.Subscribe(core.EventBadgeUnlocked, func(ctx context.Context, e core.Event) { count++ })
	bus.Publish(context.Background(), core.NewBadgeUnlocked(core.UserID("u"), "explorer"))
	if count != 1 {
		t.Fatalf("want 1 got %d", count)
	}
}

func TestEventBusAsync(t *testing.T) {
	bus := NewEventBus(DispatchAsync)
	defer bus.Close()
	ch := make(chan struct{})
	bus.Subscribe(core.EventRankUp, func(ctx context.Context, e core.Event) { close(ch) })
	bus.Publish(context.Background(), core.NewRankUp(core.UserID("u"), "Captain", 300))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	off := bus.Subscribe(core.EventScoreRecomputed, func(ctx context.Context, e core.Event) { count++ })
	off()
	bus.Publish(context.Background(), core.NewScoreRecomputed(core.UserID("u"), 50, "Navigator", 20))
	if count != 0 {
		t.Fatalf("want 0 got %d", count)
	}
}

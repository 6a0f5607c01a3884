package stream

import (
	"context"
	"testing"
	"time"

	"github.com/mmynk/splitparty/internal/models"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	ctx := context.Background()

	sub1, err := bus.Subscribe(ctx, "bill-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub1.Close()

	sub2, err := bus.Subscribe(ctx, "bill-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub2.Close()

	other, err := bus.Subscribe(ctx, "bill-2")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer other.Close()

	ev := models.ItemEvent(models.OpInsert, models.Item{ID: 1, Description: "Pizza", Amount: 25})
	if err := bus.Publish(ctx, "bill-1", ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for i, sub := range []Subscription{sub1, sub2} {
		select {
		case got := <-sub.Events():
			if got.Entity != models.EntityItem || got.Op != models.OpInsert {
				t.Errorf("subscriber %d got %v/%v, want item/insert", i, got.Entity, got.Op)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive the event", i)
		}
	}

	select {
	case got := <-other.Events():
		t.Errorf("subscriber of another bill received %v/%v", got.Entity, got.Op)
	default:
	}
}

func TestBusSubscriptionClose(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "bill-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	// Channel must be closed after unsubscribe.
	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("expected closed events channel")
		}
	case <-time.After(time.Second):
		t.Error("events channel not closed after Close")
	}

	// Publishing after unsubscribe must not panic or deliver.
	if err := bus.Publish(ctx, "bill-1", models.ChangeEvent{Entity: models.EntityItem, Op: models.OpInsert}); err != nil {
		t.Fatalf("Publish after unsubscribe failed: %v", err)
	}
}

func TestBusSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "bill-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	// Overflow the buffer without draining; Publish must never block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < defaultBufferSize*2; i++ {
			bus.Publish(ctx, "bill-1", models.ChangeEvent{Entity: models.EntityClaim, Op: models.OpInsert})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

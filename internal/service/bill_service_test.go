package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/splitparty/internal/models"
	"github.com/mmynk/splitparty/internal/receipt"
	"github.com/mmynk/splitparty/internal/storage"
	"github.com/mmynk/splitparty/internal/storage/sqlite"
	"github.com/mmynk/splitparty/internal/stream"
)

func newTestService(t *testing.T) (*BillService, *stream.Bus) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	bus := stream.NewBus()
	t.Cleanup(func() { bus.Close() })

	return NewBillService(store, bus), bus
}

func waitEvent(t *testing.T, sub stream.Subscription) models.ChangeEvent {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return models.ChangeEvent{}
	}
}

func TestWritesPublishEvents(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	bill := &models.Bill{Restaurant: "Pasta Palace", Tax: 5.39, Tip: 10}
	if err := svc.CreateBill(ctx, bill, []models.Item{{Description: "Pizza", Amount: 14.99}}); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	sub, err := bus.Subscribe(ctx, bill.ID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	p, err := svc.JoinBill(ctx, bill.ID, "Alice", "")
	if err != nil {
		t.Fatalf("JoinBill failed: %v", err)
	}
	if ev := waitEvent(t, sub); ev.Entity != models.EntityParticipant || ev.Op != models.OpInsert {
		t.Errorf("join published %v/%v, want participant/insert", ev.Entity, ev.Op)
	}

	item, err := svc.AddItem(ctx, bill.ID, "Tiramisu", 7.99, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if ev := waitEvent(t, sub); ev.Entity != models.EntityItem || ev.Op != models.OpInsert {
		t.Errorf("add item published %v/%v, want item/insert", ev.Entity, ev.Op)
	}

	if err := svc.SetClaim(ctx, bill.ID, p.ID, item.ID, true); err != nil {
		t.Fatalf("SetClaim failed: %v", err)
	}
	if ev := waitEvent(t, sub); ev.Entity != models.EntityClaim || ev.Op != models.OpInsert {
		t.Errorf("claim published %v/%v, want claim/insert", ev.Entity, ev.Op)
	}

	if err := svc.SetClaim(ctx, bill.ID, p.ID, item.ID, false); err != nil {
		t.Fatalf("SetClaim(false) failed: %v", err)
	}
	if ev := waitEvent(t, sub); ev.Entity != models.EntityClaim || ev.Op != models.OpUpdate {
		t.Errorf("unclaim published %v/%v, want claim/update", ev.Entity, ev.Op)
	}

	if err := svc.RemoveClaim(ctx, bill.ID, p.ID, item.ID); err != nil {
		t.Fatalf("RemoveClaim failed: %v", err)
	}
	if ev := waitEvent(t, sub); ev.Op != models.OpDelete {
		t.Errorf("remove claim published op %v, want delete", ev.Op)
	}
}

func TestSeedFromReceipt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tax, tip := 5.39, 10.0
	bill, err := svc.SeedFromReceipt(ctx, &receipt.Receipt{
		Restaurant: "Pasta Palace",
		Tax:        &tax,
		Tip:        &tip,
		Items: []receipt.Item{
			{Name: "Spaghetti Carbonara", Price: 16.99},
			{Name: "Margherita Pizza", Price: 14.99},
		},
	})
	if err != nil {
		t.Fatalf("SeedFromReceipt failed: %v", err)
	}

	snap, err := svc.GetSnapshot(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snap.Bill.Restaurant != "Pasta Palace" || snap.Bill.Tax != 5.39 || snap.Bill.Tip != 10 {
		t.Errorf("seeded bill = %+v", snap.Bill)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(snap.Items))
	}
}

func TestValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bill := &models.Bill{Restaurant: "Diner"}
	if err := svc.CreateBill(ctx, bill, nil); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	if _, err := svc.JoinBill(ctx, bill.ID, "", ""); err == nil {
		t.Error("join with empty name should fail")
	}
	if _, err := svc.AddItem(ctx, bill.ID, "Soup", -1, 1); err == nil {
		t.Error("negative amount should fail")
	}
	tax := -0.5
	if _, err := svc.UpdateBill(ctx, bill.ID, storage.BillUpdate{Tax: &tax}); err == nil {
		t.Error("negative tax should fail")
	}
}

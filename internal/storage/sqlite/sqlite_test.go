package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitparty/internal/models"
	"github.com/mmynk/splitparty/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(dbPath)
	})
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateBill generates ids", func(t *testing.T) {
		bill := &models.Bill{Restaurant: "Pasta Palace", Tax: 5.39, Tip: 10}
		items := []models.Item{
			{Description: "Spaghetti Carbonara", Amount: 16.99},
			{Description: "Margherita Pizza", Amount: 14.99},
		}

		if err := store.CreateBill(ctx, bill, items); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.Status != models.StatusActive {
			t.Errorf("Status = %q, want active", bill.Status)
		}
		if bill.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		for i, item := range items {
			if item.ID == 0 {
				t.Errorf("item %d: expected ID to be assigned", i)
			}
			if item.Quantity != 1 {
				t.Errorf("item %d: quantity = %d, want default 1", i, item.Quantity)
			}
		}
	})

	t.Run("GetSnapshot returns complete initial state", func(t *testing.T) {
		bill := &models.Bill{Restaurant: "Taco Stand", Tax: 3, Tip: 4}
		items := []models.Item{
			{Description: "Tacos", Amount: 12},
			{Description: "Horchata", Amount: 4},
		}
		if err := store.CreateBill(ctx, bill, items); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		alice, err := store.InsertParticipant(ctx, bill.ID, "Alice", "alice@example.com")
		if err != nil {
			t.Fatalf("InsertParticipant failed: %v", err)
		}
		bob, err := store.InsertParticipant(ctx, bill.ID, "Bob", "")
		if err != nil {
			t.Fatalf("InsertParticipant failed: %v", err)
		}

		if err := store.UpsertClaim(ctx, alice.ID, items[0].ID, true); err != nil {
			t.Fatalf("UpsertClaim failed: %v", err)
		}
		if err := store.UpsertClaim(ctx, bob.ID, items[0].ID, true); err != nil {
			t.Fatalf("UpsertClaim failed: %v", err)
		}
		// Soft-removed claims must not show up in the snapshot.
		if err := store.UpsertClaim(ctx, bob.ID, items[1].ID, true); err != nil {
			t.Fatalf("UpsertClaim failed: %v", err)
		}
		if err := store.UpsertClaim(ctx, bob.ID, items[1].ID, false); err != nil {
			t.Fatalf("UpsertClaim failed: %v", err)
		}

		snap, err := store.GetSnapshot(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetSnapshot failed: %v", err)
		}
		if snap.Bill.Restaurant != "Taco Stand" {
			t.Errorf("restaurant = %q, want Taco Stand", snap.Bill.Restaurant)
		}
		if len(snap.Items) != 2 {
			t.Fatalf("got %d items, want 2", len(snap.Items))
		}
		if len(snap.Participants) != 2 {
			t.Fatalf("got %d participants, want 2", len(snap.Participants))
		}
		if got := snap.Claims.SharingCount(items[0].ID); got != 2 {
			t.Errorf("SharingCount(tacos) = %d, want 2", got)
		}
		if snap.Claims.IsClaimed(bob.ID, items[1].ID) {
			t.Error("soft-removed claim must read as not claimed")
		}
	})

	t.Run("GetSnapshot unknown bill", func(t *testing.T) {
		_, err := store.GetSnapshot(ctx, "no-such-bill")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestUpsertClaimToggle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := &models.Bill{Restaurant: "Diner"}
	items := []models.Item{{Description: "Pancakes", Amount: 9}}
	if err := store.CreateBill(ctx, bill, items); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	p, err := store.InsertParticipant(ctx, bill.ID, "Alice", "")
	if err != nil {
		t.Fatalf("InsertParticipant failed: %v", err)
	}

	// true -> false -> true on the same row must upsert, not duplicate.
	for _, selected := range []bool{true, false, true} {
		if err := store.UpsertClaim(ctx, p.ID, items[0].ID, selected); err != nil {
			t.Fatalf("UpsertClaim(%v) failed: %v", selected, err)
		}
	}

	snap, err := store.GetSnapshot(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if !snap.Claims.IsClaimed(p.ID, items[0].ID) {
		t.Error("claim should be selected after final upsert")
	}
	if snap.Claims.Len() != 1 {
		t.Errorf("claims = %d pairs, want 1", snap.Claims.Len())
	}
}

func TestDeleteClaim(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := &models.Bill{Restaurant: "Diner"}
	items := []models.Item{{Description: "Pancakes", Amount: 9}}
	if err := store.CreateBill(ctx, bill, items); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	p, err := store.InsertParticipant(ctx, bill.ID, "Alice", "")
	if err != nil {
		t.Fatalf("InsertParticipant failed: %v", err)
	}

	if err := store.UpsertClaim(ctx, p.ID, items[0].ID, true); err != nil {
		t.Fatalf("UpsertClaim failed: %v", err)
	}
	if err := store.DeleteClaim(ctx, p.ID, items[0].ID); err != nil {
		t.Fatalf("DeleteClaim failed: %v", err)
	}
	// Deleting an absent row is a no-op, not an error.
	if err := store.DeleteClaim(ctx, p.ID, items[0].ID); err != nil {
		t.Fatalf("DeleteClaim of absent row failed: %v", err)
	}

	snap, err := store.GetSnapshot(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snap.Claims.Len() != 0 {
		t.Error("deleted claim must not appear in the snapshot")
	}
}

func TestUpdateItemAndBill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := &models.Bill{Restaurant: "Old Name", Tax: 1, Tip: 2}
	items := []models.Item{{Description: "Soup", Amount: 6}}
	if err := store.CreateBill(ctx, bill, items); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	desc := "French Onion Soup"
	amount := 7.5
	item, err := store.UpdateItem(ctx, items[0].ID, storage.ItemUpdate{Description: &desc, Amount: &amount})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if item.Description != desc || item.Amount != amount {
		t.Errorf("updated item = %+v", *item)
	}
	if item.Quantity != 1 {
		t.Error("partial update must not clobber quantity")
	}

	_, err = store.UpdateItem(ctx, 9999, storage.ItemUpdate{Description: &desc})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateItem unknown id error = %v, want ErrNotFound", err)
	}

	tip := 5.0
	updated, err := store.UpdateBill(ctx, bill.ID, storage.BillUpdate{Tip: &tip})
	if err != nil {
		t.Fatalf("UpdateBill failed: %v", err)
	}
	if updated.Tip != 5 || updated.Tax != 1 || updated.Restaurant != "Old Name" {
		t.Errorf("partial bill update produced %+v", *updated)
	}
}

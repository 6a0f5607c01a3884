// Package service coordinates storage writes with change-event publication.
//
// Every successful mutation is published to the bill's stream topic so that
// all subscribed sessions converge on it. Reads come straight from storage;
// the resulting state of a write reaches clients only through the stream.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitparty/internal/models"
	"github.com/mmynk/splitparty/internal/receipt"
	"github.com/mmynk/splitparty/internal/storage"
	"github.com/mmynk/splitparty/internal/stream"
)

// BillService owns all bill mutations: it writes through the Store and
// publishes the corresponding change event for each write.
type BillService struct {
	store storage.Store
	pub   stream.Publisher
}

// NewBillService creates a BillService over the given store and publisher.
func NewBillService(store storage.Store, pub stream.Publisher) *BillService {
	return &BillService{store: store, pub: pub}
}

// publish sends the event to the bill's topic. Publication failures are
// logged, not returned: the write already happened, and subscribers will
// converge from their next snapshot load.
func (s *BillService) publish(ctx context.Context, billID string, ev models.ChangeEvent) {
	if err := s.pub.Publish(ctx, billID, ev); err != nil {
		slog.Error("failed to publish change event",
			"bill_id", billID,
			"entity", ev.Entity,
			"op", ev.Op,
			"error", err,
		)
	}
}

// CreateBill creates a bill with its initial items. No events are published:
// nobody can be subscribed to a bill that does not exist yet.
func (s *BillService) CreateBill(ctx context.Context, bill *models.Bill, items []models.Item) error {
	if bill.Tax < 0 || bill.Tip < 0 {
		return fmt.Errorf("tax and tip must not be negative")
	}
	for _, item := range items {
		if item.Amount < 0 {
			return fmt.Errorf("item %q: amount must not be negative", item.Description)
		}
	}
	if err := s.store.CreateBill(ctx, bill, items); err != nil {
		return err
	}
	slog.Info("bill created", "bill_id", bill.ID, "restaurant", bill.Restaurant, "items", len(items))
	return nil
}

// SeedFromReceipt creates a bill from a receipt extraction result.
func (s *BillService) SeedFromReceipt(ctx context.Context, rcpt *receipt.Receipt) (*models.Bill, error) {
	bill := &models.Bill{Restaurant: rcpt.Restaurant}
	if rcpt.Tax != nil {
		bill.Tax = *rcpt.Tax
	}
	if rcpt.Tip != nil {
		bill.Tip = *rcpt.Tip
	}
	items := make([]models.Item, len(rcpt.Items))
	for i, line := range rcpt.Items {
		items[i] = models.Item{Description: line.Name, Amount: line.Price}
	}
	if err := s.CreateBill(ctx, bill, items); err != nil {
		return nil, err
	}
	return bill, nil
}

// GetSnapshot returns the initial snapshot for a bill.
func (s *BillService) GetSnapshot(ctx context.Context, billID string) (*models.Snapshot, error) {
	return s.store.GetSnapshot(ctx, billID)
}

// JoinBill adds a participant to the bill and announces them.
func (s *BillService) JoinBill(ctx context.Context, billID, name, email string) (*models.Participant, error) {
	if name == "" {
		return nil, fmt.Errorf("participant name required")
	}
	p, err := s.store.InsertParticipant(ctx, billID, name, email)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, billID, models.ParticipantEvent(models.OpInsert, *p))
	return p, nil
}

// AddItem adds an item to the bill and announces it.
func (s *BillService) AddItem(ctx context.Context, billID, description string, amount float64, quantity int) (*models.Item, error) {
	if amount < 0 {
		return nil, fmt.Errorf("item amount must not be negative")
	}
	item, err := s.store.InsertItem(ctx, billID, description, amount, quantity)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, billID, models.ItemEvent(models.OpInsert, *item))
	return item, nil
}

// EditItem applies a partial update to an item and announces the new record.
func (s *BillService) EditItem(ctx context.Context, itemID int64, upd storage.ItemUpdate) (*models.Item, error) {
	if upd.Amount != nil && *upd.Amount < 0 {
		return nil, fmt.Errorf("item amount must not be negative")
	}
	item, err := s.store.UpdateItem(ctx, itemID, upd)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, item.BillID, models.ItemEvent(models.OpUpdate, *item))
	return item, nil
}

// SetClaim upserts the (participant, item) claim to the given selected state
// and announces it. This is the soft removal form: unclaiming keeps the row
// with is_selected=false.
func (s *BillService) SetClaim(ctx context.Context, billID string, participantID, itemID int64, selected bool) error {
	if err := s.store.UpsertClaim(ctx, participantID, itemID, selected); err != nil {
		return err
	}
	claim := models.Claim{ParticipantID: participantID, ItemID: itemID, Selected: selected}
	op := models.OpInsert
	if !selected {
		op = models.OpUpdate
	}
	s.publish(ctx, billID, models.ClaimEvent(op, claim))
	return nil
}

// RemoveClaim hard-deletes the claim row and announces the deletion. The
// reducer treats this exactly like a soft removal.
func (s *BillService) RemoveClaim(ctx context.Context, billID string, participantID, itemID int64) error {
	if err := s.store.DeleteClaim(ctx, participantID, itemID); err != nil {
		return err
	}
	claim := models.Claim{ParticipantID: participantID, ItemID: itemID, Selected: true}
	s.publish(ctx, billID, models.ClaimEvent(models.OpDelete, claim))
	return nil
}

// UpdateBill applies a partial update to the bill's mutable fields. Bill
// records are not on the change stream; clients pick the change up on their
// next snapshot load.
func (s *BillService) UpdateBill(ctx context.Context, billID string, upd storage.BillUpdate) (*models.Bill, error) {
	if upd.Tax != nil && *upd.Tax < 0 {
		return nil, fmt.Errorf("tax must not be negative")
	}
	if upd.Tip != nil && *upd.Tip < 0 {
		return nil, fmt.Errorf("tip must not be negative")
	}
	return s.store.UpdateBill(ctx, billID, upd)
}

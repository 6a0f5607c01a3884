// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitparty/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// BillUpdate is a partial update of a bill's mutable fields. Nil fields are
// left unchanged.
type BillUpdate struct {
	Restaurant *string
	Tax        *float64
	Tip        *float64
	Status     *string
}

// ItemUpdate is a partial update of an item's mutable fields. Nil fields are
// left unchanged.
type ItemUpdate struct {
	Description *string
	Amount      *float64
	Quantity    *int
}

// Store defines the interface for bill storage operations. The core relies
// on the change-event stream for resulting state, so writes return the
// persisted record (for event publication) but no other payload.
type Store interface {
	// CreateBill persists a new bill with its initial items. The bill ID
	// and item IDs are populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill, items []models.Item) error

	// GetSnapshot returns the bill with its items, participants, and each
	// participant's selected claims, as an initial snapshot for a session.
	GetSnapshot(ctx context.Context, billID string) (*models.Snapshot, error)

	// InsertParticipant adds a participant to the bill (a join action).
	InsertParticipant(ctx context.Context, billID, name, email string) (*models.Participant, error)

	// InsertItem adds an item to the bill.
	InsertItem(ctx context.Context, billID, description string, amount float64, quantity int) (*models.Item, error)

	// UpdateItem applies a partial update to an item and returns the
	// updated record.
	UpdateItem(ctx context.Context, itemID int64, upd ItemUpdate) (*models.Item, error)

	// UpsertClaim creates or updates the (participant, item) claim row with
	// the given selected state.
	UpsertClaim(ctx context.Context, participantID, itemID int64, selected bool) error

	// DeleteClaim hard-deletes the (participant, item) claim row. Deleting
	// an absent row is not an error.
	DeleteClaim(ctx context.Context, participantID, itemID int64) error

	// UpdateBill applies a partial update to a bill's mutable fields
	// (restaurant, tax, tip, status) and returns the updated record.
	UpdateBill(ctx context.Context, billID string, upd BillUpdate) (*models.Bill, error)

	// Close releases any resources held by the store.
	Close() error
}

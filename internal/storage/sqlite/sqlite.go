// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitparty/internal/claims"
	"github.com/mmynk/splitparty/internal/models"
	"github.com/mmynk/splitparty/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill with its initial items.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill, items []models.Item) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Status == "" {
		bill.Status = models.StatusActive
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, restaurant, tax, tip, image_url, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.Restaurant, bill.Tax, bill.Tip, bill.ImageURL, bill.Status, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range items {
		item := &items[i]
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO items (bill_id, description, amount, quantity) VALUES (?, ?, ?, ?)",
			bill.ID, item.Description, item.Amount, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read item id: %w", err)
		}
		item.ID = id
		item.BillID = bill.ID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSnapshot retrieves a bill with its items, participants, and selected claims.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, billID string) (*models.Snapshot, error) {
	bill := models.Bill{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, restaurant, tax, tip, image_url, status, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.Restaurant, &bill.Tax, &bill.Tip, &bill.ImageURL, &bill.Status, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	snap := models.NewSnapshot(bill)

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, description, amount, quantity FROM items WHERE bill_id = ? ORDER BY id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := models.Item{BillID: billID}
		if err := rows.Scan(&item.ID, &item.Description, &item.Amount, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		snap.Items = append(snap.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	participantRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, joined_at FROM participants WHERE bill_id = ? ORDER BY id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer participantRows.Close()

	for participantRows.Next() {
		p := models.Participant{BillID: billID}
		if err := participantRows.Scan(&p.ID, &p.Name, &p.Email, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		snap.Participants = append(snap.Participants, p)
	}
	if err := participantRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	assignments := make(map[int64][]int64)
	claimRows, err := s.db.QueryContext(ctx,
		`SELECT c.participant_id, c.item_id
		 FROM claims c JOIN participants p ON p.id = c.participant_id
		 WHERE p.bill_id = ? AND c.is_selected = 1`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}
	defer claimRows.Close()

	for claimRows.Next() {
		var participantID, itemID int64
		if err := claimRows.Scan(&participantID, &itemID); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		assignments[participantID] = append(assignments[participantID], itemID)
	}
	if err := claimRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claims: %w", err)
	}
	snap.Claims = claims.FromAssignments(assignments)

	return snap, nil
}

// InsertParticipant adds a participant to the bill.
func (s *SQLiteStore) InsertParticipant(ctx context.Context, billID, name, email string) (*models.Participant, error) {
	p := &models.Participant{
		BillID:   billID,
		Name:     name,
		Email:    email,
		JoinedAt: time.Now().Unix(),
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO participants (bill_id, name, email, joined_at) VALUES (?, ?, ?, ?)",
		billID, name, email, p.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert participant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read participant id: %w", err)
	}
	p.ID = id
	return p, nil
}

// InsertItem adds an item to the bill.
func (s *SQLiteStore) InsertItem(ctx context.Context, billID, description string, amount float64, quantity int) (*models.Item, error) {
	if quantity == 0 {
		quantity = 1
	}
	item := &models.Item{
		BillID:      billID,
		Description: description,
		Amount:      amount,
		Quantity:    quantity,
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO items (bill_id, description, amount, quantity) VALUES (?, ?, ?, ?)",
		billID, description, amount, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read item id: %w", err)
	}
	item.ID = id
	return item, nil
}

// UpdateItem applies a partial update to an item.
func (s *SQLiteStore) UpdateItem(ctx context.Context, itemID int64, upd storage.ItemUpdate) (*models.Item, error) {
	item := models.Item{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, bill_id, description, amount, quantity FROM items WHERE id = ?",
		itemID,
	).Scan(&item.ID, &item.BillID, &item.Description, &item.Amount, &item.Quantity)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if upd.Description != nil {
		item.Description = *upd.Description
	}
	if upd.Amount != nil {
		item.Amount = *upd.Amount
	}
	if upd.Quantity != nil {
		item.Quantity = *upd.Quantity
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE items SET description = ?, amount = ?, quantity = ? WHERE id = ?",
		item.Description, item.Amount, item.Quantity, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return &item, nil
}

// UpsertClaim creates or updates the (participant, item) claim row.
func (s *SQLiteStore) UpsertClaim(ctx context.Context, participantID, itemID int64, selected bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (participant_id, item_id, is_selected) VALUES (?, ?, ?)
		 ON CONFLICT (participant_id, item_id) DO UPDATE SET is_selected = excluded.is_selected`,
		participantID, itemID, boolToInt(selected),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert claim: %w", err)
	}
	return nil
}

// DeleteClaim hard-deletes the (participant, item) claim row.
func (s *SQLiteStore) DeleteClaim(ctx context.Context, participantID, itemID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM claims WHERE participant_id = ? AND item_id = ?",
		participantID, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete claim: %w", err)
	}
	return nil
}

// UpdateBill applies a partial update to a bill's mutable fields.
func (s *SQLiteStore) UpdateBill(ctx context.Context, billID string, upd storage.BillUpdate) (*models.Bill, error) {
	bill := models.Bill{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, restaurant, tax, tip, image_url, status, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.Restaurant, &bill.Tax, &bill.Tip, &bill.ImageURL, &bill.Status, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if upd.Restaurant != nil {
		bill.Restaurant = *upd.Restaurant
	}
	if upd.Tax != nil {
		bill.Tax = *upd.Tax
	}
	if upd.Tip != nil {
		bill.Tip = *upd.Tip
	}
	if upd.Status != nil {
		bill.Status = *upd.Status
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE bills SET restaurant = ?, tax = ?, tip = ?, status = ? WHERE id = ?",
		bill.Restaurant, bill.Tax, bill.Tip, bill.Status, billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}
	return &bill, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

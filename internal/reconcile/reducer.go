// Package reconcile applies inbound change events to a local snapshot.
//
// The change stream is at-least-once and unordered, so every transition here
// is idempotent and commutative: duplicates are no-ops, and independent
// events converge to the same snapshot in any order. No sequence numbers are
// assumed. Malformed events are dropped whole; nothing is partially applied
// and nothing panics past this boundary.
package reconcile

import (
	"log/slog"

	"github.com/mmynk/splitparty/internal/models"
)

// Reducer owns the mutation of one snapshot. It must only ever be invoked
// from the snapshot owner's event loop; it does no locking of its own.
type Reducer struct {
	snap *models.Snapshot
}

// New returns a reducer over the given snapshot.
func New(snap *models.Snapshot) *Reducer {
	return &Reducer{snap: snap}
}

// Apply reduces one inbound change event into the snapshot. It never fails:
// events that cannot be applied are counted, logged, and dropped.
func (r *Reducer) Apply(ev models.ChangeEvent) {
	if !validOp(ev.Op) {
		r.drop("unknown", dropMalformed, ev)
		return
	}
	switch ev.Entity {
	case models.EntityParticipant:
		r.applyParticipant(ev)
	case models.EntityItem:
		r.applyItem(ev)
	case models.EntityClaim:
		r.applyClaim(ev)
	default:
		r.drop("unknown", dropMalformed, ev)
	}
}

func (r *Reducer) applied(ev models.ChangeEvent) {
	eventsApplied.WithLabelValues(string(ev.Entity), string(ev.Op)).Inc()
}

func (r *Reducer) drop(entity, reason string, ev models.ChangeEvent) {
	eventsDropped.WithLabelValues(entity, reason).Inc()
	slog.Debug("dropped change event",
		"entity", ev.Entity,
		"op", ev.Op,
		"reason", reason,
	)
}

func (r *Reducer) applyParticipant(ev models.ChangeEvent) {
	switch ev.Op {
	case models.OpInsert, models.OpUpdate:
		rec, err := decodeParticipant(ev.New)
		if err != nil {
			r.drop(string(ev.Entity), dropMalformed, ev)
			return
		}
		if existing := r.snap.Participant(*rec.ID); existing != nil {
			// Merge by id. The claim set is tracked separately, so a
			// participant update can never clobber claims.
			if rec.Name != "" {
				existing.Name = rec.Name
			}
			if rec.Email != "" {
				existing.Email = rec.Email
			}
		} else if ev.Op == models.OpInsert {
			r.snap.Participants = append(r.snap.Participants, models.Participant{
				ID:       *rec.ID,
				BillID:   rec.BillID,
				Name:     rec.Name,
				Email:    rec.Email,
				JoinedAt: rec.JoinedAt,
			})
		}
		// An update for a participant we have not seen yet is a no-op; the
		// insert will arrive eventually and carry the same fields.
		r.applied(ev)

	case models.OpDelete:
		rec, err := decodeParticipant(ev.Old)
		if err != nil {
			if rec, err = decodeParticipant(ev.New); err != nil {
				r.drop(string(ev.Entity), dropMalformed, ev)
				return
			}
		}
		r.removeParticipant(*rec.ID)
		r.applied(ev)
	}
}

func (r *Reducer) removeParticipant(participantID int64) {
	kept := r.snap.Participants[:0]
	for _, p := range r.snap.Participants {
		if p.ID != participantID {
			kept = append(kept, p)
		}
	}
	r.snap.Participants = kept
	// Drop the removed participant's claims so sharing counts and lookups
	// never see a dangling claimant.
	r.snap.Claims.DropParticipant(participantID)
}

func (r *Reducer) applyItem(ev models.ChangeEvent) {
	switch ev.Op {
	case models.OpInsert, models.OpUpdate:
		rec, err := decodeItem(ev.New)
		if err != nil {
			r.drop(string(ev.Entity), dropMalformed, ev)
			return
		}
		if existing := r.snap.Item(*rec.ID); existing != nil {
			if rec.Description != nil {
				existing.Description = *rec.Description
			}
			if rec.Amount != nil {
				existing.Amount = *rec.Amount
			}
			if rec.Quantity > 0 {
				existing.Quantity = rec.Quantity
			}
		} else if ev.Op == models.OpInsert {
			item := models.Item{ID: *rec.ID, BillID: rec.BillID, Quantity: rec.Quantity}
			if rec.Description != nil {
				item.Description = *rec.Description
			}
			if rec.Amount != nil {
				item.Amount = *rec.Amount
			}
			r.snap.Items = append(r.snap.Items, item)
		}
		r.applied(ev)

	case models.OpDelete:
		rec, err := decodeItem(ev.Old)
		if err != nil {
			if rec, err = decodeItem(ev.New); err != nil {
				r.drop(string(ev.Entity), dropMalformed, ev)
				return
			}
		}
		r.removeItem(*rec.ID)
		r.applied(ev)
	}
}

func (r *Reducer) removeItem(itemID int64) {
	kept := r.snap.Items[:0]
	for _, item := range r.snap.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	r.snap.Items = kept
	r.snap.Claims.DropItem(itemID)
}

func (r *Reducer) applyClaim(ev models.ChangeEvent) {
	// Deletes identify the pair in the old record; inserts and updates in
	// the new one. Either way the transition to "not claimed" is the same
	// whether storage deleted the row or flipped is_selected to false.
	var rec *claimRecord
	var err error
	if ev.Op == models.OpDelete {
		rec, err = decodeClaim(ev.Old, ev.New)
	} else {
		rec, err = decodeClaim(ev.New, ev.Old)
	}
	if err != nil {
		r.drop(string(ev.Entity), dropMalformed, ev)
		return
	}

	selected := false
	if ev.Op != models.OpDelete {
		if rec.Selected == nil {
			r.drop(string(ev.Entity), dropMalformed, ev)
			return
		}
		selected = *rec.Selected
	}

	if selected {
		// A claim for a participant we have not seen yet is dropped rather
		// than buffered; the participant insert and any later claim event
		// will converge the snapshot.
		if !r.snap.HasParticipant(*rec.ParticipantID) {
			r.drop(string(ev.Entity), dropUnknownParticipant, ev)
			return
		}
		r.snap.Claims.Claim(*rec.ParticipantID, *rec.ItemID)
	} else {
		r.snap.Claims.Unclaim(*rec.ParticipantID, *rec.ItemID)
	}
	r.applied(ev)
}

package reconcile

import (
	"encoding/json"
	"errors"

	"github.com/mmynk/splitparty/internal/models"
)

// Inbound payloads are decoded into these defensive record shapes: every
// required field is a pointer so a missing field is distinguishable from a
// zero value. Nothing here is trusted until validated.

var errMalformed = errors.New("malformed change payload")

type participantRecord struct {
	ID       *int64 `json:"id"`
	BillID   string `json:"bill_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinedAt int64  `json:"joined_at"`
}

type itemRecord struct {
	ID          *int64   `json:"id"`
	BillID      string   `json:"bill_id"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Quantity    int      `json:"quantity"`
}

type claimRecord struct {
	ParticipantID *int64 `json:"participant_id"`
	ItemID        *int64 `json:"item_id"`
	Selected      *bool  `json:"is_selected"`
}

func decodeParticipant(raw json.RawMessage) (*participantRecord, error) {
	if len(raw) == 0 {
		return nil, errMalformed
	}
	var rec participantRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errMalformed
	}
	if rec.ID == nil {
		return nil, errMalformed
	}
	return &rec, nil
}

func decodeItem(raw json.RawMessage) (*itemRecord, error) {
	if len(raw) == 0 {
		return nil, errMalformed
	}
	var rec itemRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errMalformed
	}
	if rec.ID == nil {
		return nil, errMalformed
	}
	return &rec, nil
}

// decodeClaim tries the given payloads in order and returns the first that
// carries both ids. Claim deletes identify the pair in the old record while
// inserts and updates use the new one, and some producers populate both.
func decodeClaim(raws ...json.RawMessage) (*claimRecord, error) {
	for _, raw := range raws {
		if len(raw) == 0 {
			continue
		}
		var rec claimRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if rec.ParticipantID != nil && rec.ItemID != nil {
			return &rec, nil
		}
	}
	return nil, errMalformed
}

func validOp(op models.OpKind) bool {
	switch op {
	case models.OpInsert, models.OpUpdate, models.OpDelete:
		return true
	}
	return false
}

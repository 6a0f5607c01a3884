package server

import (
	"github.com/mmynk/splitparty/internal/calculator"
	"github.com/mmynk/splitparty/internal/models"
)

// createBillRequest creates a bill either from explicit fields or from the
// receipt extraction text format. When ReceiptText is set the other fields
// are ignored.
type createBillRequest struct {
	Restaurant  string        `json:"restaurant"`
	Tax         float64       `json:"tax"`
	Tip         float64       `json:"tip"`
	ImageURL    string        `json:"image_url"`
	Items       []itemRequest `json:"items"`
	ReceiptText string        `json:"receipt_text"`
}

type itemRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Quantity    int     `json:"quantity"`
}

type joinRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateItemRequest struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Quantity    *int     `json:"quantity"`
}

type updateBillRequest struct {
	Restaurant *string  `json:"restaurant"`
	Tax        *float64 `json:"tax"`
	Tip        *float64 `json:"tip"`
	Status     *string  `json:"status"`
}

// claimRequest identifies one (participant, item) claim. BillID routes the
// resulting change event to the right stream topic.
type claimRequest struct {
	BillID        string `json:"bill_id"`
	ParticipantID int64  `json:"participant_id"`
	ItemID        int64  `json:"item_id"`
	Selected      bool   `json:"is_selected"`
}

// personShareResponse is one participant's computed share, rounded to cents.
type personShareResponse struct {
	ParticipantID int64   `json:"participant_id"`
	Name          string  `json:"name"`
	Subtotal      float64 `json:"subtotal"`
	TaxTip        float64 `json:"tax_tip"`
	Total         float64 `json:"total"`
}

// billResponse is a full bill view: the snapshot plus the shares computed
// from it. Claims are keyed by participant id.
type billResponse struct {
	Bill         models.Bill           `json:"bill"`
	Items        []models.Item         `json:"items"`
	Participants []models.Participant  `json:"participants"`
	Claims       map[int64][]int64     `json:"claims"`
	Shares       []personShareResponse `json:"shares"`
}

// newBillResponse builds the response view from a snapshot.
func newBillResponse(snap *models.Snapshot) billResponse {
	resp := billResponse{
		Bill:         snap.Bill,
		Items:        snap.Items,
		Participants: snap.Participants,
		Claims:       make(map[int64][]int64, len(snap.Participants)),
	}
	shares := calculator.Split(snap.Items, snap.Participants, snap.Claims, snap.Bill.Tax, snap.Bill.Tip)
	for _, p := range snap.Participants {
		resp.Claims[p.ID] = snap.Claims.ItemIDs(p.ID)
		share := shares[p.ID]
		resp.Shares = append(resp.Shares, personShareResponse{
			ParticipantID: p.ID,
			Name:          p.Name,
			Subtotal:      calculator.Cents(share.Subtotal),
			TaxTip:        calculator.Cents(share.TaxTip),
			Total:         calculator.Cents(share.Total),
		})
	}
	return resp
}

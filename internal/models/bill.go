package models

// Bill statuses. A bill starts active and is completed or cancelled by the
// party that created it.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Bill represents one shared-expense session.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format). Immutable.
	ID string `json:"id"`

	// Restaurant is the display name of the place the bill came from.
	Restaurant string `json:"restaurant"`

	// Tax is the tax amount on the bill. Mutable by any participant.
	Tax float64 `json:"tax"`

	// Tip is the tip amount on the bill. Mutable by any participant.
	Tip float64 `json:"tip"`

	// ImageURL optionally points at the receipt image the bill was
	// extracted from.
	ImageURL string `json:"image_url,omitempty"`

	// Status is one of StatusActive, StatusCompleted, StatusCancelled.
	Status string `json:"status"`

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64 `json:"created_at"`
}

// Item represents a single priced line on a bill.
type Item struct {
	// ID is the storage-assigned identifier for the item.
	ID int64 `json:"id"`

	// BillID is the bill this item belongs to.
	BillID string `json:"bill_id,omitempty"`

	// Description is the name of the item (e.g., "Margherita Pizza").
	Description string `json:"description"`

	// Amount is the price of this line. Never negative.
	Amount float64 `json:"amount"`

	// Quantity is the line quantity from the receipt. Defaults to 1.
	Quantity int `json:"quantity,omitempty"`
}

// Participant represents a person splitting the bill. Participants are
// created by a join action and mutated only by rename; removal is a rare
// administrative event.
type Participant struct {
	// ID is the storage-assigned identifier for the participant.
	ID int64 `json:"id"`

	// BillID is the bill this participant joined.
	BillID string `json:"bill_id,omitempty"`

	// Name is the participant's display name.
	Name string `json:"name"`

	// Email is optional contact info collected at join time.
	Email string `json:"email,omitempty"`

	// JoinedAt is the Unix timestamp when the participant joined.
	JoinedAt int64 `json:"joined_at,omitempty"`
}

// Claim records that a participant currently claims an item. Claims form a
// sparse boolean matrix keyed by (ParticipantID, ItemID): a row with
// Selected=true means claimed, and both Selected=false and an absent row mean
// not claimed.
type Claim struct {
	ParticipantID int64 `json:"participant_id"`
	ItemID        int64 `json:"item_id"`
	Selected      bool  `json:"is_selected"`
}

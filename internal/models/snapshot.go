package models

import "github.com/mmynk/splitparty/internal/claims"

// Snapshot is a client's local in-memory copy of one bill: the bill record,
// its items and participants, and the selected-claims view. Each session owns
// exactly one Snapshot and mutates it only from its event loop.
type Snapshot struct {
	Bill         Bill
	Items        []Item
	Participants []Participant
	Claims       *claims.Set
}

// NewSnapshot returns an empty snapshot for the given bill.
func NewSnapshot(bill Bill) *Snapshot {
	return &Snapshot{Bill: bill, Claims: claims.New()}
}

// Item returns the item with the given id, or nil.
func (s *Snapshot) Item(itemID int64) *Item {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// Participant returns the participant with the given id, or nil.
func (s *Snapshot) Participant(participantID int64) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == participantID {
			return &s.Participants[i]
		}
	}
	return nil
}

// HasParticipant reports whether the participant is in the local roster.
func (s *Snapshot) HasParticipant(participantID int64) bool {
	return s.Participant(participantID) != nil
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Bill:         s.Bill,
		Items:        append([]Item(nil), s.Items...),
		Participants: append([]Participant(nil), s.Participants...),
		Claims:       claims.New(),
	}
	if s.Claims != nil {
		c.Claims = s.Claims.Clone()
	}
	return c
}

// Package claims tracks which participants claim which items on a bill.
//
// A Set is the selected-claims view of the sparse (participant, item) boolean
// matrix: only pairs currently claimed are present. Storage may represent an
// unclaimed pair either as a row with is_selected=false or as no row at all;
// both collapse to absence here.
package claims

import "sort"

// Set maps participants to the items they currently claim.
// The zero value is not usable; construct with New or FromAssignments.
type Set struct {
	byParticipant map[int64]map[int64]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{byParticipant: make(map[int64]map[int64]struct{})}
}

// FromAssignments builds a Set from each participant's initial claimed
// item-id list, as returned by the storage read. The result is identical to
// replaying the equivalent sequence of individual claim events.
func FromAssignments(assignments map[int64][]int64) *Set {
	s := New()
	for participantID, itemIDs := range assignments {
		for _, itemID := range itemIDs {
			s.Claim(participantID, itemID)
		}
	}
	return s
}

// Claim marks the item as claimed by the participant. Reports whether the set
// changed; claiming an already-claimed item is a no-op.
func (s *Set) Claim(participantID, itemID int64) bool {
	items := s.byParticipant[participantID]
	if items == nil {
		items = make(map[int64]struct{})
		s.byParticipant[participantID] = items
	}
	if _, ok := items[itemID]; ok {
		return false
	}
	items[itemID] = struct{}{}
	return true
}

// Unclaim removes the participant's claim on the item. Reports whether the
// set changed; unclaiming an absent pair is a no-op, not an error.
func (s *Set) Unclaim(participantID, itemID int64) bool {
	items := s.byParticipant[participantID]
	if items == nil {
		return false
	}
	if _, ok := items[itemID]; !ok {
		return false
	}
	delete(items, itemID)
	if len(items) == 0 {
		delete(s.byParticipant, participantID)
	}
	return true
}

// Toggle flips the participant's claim on the item and returns the new
// claimed state.
func (s *Set) Toggle(participantID, itemID int64) bool {
	if s.IsClaimed(participantID, itemID) {
		s.Unclaim(participantID, itemID)
		return false
	}
	s.Claim(participantID, itemID)
	return true
}

// IsClaimed reports whether the participant currently claims the item.
// Unknown ids are simply not claimed.
func (s *Set) IsClaimed(participantID, itemID int64) bool {
	items := s.byParticipant[participantID]
	if items == nil {
		return false
	}
	_, ok := items[itemID]
	return ok
}

// SharingCount returns the number of distinct participants claiming the item.
func (s *Set) SharingCount(itemID int64) int {
	n := 0
	for _, items := range s.byParticipant {
		if _, ok := items[itemID]; ok {
			n++
		}
	}
	return n
}

// Claimants returns the ids of all participants claiming the item, sorted.
func (s *Set) Claimants(itemID int64) []int64 {
	var ids []int64
	for participantID, items := range s.byParticipant {
		if _, ok := items[itemID]; ok {
			ids = append(ids, participantID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ItemIDs returns the ids of all items the participant claims, sorted.
func (s *Set) ItemIDs(participantID int64) []int64 {
	items := s.byParticipant[participantID]
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(items))
	for itemID := range items {
		ids = append(ids, itemID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of claimed (participant, item) pairs.
func (s *Set) Len() int {
	n := 0
	for _, items := range s.byParticipant {
		n += len(items)
	}
	return n
}

// DropParticipant removes every claim held by the participant. Used when a
// participant is removed from the roster so no dangling claims remain.
func (s *Set) DropParticipant(participantID int64) {
	delete(s.byParticipant, participantID)
}

// DropItem removes every participant's claim on the item. Used when an item
// is deleted.
func (s *Set) DropItem(itemID int64) {
	for participantID, items := range s.byParticipant {
		delete(items, itemID)
		if len(items) == 0 {
			delete(s.byParticipant, participantID)
		}
	}
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	c := New()
	for participantID, items := range s.byParticipant {
		dst := make(map[int64]struct{}, len(items))
		for itemID := range items {
			dst[itemID] = struct{}{}
		}
		c.byParticipant[participantID] = dst
	}
	return c
}

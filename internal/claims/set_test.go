package claims

import (
	"reflect"
	"testing"
)

func TestToggle(t *testing.T) {
	s := New()

	if got := s.Toggle(101, 1); !got {
		t.Error("first toggle should claim the item")
	}
	if !s.IsClaimed(101, 1) {
		t.Error("expected 101->1 to be claimed after toggle")
	}

	if got := s.Toggle(101, 1); got {
		t.Error("second toggle should unclaim the item")
	}
	if s.IsClaimed(101, 1) {
		t.Error("expected 101->1 to be unclaimed after double toggle")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty set after double toggle, got %d pairs", s.Len())
	}
}

func TestClaimUnclaimIdempotent(t *testing.T) {
	s := New()

	if !s.Claim(101, 1) {
		t.Error("first claim should change the set")
	}
	if s.Claim(101, 1) {
		t.Error("duplicate claim should be a no-op")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 pair after duplicate claim, got %d", s.Len())
	}

	if !s.Unclaim(101, 1) {
		t.Error("unclaim of claimed pair should change the set")
	}
	if s.Unclaim(101, 1) {
		t.Error("unclaim of absent pair should be a no-op")
	}
	if s.Unclaim(999, 999) {
		t.Error("unclaim of unknown ids should be a no-op")
	}
}

func TestIsClaimedUnknownIDs(t *testing.T) {
	s := New()
	if s.IsClaimed(42, 7) {
		t.Error("unknown ids should read as not claimed")
	}
}

func TestFromAssignments(t *testing.T) {
	// Reconstructing from participant item lists must match replaying the
	// individual claim events.
	assignments := map[int64][]int64{
		101: {1, 2},
		102: {2},
	}
	s := FromAssignments(assignments)

	replayed := New()
	replayed.Claim(101, 1)
	replayed.Claim(101, 2)
	replayed.Claim(102, 2)

	for pid := range assignments {
		if !reflect.DeepEqual(s.ItemIDs(pid), replayed.ItemIDs(pid)) {
			t.Errorf("participant %d: FromAssignments = %v, replay = %v",
				pid, s.ItemIDs(pid), replayed.ItemIDs(pid))
		}
	}
	if s.SharingCount(2) != 2 {
		t.Errorf("SharingCount(2) = %d, want 2", s.SharingCount(2))
	}
}

func TestSharingCountAndClaimants(t *testing.T) {
	s := New()
	s.Claim(101, 1)
	s.Claim(102, 1)
	s.Claim(103, 2)

	if got := s.SharingCount(1); got != 2 {
		t.Errorf("SharingCount(1) = %d, want 2", got)
	}
	if got := s.SharingCount(99); got != 0 {
		t.Errorf("SharingCount(99) = %d, want 0", got)
	}
	if got := s.Claimants(1); !reflect.DeepEqual(got, []int64{101, 102}) {
		t.Errorf("Claimants(1) = %v, want [101 102]", got)
	}
}

func TestDropParticipantAndItem(t *testing.T) {
	s := New()
	s.Claim(101, 1)
	s.Claim(101, 2)
	s.Claim(102, 1)

	s.DropParticipant(101)
	if s.IsClaimed(101, 1) || s.IsClaimed(101, 2) {
		t.Error("dropped participant should hold no claims")
	}
	if !s.IsClaimed(102, 1) {
		t.Error("other participants' claims should survive DropParticipant")
	}

	s.DropItem(1)
	if s.SharingCount(1) != 0 {
		t.Error("dropped item should have no claimants")
	}
}

func TestClone(t *testing.T) {
	s := New()
	s.Claim(101, 1)

	c := s.Clone()
	c.Claim(102, 2)

	if s.IsClaimed(102, 2) {
		t.Error("mutating a clone must not affect the original")
	}
	if !c.IsClaimed(101, 1) {
		t.Error("clone should carry existing claims")
	}
}

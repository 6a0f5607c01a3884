// Package calculator computes each participant's fair share of a bill.
//
// All functions are pure: they read a snapshot of items, participants, and
// selected claims and return amounts, with no side effects and no caching.
// Shares must be recomputed from scratch whenever the snapshot changes,
// because one claim toggle can change the sharing count, and therefore the
// per-person price, of an item everyone else claims too.
//
// Amounts accumulate as float64 and are rounded only at presentation time
// (two decimal places) so rounding error does not compound across many
// participants.
package calculator

import (
	"fmt"
	"math"

	"github.com/mmynk/splitparty/internal/claims"
	"github.com/mmynk/splitparty/internal/models"
)

// PersonShare is one participant's computed share of the bill.
type PersonShare struct {
	// Subtotal is the sum of the participant's claimed item shares, where
	// each item's amount is divided by its sharing count.
	Subtotal float64

	// TaxTip is the participant's proportional share of tax plus tip.
	TaxTip float64

	// Total is Subtotal + TaxTip.
	Total float64
}

// Subtotal returns the participant's item subtotal: for each claimed item,
// the item amount divided by the number of participants sharing it. An item
// claimed only by this participant costs full price.
func Subtotal(items []models.Item, cs *claims.Set, participantID int64) float64 {
	var total float64
	for _, item := range items {
		if !cs.IsClaimed(participantID, item.ID) {
			continue
		}
		n := cs.SharingCount(item.ID)
		if n < 1 {
			n = 1
		}
		total += item.Amount / float64(n)
	}
	return total
}

// TotalSubtotal returns the sum of every participant's subtotal. Items with
// zero claimants contribute nothing.
func TotalSubtotal(items []models.Item, participants []models.Participant, cs *claims.Set) float64 {
	var total float64
	for _, p := range participants {
		total += Subtotal(items, cs, p.ID)
	}
	return total
}

// ShareOfTaxTip returns the participant's proportional share of tax plus tip:
// subtotal / totalSubtotal * (tax + tip). When nothing is claimed yet the
// share is 0 for everyone; there is no division by zero.
func ShareOfTaxTip(items []models.Item, participants []models.Participant, cs *claims.Set, participantID int64, tax, tip float64) float64 {
	totalSubtotal := TotalSubtotal(items, participants, cs)
	if totalSubtotal == 0 {
		return 0
	}
	subtotal := Subtotal(items, cs, participantID)
	return subtotal / totalSubtotal * (tax + tip)
}

// TotalOwed returns the participant's subtotal plus their tax and tip share.
func TotalOwed(items []models.Item, participants []models.Participant, cs *claims.Set, participantID int64, tax, tip float64) float64 {
	return Subtotal(items, cs, participantID) +
		ShareOfTaxTip(items, participants, cs, participantID, tax, tip)
}

// SharingCount returns the number of participants claiming the item, with a
// minimum of 1 for display purposes (an unclaimed item still shows full
// price).
func SharingCount(cs *claims.Set, itemID int64) int {
	if n := cs.SharingCount(itemID); n > 1 {
		return n
	}
	return 1
}

// IsShared reports whether more than one participant claims the item.
func IsShared(cs *claims.Set, itemID int64) bool {
	return cs.SharingCount(itemID) > 1
}

// Split computes every participant's share in one pass. Sharing counts are
// evaluated once per item, then each participant's claimed shares and
// proportional tax/tip are accumulated.
func Split(items []models.Item, participants []models.Participant, cs *claims.Set, tax, tip float64) map[int64]*PersonShare {
	shares := make(map[int64]*PersonShare, len(participants))
	var totalSubtotal float64
	for _, p := range participants {
		subtotal := Subtotal(items, cs, p.ID)
		shares[p.ID] = &PersonShare{Subtotal: subtotal}
		totalSubtotal += subtotal
	}
	for _, share := range shares {
		if totalSubtotal > 0 {
			share.TaxTip = share.Subtotal / totalSubtotal * (tax + tip)
		}
		share.Total = share.Subtotal + share.TaxTip
	}
	return shares
}

// Cents rounds an amount to two decimal places. Presentation only; never use
// the result in further accumulation.
func Cents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatUSD renders an amount the way the bill shows it, e.g. "$55.00".
func FormatUSD(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

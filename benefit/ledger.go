/*
ledger.go - Redemption collection operations

PURPOSE:
  Append/remove/query over the household's redemption events. The slice is
  treated as an append-only ledger: entries are never mutated in place, and
  every operation returns a fresh slice, leaving the input untouched.

  Unlike an accounting ledger there are no reversals; a mistaken redemption
  is simply deleted, which is why RemoveRedemption exists at all.
*/
package benefit

import (
	"github.com/google/uuid"
)

// RedemptionInput is the caller-supplied portion of a new redemption.
type RedemptionInput struct {
	BenefitID  string
	MemberID   string
	RedeemedAt Date // zero value defaults to now
	Memo       string
}

// AddRedemption appends one redemption, generating its id. A zero
// RedeemedAt defaults to now, which the caller supplies so the engine stays
// clock-free. The input ledger is never mutated.
func AddRedemption(ledger []Redemption, in RedemptionInput, now Date) []Redemption {
	redeemedAt := in.RedeemedAt
	if redeemedAt.IsZero() {
		redeemedAt = now
	}

	out := make([]Redemption, len(ledger), len(ledger)+1)
	copy(out, ledger)
	return append(out, Redemption{
		ID:         uuid.NewString(),
		BenefitID:  in.BenefitID,
		MemberID:   in.MemberID,
		RedeemedAt: redeemedAt,
		Memo:       in.Memo,
	})
}

// RemoveRedemption removes at most one entry by id. A missing id is a
// no-op, not an error: the result has the same length as the input.
func RemoveRedemption(ledger []Redemption, id string) []Redemption {
	out := make([]Redemption, 0, len(ledger))
	for _, r := range ledger {
		if r.ID == id {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RedemptionsInWindow filters the ledger to entries for benefitID whose
// date satisfies start <= date < end, consistent with the half-open window
// convention. This is the sole input to usage-ratio computation.
func RedemptionsInWindow(ledger []Redemption, benefitID string, w Window) []Redemption {
	var out []Redemption
	for _, r := range ledger {
		if r.BenefitID != benefitID {
			continue
		}
		if w.Contains(r.RedeemedAt) {
			out = append(out, r)
		}
	}
	return out
}

// RedemptionsForMember filters window results further to one member. Used
// for non-shared benefits, where each member's usage counts separately.
func RedemptionsForMember(redemptions []Redemption, memberID string) []Redemption {
	var out []Redemption
	for _, r := range redemptions {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	return out
}

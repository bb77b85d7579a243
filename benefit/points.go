/*
points.go - Points balances and redeemable affordability

PURPOSE:
  The sibling engine to the benefit classifier: given a points balance and
  a catalog of redeemable costs, derive an affordability flag per item.
  Same pattern as the classifier - view state is derived from raw entities,
  never stored.
*/
package benefit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// POINTS SOURCES
// =============================================================================

type PointsSourceInput struct {
	MemberID string
	Name     string
	Balance  decimal.Decimal
}

type PointsSourcePatch struct {
	MemberID *string
	Name     *string
	Balance  *decimal.Decimal
}

func AddPointsSource(sources []PointsSource, in PointsSourceInput, now Date) []PointsSource {
	out := make([]PointsSource, len(sources), len(sources)+1)
	copy(out, sources)
	return append(out, PointsSource{
		ID:        uuid.NewString(),
		MemberID:  in.MemberID,
		Name:      in.Name,
		Balance:   in.Balance,
		CreatedAt: now,
	})
}

func UpdatePointsSource(sources []PointsSource, id string, patch PointsSourcePatch) []PointsSource {
	out := make([]PointsSource, len(sources))
	copy(out, sources)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.MemberID != nil {
			out[i].MemberID = *patch.MemberID
		}
		if patch.Name != nil {
			out[i].Name = *patch.Name
		}
		if patch.Balance != nil {
			out[i].Balance = *patch.Balance
		}
		break
	}
	return out
}

func RemovePointsSource(sources []PointsSource, id string) []PointsSource {
	out := make([]PointsSource, 0, len(sources))
	for _, s := range sources {
		if s.ID == id {
			continue
		}
		out = append(out, s)
	}
	return out
}

// UpdateBalance replaces one source's balance, returning the updated copy.
// The input collection is untouched; a missing id is a no-op.
func UpdateBalance(sources []PointsSource, id string, balance decimal.Decimal) []PointsSource {
	return UpdatePointsSource(sources, id, PointsSourcePatch{Balance: &balance})
}

// FindPointsSource returns the points source with the given id, or nil.
func FindPointsSource(sources []PointsSource, id string) *PointsSource {
	for i := range sources {
		if sources[i].ID == id {
			return &sources[i]
		}
	}
	return nil
}

// =============================================================================
// REDEEMABLES
// =============================================================================

type RedeemableInput struct {
	PointsSourceID string
	Name           string
	Cost           decimal.Decimal
}

type RedeemablePatch struct {
	Name *string
	Cost *decimal.Decimal
}

func AddRedeemable(items []Redeemable, in RedeemableInput, now Date) []Redeemable {
	out := make([]Redeemable, len(items), len(items)+1)
	copy(out, items)
	return append(out, Redeemable{
		ID:             uuid.NewString(),
		PointsSourceID: in.PointsSourceID,
		Name:           in.Name,
		Cost:           in.Cost,
		CreatedAt:      now,
	})
}

func UpdateRedeemable(items []Redeemable, id string, patch RedeemablePatch) []Redeemable {
	out := make([]Redeemable, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Name != nil {
			out[i].Name = *patch.Name
		}
		if patch.Cost != nil {
			out[i].Cost = *patch.Cost
		}
		break
	}
	return out
}

func RemoveRedeemable(items []Redeemable, id string) []Redeemable {
	out := make([]Redeemable, 0, len(items))
	for _, item := range items {
		if item.ID == id {
			continue
		}
		out = append(out, item)
	}
	return out
}

// =============================================================================
// AFFORDABILITY VIEW
// =============================================================================

// AffordabilityItem pairs a redeemable with its derived affordability flag.
type AffordabilityItem struct {
	Redeemable Redeemable
	Affordable bool
}

// AffordabilityView flags each of the source's redeemables against its
// current balance.
func AffordabilityView(source PointsSource, items []Redeemable) []AffordabilityItem {
	var out []AffordabilityItem
	for _, item := range items {
		if item.PointsSourceID != source.ID {
			continue
		}
		out = append(out, AffordabilityItem{
			Redeemable: item,
			Affordable: Affordable(source.Balance, item.Cost),
		})
	}
	return out
}

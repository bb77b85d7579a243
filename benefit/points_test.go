package benefit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homeperks/benefit-engine/benefit"
)

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// =============================================================================
// AFFORDABILITY
// =============================================================================

func TestAffordable(t *testing.T) {
	balance := decimalFromInt(1000)

	if !benefit.Affordable(balance, decimalFromInt(699)) {
		t.Error("699 should be affordable at 1000")
	}
	if !benefit.Affordable(balance, decimalFromInt(1000)) {
		t.Error("exact balance should be affordable")
	}
	if benefit.Affordable(balance, decimalFromInt(1200)) {
		t.Error("1200 should not be affordable at 1000")
	}
}

func TestAffordabilityView_BalanceDrop(t *testing.T) {
	// GIVEN: Balance 23500 and costs {699, 1200, 5000, 20000}
	// THEN: All four affordable; after dropping to 1000, only 699 is

	now := date(2025, time.March, 10)
	sources := benefit.AddPointsSource(nil, benefit.PointsSourceInput{
		MemberID: "m1",
		Name:     "Airline miles",
		Balance:  decimalFromInt(23500),
	}, now)
	src := sources[0]

	var items []benefit.Redeemable
	for _, cost := range []int{699, 1200, 5000, 20000} {
		items = benefit.AddRedeemable(items, benefit.RedeemableInput{
			PointsSourceID: src.ID,
			Name:           "Item",
			Cost:           decimalFromInt(cost),
		}, now)
	}

	view := benefit.AffordabilityView(src, items)
	if len(view) != 4 {
		t.Fatalf("len = %d, want 4", len(view))
	}
	for _, item := range view {
		if !item.Affordable {
			t.Errorf("cost %s should be affordable at 23500", item.Redeemable.Cost)
		}
	}

	dropped := benefit.UpdateBalance(sources, src.ID, decimalFromInt(1000))
	view = benefit.AffordabilityView(dropped[0], items)

	affordable := 0
	for _, item := range view {
		if item.Affordable {
			affordable++
			if !item.Redeemable.Cost.Equal(decimalFromInt(699)) {
				t.Errorf("unexpected affordable cost %s", item.Redeemable.Cost)
			}
		}
	}
	if affordable != 1 {
		t.Errorf("affordable count = %d, want 1", affordable)
	}
}

func TestAffordabilityView_IgnoresOtherSources(t *testing.T) {
	now := date(2025, time.March, 10)
	src := benefit.PointsSource{ID: "p1", Balance: decimalFromInt(100)}

	items := benefit.AddRedeemable(nil, benefit.RedeemableInput{
		PointsSourceID: "p2",
		Name:           "Other program",
		Cost:           decimalFromInt(10),
	}, now)

	if view := benefit.AffordabilityView(src, items); len(view) != 0 {
		t.Errorf("len = %d, want 0", len(view))
	}
}

// =============================================================================
// BALANCE UPDATES
// =============================================================================

func TestUpdateBalance_Immutable(t *testing.T) {
	now := date(2025, time.March, 10)
	sources := benefit.AddPointsSource(nil, benefit.PointsSourceInput{
		Name:    "Hotel points",
		Balance: decimalFromInt(500),
	}, now)

	out := benefit.UpdateBalance(sources, sources[0].ID, decimalFromInt(750))

	if !out[0].Balance.Equal(decimalFromInt(750)) {
		t.Errorf("balance = %s, want 750", out[0].Balance)
	}
	if !sources[0].Balance.Equal(decimalFromInt(500)) {
		t.Error("input mutated")
	}

	same := benefit.UpdateBalance(sources, "nope", decimalFromInt(1))
	if !same[0].Balance.Equal(decimalFromInt(500)) {
		t.Error("missing id should be a no-op")
	}
}

// =============================================================================
// REDEEMABLE CRUD
// =============================================================================

func TestRedeemableCRUD(t *testing.T) {
	now := date(2025, time.March, 10)

	items := benefit.AddRedeemable(nil, benefit.RedeemableInput{
		PointsSourceID: "p1",
		Name:           "Gift card",
		Cost:           decimalFromInt(5000),
	}, now)
	if items[0].ID == "" {
		t.Error("expected generated id")
	}

	cheaper := decimalFromInt(4500)
	updated := benefit.UpdateRedeemable(items, items[0].ID, benefit.RedeemablePatch{Cost: &cheaper})
	if !updated[0].Cost.Equal(cheaper) {
		t.Errorf("cost = %s, want 4500", updated[0].Cost)
	}
	if updated[0].Name != "Gift card" {
		t.Error("untouched field changed")
	}
	if !items[0].Cost.Equal(decimalFromInt(5000)) {
		t.Error("input mutated")
	}

	removed := benefit.RemoveRedeemable(updated, updated[0].ID)
	if len(removed) != 0 {
		t.Errorf("len = %d, want 0", len(removed))
	}
}

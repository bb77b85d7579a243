package benefit_test

import (
	"testing"
	"time"

	"github.com/homeperks/benefit-engine/benefit"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// =============================================================================
// BENEFIT CRUD
// =============================================================================

func TestAddBenefit_GeneratesIDAndCreatedAt(t *testing.T) {
	now := date(2025, time.March, 10)

	out := benefit.AddBenefit(nil, benefit.BenefitInput{
		SourceID: "s1",
		Name:     "Lounge visits",
		Type:     benefit.TypeQuota,
		Quota:    6,
	}, now)

	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].ID == "" {
		t.Error("expected generated id")
	}
	if !out[0].CreatedAt.Equal(now) {
		t.Errorf("createdAt = %s, want %s", out[0].CreatedAt, now)
	}
}

func TestUpdateBenefit_MergesOnlySuppliedFields(t *testing.T) {
	benefits := benefit.AddBenefit(nil, benefit.BenefitInput{
		SourceID: "s1",
		Name:     "Lounge visits",
		Type:     benefit.TypeQuota,
		Quota:    6,
		Memo:     "per card",
	}, date(2025, time.March, 10))
	id := benefits[0].ID

	out := benefit.UpdateBenefit(benefits, id, benefit.BenefitPatch{Quota: intPtr(8)})

	if out[0].Quota != 8 {
		t.Errorf("quota = %d, want 8", out[0].Quota)
	}
	if out[0].Name != "Lounge visits" || out[0].Memo != "per card" {
		t.Error("untouched fields changed")
	}
	if benefits[0].Quota != 6 {
		t.Error("input mutated")
	}
}

func TestUpdateBenefit_MissingIDIsNoOp(t *testing.T) {
	benefits := benefit.AddBenefit(nil, benefit.BenefitInput{Name: "X", Type: benefit.TypeAction}, date(2025, time.March, 10))

	out := benefit.UpdateBenefit(benefits, "nope", benefit.BenefitPatch{Name: strPtr("Y")})

	if len(out) != len(benefits) || out[0].Name != "X" {
		t.Error("missing id should leave the collection unchanged")
	}
}

func TestRemoveBenefit(t *testing.T) {
	benefits := benefit.AddBenefit(nil, benefit.BenefitInput{Name: "X", Type: benefit.TypeAction}, date(2025, time.March, 10))
	benefits = benefit.AddBenefit(benefits, benefit.BenefitInput{Name: "Y", Type: benefit.TypeAction}, date(2025, time.March, 10))

	out := benefit.RemoveBenefit(benefits, benefits[0].ID)

	if len(out) != 1 || out[0].Name != "Y" {
		t.Error("wrong benefit removed")
	}
	if len(benefits) != 2 {
		t.Error("input mutated")
	}

	same := benefit.RemoveBenefit(out, "nope")
	if len(same) != 1 {
		t.Error("missing id should be a no-op")
	}
}

// =============================================================================
// MEMBER AND SOURCE CRUD
// =============================================================================

func TestMemberCRUD(t *testing.T) {
	now := date(2025, time.March, 10)

	members := benefit.AddMember(nil, benefit.MemberInput{Name: "Alice"}, now)
	members = benefit.AddMember(members, benefit.MemberInput{Name: "Bob"}, now)
	if len(members) != 2 {
		t.Fatalf("len = %d, want 2", len(members))
	}

	updated := benefit.UpdateMember(members, members[0].ID, benefit.MemberPatch{Name: strPtr("Alicia")})
	if updated[0].Name != "Alicia" || members[0].Name != "Alice" {
		t.Error("update should copy, not mutate")
	}

	removed := benefit.RemoveMember(updated, updated[1].ID)
	if len(removed) != 1 || removed[0].Name != "Alicia" {
		t.Error("wrong member removed")
	}
}

func TestSourceCRUD_AnchorInheritance(t *testing.T) {
	now := date(2025, time.March, 10)
	anchor := monthlyAnchor(15)

	sources := benefit.AddSource(nil, benefit.SourceInput{
		MemberID:      "m1",
		Name:          "Platinum Card",
		DefaultAnchor: &anchor,
	}, now)

	b := benefit.Benefit{SourceID: sources[0].ID}
	if got := b.EffectiveAnchor(&sources[0]); got == nil || got.Day != 15 {
		t.Error("benefit should inherit the source default anchor")
	}

	own := yearlyAnchor(time.June, 1)
	b.CycleAnchor = &own
	if got := b.EffectiveAnchor(&sources[0]); got.Period != benefit.Yearly {
		t.Error("benefit's own anchor should win")
	}

	if b2 := (benefit.Benefit{}); b2.EffectiveAnchor(nil) != nil {
		t.Error("no anchor anywhere should yield nil")
	}
}

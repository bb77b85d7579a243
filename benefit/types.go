/*
Package benefit provides the core engine for tracking recurring household
membership benefits.

PURPOSE:
  This package contains the pure domain logic for classifying each benefit's
  usage state against its recurring cycle: credit-card perks that reset
  monthly, airline credits that reset yearly, points programs with
  redeemable catalogs. Everything here is synchronous, deterministic, and
  free of I/O.

KEY CONCEPTS IN THIS FILE (types.go):
  - Benefit: A recurring perk with a quota, credit, or one-time action
  - Redemption: An immutable record of one benefit usage
  - PointsSource/Redeemable: A points balance and its catalog
  - Dataset: The aggregate the data service loads and saves

DESIGN PRINCIPLES:
  1. Immutability: CRUD functions return new slices, never mutate inputs
  2. Precision: decimal.Decimal for money and points, never float64
  3. No exceptions: missing ids are no-ops, edge cases clamp or saturate
  4. Derived state: status, ratio, and affordability are computed, not stored

SEE ALSO:
  - cycle.go: Recurrence windows and calendar arithmetic
  - classify.go: Usage ratio, urgency, and status derivation
  - ledger.go: Redemption collection operations
*/
package benefit

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// BENEFIT - A recurring perk attached to a source
// =============================================================================

type BenefitType string

const (
	// TypeQuota is a benefit with N uses per cycle (e.g. 6 lounge visits).
	TypeQuota BenefitType = "quota"
	// TypeCredit is a monetary credit redeemed at most once per cycle.
	TypeCredit BenefitType = "credit"
	// TypeAction is a one-time task (e.g. enroll, activate) with no quota.
	TypeAction BenefitType = "action"
)

type Benefit struct {
	ID       string
	SourceID string
	Name     string
	Type     BenefitType

	// Quota is the allowed uses per cycle. Only meaningful for TypeQuota.
	Quota int

	// CreditAmount is the credit value per cycle. Only meaningful for
	// TypeCredit. nil marks a "no fixed amount" one-click credit carried
	// over from legacy data; the validator rejects nil on create/update.
	CreditAmount *decimal.Decimal

	// Shared pools usage across all household members instead of
	// tracking per member.
	Shared bool

	// CycleAnchor overrides the source's default anchor. nil means the
	// benefit inherits the source anchor (see EffectiveAnchor).
	CycleAnchor *CycleAnchor

	Memo      string
	CreatedAt Date
}

// EffectiveAnchor returns the anchor governing this benefit: its own if set,
// otherwise the source default. Returns nil when neither defines one.
func (b Benefit) EffectiveAnchor(source *Source) *CycleAnchor {
	if b.CycleAnchor != nil {
		return b.CycleAnchor
	}
	if source != nil {
		return source.DefaultAnchor
	}
	return nil
}

// =============================================================================
// REDEMPTION - One usage event, append-only
// =============================================================================

// Redemption records a single use of a benefit. Immutable once created
// except for deletion. BenefitID and MemberID are weak references; removing
// a benefit or member does not cascade here, the caller prunes.
type Redemption struct {
	ID         string
	BenefitID  string
	MemberID   string
	RedeemedAt Date
	Memo       string
}

// =============================================================================
// HOUSEHOLD - Members and benefit sources
// =============================================================================

type Member struct {
	ID        string
	Name      string
	CreatedAt Date
}

// Source is where benefits come from: a credit card, a subscription, a
// loyalty program membership.
type Source struct {
	ID       string
	MemberID string
	Name     string

	// DefaultAnchor is inherited by benefits without their own anchor.
	DefaultAnchor *CycleAnchor

	Memo      string
	CreatedAt Date
}

// =============================================================================
// POINTS - Balance and redeemable catalog
// =============================================================================

type PointsSource struct {
	ID        string
	MemberID  string
	Name      string
	Balance   decimal.Decimal
	CreatedAt Date
}

type Redeemable struct {
	ID             string
	PointsSourceID string
	Name           string
	Cost           decimal.Decimal
	CreatedAt      Date
}

// Affordable reports whether a redeemable priced at cost is within balance.
// Affordability is derived, never stored.
func Affordable(balance, cost decimal.Decimal) bool {
	return cost.LessThanOrEqual(balance)
}

// =============================================================================
// DATASET - The aggregate persisted by the data service
// =============================================================================

// Settings holds household-wide defaults.
type Settings struct {
	// Timezone is the IANA zone benefits are evaluated in (e.g.
	// "America/New_York"). Empty means UTC.
	Timezone string

	// DefaultMemberID is preselected when recording a redemption.
	DefaultMemberID string
}

// Dataset is the full household state. The core operates on it as plain
// data; load/save and mode selection belong to the DataService.
type Dataset struct {
	Members       []Member
	Sources       []Source
	Benefits      []Benefit
	Redemptions   []Redemption
	PointsSources []PointsSource
	Redeemables   []Redeemable
	Settings      Settings
}

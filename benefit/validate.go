/*
validate.go - Input-shape validation for create and update operations

PURPOSE:
  Structured, field-addressable diagnostics for the edit forms. Validation
  is the only failure this engine reports; everything else no-ops, clamps,
  or saturates. An empty result means the input is accepted.

PATCH SEMANTICS:
  Update validation applies each rule only to the fields present in the
  patch. An absent field is fine; a present-but-invalid one is rejected.

NOTE ON CREDIT AMOUNTS:
  The data model allows CreditAmount == nil for legacy "no fixed amount"
  credits, but create/update validation always demands a concrete positive
  value. The stricter form rule wins on the write path.
*/
package benefit

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxNameLength bounds entity names on the write path.
const maxNameLength = 50

// FieldError is a short-lived diagnostic keyed by the offending field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// =============================================================================
// SHARED RULES
// =============================================================================

func validateName(errs []FieldError, name string) []FieldError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if len([]rune(trimmed)) > maxNameLength {
		return append(errs, FieldError{
			Field:   "name",
			Message: fmt.Sprintf("name must be at most %d characters", maxNameLength),
		})
	}
	return errs
}

// validateAnchor checks a recurrence rule's shape: an enumerated period, a
// day in 1-31 (month-end clamping happens later, a day outside the calendar
// never does), and a month in 1-12 for quarterly and yearly anchors. A nil
// anchor means "no cycle" and is always valid.
func validateAnchor(errs []FieldError, field string, a *CycleAnchor) []FieldError {
	if a == nil {
		return errs
	}
	switch a.Period {
	case Monthly, Quarterly, Yearly:
	default:
		return append(errs, FieldError{Field: field, Message: "period must be monthly, quarterly, or yearly"})
	}
	if a.Day < 1 || a.Day > 31 {
		errs = append(errs, FieldError{Field: field, Message: "day must be between 1 and 31"})
	}
	if a.Period != Monthly && (a.Month < time.January || a.Month > time.December) {
		errs = append(errs, FieldError{Field: field, Message: "month must be between 1 and 12"})
	}
	return errs
}

// =============================================================================
// BENEFITS
// =============================================================================

// ValidateBenefitInput checks a create request. Quota benefits need a
// positive integer quota, credit benefits a concrete positive amount,
// action benefits neither.
func ValidateBenefitInput(in BenefitInput) []FieldError {
	var errs []FieldError
	errs = validateName(errs, in.Name)
	errs = validateBenefitType(errs, in.Type)

	switch in.Type {
	case TypeQuota:
		if in.Quota <= 0 {
			errs = append(errs, FieldError{Field: "quota", Message: "quota must be a positive integer"})
		}
	case TypeCredit:
		errs = validateCreditAmount(errs, in.CreditAmount)
	}
	return validateAnchor(errs, "cycleAnchor", in.CycleAnchor)
}

// ValidateBenefitPatch checks an update, applying rules only to the fields
// present. effectiveType is the type the benefit will have after the patch
// is applied, so a quota rule is not enforced on a credit benefit.
func ValidateBenefitPatch(patch BenefitPatch, effectiveType BenefitType) []FieldError {
	var errs []FieldError
	if patch.Name != nil {
		errs = validateName(errs, *patch.Name)
	}
	if patch.Type != nil {
		errs = validateBenefitType(errs, *patch.Type)
	}
	if patch.Quota != nil && effectiveType == TypeQuota && *patch.Quota <= 0 {
		errs = append(errs, FieldError{Field: "quota", Message: "quota must be a positive integer"})
	}
	if patch.CreditAmount != nil && effectiveType == TypeCredit {
		errs = validateCreditAmount(errs, patch.CreditAmount)
	}
	if patch.CycleAnchor != nil {
		errs = validateAnchor(errs, "cycleAnchor", patch.CycleAnchor)
	}
	return errs
}

func validateBenefitType(errs []FieldError, t BenefitType) []FieldError {
	switch t {
	case TypeQuota, TypeCredit, TypeAction:
		return errs
	default:
		return append(errs, FieldError{Field: "type", Message: "type must be quota, credit, or action"})
	}
}

func validateCreditAmount(errs []FieldError, amount *decimal.Decimal) []FieldError {
	if amount == nil {
		return append(errs, FieldError{Field: "creditAmount", Message: "credit amount is required"})
	}
	if !amount.IsPositive() {
		return append(errs, FieldError{Field: "creditAmount", Message: "credit amount must be positive"})
	}
	return errs
}

// =============================================================================
// REDEMPTIONS
// =============================================================================

// ValidateRedemptionInput checks that a redemption references a benefit and
// a member. The references are not resolved here; dangling ids are the
// caller's concern.
func ValidateRedemptionInput(in RedemptionInput) []FieldError {
	var errs []FieldError
	if in.BenefitID == "" {
		errs = append(errs, FieldError{Field: "benefitId", Message: "benefit is required"})
	}
	if in.MemberID == "" {
		errs = append(errs, FieldError{Field: "memberId", Message: "member is required"})
	}
	return errs
}

// =============================================================================
// MEMBERS AND SOURCES
// =============================================================================

func ValidateMemberInput(in MemberInput) []FieldError {
	return validateName(nil, in.Name)
}

func ValidateSourceInput(in SourceInput) []FieldError {
	errs := validateName(nil, in.Name)
	if in.MemberID == "" {
		errs = append(errs, FieldError{Field: "memberId", Message: "member is required"})
	}
	return validateAnchor(errs, "defaultAnchor", in.DefaultAnchor)
}

// ValidateSourcePatch checks a source update field by field.
func ValidateSourcePatch(patch SourcePatch) []FieldError {
	var errs []FieldError
	if patch.Name != nil {
		errs = validateName(errs, *patch.Name)
	}
	if patch.MemberID != nil && *patch.MemberID == "" {
		errs = append(errs, FieldError{Field: "memberId", Message: "member is required"})
	}
	if patch.DefaultAnchor != nil {
		errs = validateAnchor(errs, "defaultAnchor", patch.DefaultAnchor)
	}
	return errs
}

// =============================================================================
// POINTS
// =============================================================================

func ValidatePointsSourceInput(in PointsSourceInput) []FieldError {
	errs := validateName(nil, in.Name)
	if in.Balance.IsNegative() {
		errs = append(errs, FieldError{Field: "balance", Message: "balance must not be negative"})
	}
	return errs
}

// ValidateRedeemableInput checks a redeemable create: name required, cost
// required and non-negative.
func ValidateRedeemableInput(in RedeemableInput) []FieldError {
	errs := validateName(nil, in.Name)
	if in.Cost.IsNegative() {
		errs = append(errs, FieldError{Field: "cost", Message: "cost must not be negative"})
	}
	return errs
}

// ValidateRedeemablePatch checks a redeemable update field by field.
func ValidateRedeemablePatch(patch RedeemablePatch) []FieldError {
	var errs []FieldError
	if patch.Name != nil {
		errs = validateName(errs, *patch.Name)
	}
	if patch.Cost != nil && patch.Cost.IsNegative() {
		errs = append(errs, FieldError{Field: "cost", Message: "cost must not be negative"})
	}
	return errs
}

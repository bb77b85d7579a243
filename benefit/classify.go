/*
classify.go - Benefit status derivation

PURPOSE:
  Turns a benefit's raw state (type, quota, redemption count, days until the
  window closes) into the single status label the UI shows. Classification
  is layered: expiry urgency outranks partial usage, usage outranks the
  default "available".

RULE TABLE:
  Precedence lives in an ordered predicate/result table (statusRules), not
  an if-chain. Adding a state or reordering precedence is a data change.
  First matching rule wins, evaluated top-down:

    1. action without a cycle          -> not_applicable (reminder only)
    2. action                          -> pending
    3. ratio == 1                      -> exhausted
    4. ratio < 1, cycle closing soon   -> expiring_soon
    5. 0 < ratio < 1                   -> partially_used
    6. otherwise                       -> available

SEE ALSO:
  - cycle.go: Window computation feeding DaysLeft
  - ledger.go: RedemptionsInWindow feeding Used
*/
package benefit

// =============================================================================
// STATUS AND URGENCY
// =============================================================================

type Status string

const (
	StatusAvailable     Status = "available"
	StatusPartiallyUsed Status = "partially_used"
	StatusExhausted     Status = "exhausted"
	StatusExpiringSoon  Status = "expiring_soon"
	StatusPending       Status = "pending"
	StatusNotApplicable Status = "not_applicable"
)

type Urgency string

const (
	UrgencyUrgent  Urgency = "urgent"
	UrgencyWarning Urgency = "warning"
	UrgencyNormal  Urgency = "normal"
)

// ClassifyUrgency tiers how close a window is to closing: urgent within 3
// days, warning within 7, normal otherwise. Only meaningful for benefits
// with a cycle; callers without one never reach this.
func ClassifyUrgency(daysUntilExpiry int) Urgency {
	switch {
	case daysUntilExpiry <= 3:
		return UrgencyUrgent
	case daysUntilExpiry <= 7:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// UsageRatio returns used/total saturated to [0, 1]. A zero total yields 0
// rather than dividing by zero; that is deliberate policy, not an error.
func UsageRatio(used, total int) float64 {
	if total == 0 {
		return 0
	}
	ratio := float64(used) / float64(total)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// =============================================================================
// STATUS RULE TABLE
// =============================================================================

// classifierInput is the resolved state a benefit is classified from.
type classifierInput struct {
	Type     BenefitType
	HasCycle bool
	Ratio    float64
	Urgency  Urgency
}

type statusRule struct {
	applies func(classifierInput) bool
	status  Status
}

// statusRules is evaluated top-down; the first match wins. The final rule
// always matches, so ClassifyStatus is total.
var statusRules = []statusRule{
	{func(in classifierInput) bool { return in.Type == TypeAction && !in.HasCycle }, StatusNotApplicable},
	{func(in classifierInput) bool { return in.Type == TypeAction }, StatusPending},
	{func(in classifierInput) bool { return in.Ratio >= 1 }, StatusExhausted},
	{func(in classifierInput) bool {
		return in.HasCycle && in.Ratio < 1 && (in.Urgency == UrgencyUrgent || in.Urgency == UrgencyWarning)
	}, StatusExpiringSoon},
	{func(in classifierInput) bool { return in.Ratio > 0 && in.Ratio < 1 }, StatusPartiallyUsed},
	{func(in classifierInput) bool { return true }, StatusAvailable},
}

func classifyStatus(in classifierInput) Status {
	for _, rule := range statusRules {
		if rule.applies(in) {
			return rule.status
		}
	}
	return StatusAvailable // unreachable, table ends with a catch-all
}

// =============================================================================
// EVALUATION - The view the presentation layer consumes
// =============================================================================

// Evaluation is the derived state for one benefit at one reference date.
type Evaluation struct {
	Window   Window // zero when the benefit has no cycle
	HasCycle bool
	Used     int
	Total    int
	Ratio    float64
	Percent  int // Ratio as 0-100, rounded down
	DaysLeft int // calendar days until Window.End; 0 when no cycle
	Urgency  Urgency
	Status   Status
}

// EvaluateBenefit classifies one benefit against the full redemption
// ledger as of today. The source supplies the fallback anchor for benefits
// without their own; it may be nil.
func EvaluateBenefit(b Benefit, source *Source, ledger []Redemption, today Date) Evaluation {
	ev := Evaluation{Urgency: UrgencyNormal, Total: usageTotal(b)}

	if anchor := b.EffectiveAnchor(source); anchor != nil {
		ev.HasCycle = true
		ev.Window = anchor.WindowFor(today)
		ev.DaysLeft = DaysUntil(ev.Window.End, today)
		ev.Urgency = ClassifyUrgency(ev.DaysLeft)
		ev.Used = len(RedemptionsInWindow(ledger, b.ID, ev.Window))
	} else {
		// No cycle: all-time usage counts against the allowance.
		for _, r := range ledger {
			if r.BenefitID == b.ID {
				ev.Used++
			}
		}
	}

	ev.Ratio = UsageRatio(ev.Used, ev.Total)
	ev.Percent = int(ev.Ratio * 100)
	ev.Status = classifyStatus(classifierInput{
		Type:     b.Type,
		HasCycle: ev.HasCycle,
		Ratio:    ev.Ratio,
		Urgency:  ev.Urgency,
	})
	return ev
}

// EvaluateBenefitForMember evaluates from one member's perspective. Shared
// benefits pool usage across the household, so the member filter applies
// only to non-shared benefits.
func EvaluateBenefitForMember(b Benefit, source *Source, ledger []Redemption, memberID string, today Date) Evaluation {
	if !b.Shared && memberID != "" {
		ledger = RedemptionsForMember(ledger, memberID)
	}
	return EvaluateBenefit(b, source, ledger, today)
}

// usageTotal is the per-cycle allowance: the quota for quota benefits, a
// single redemption for credits, nothing for actions.
func usageTotal(b Benefit) int {
	switch b.Type {
	case TypeQuota:
		return b.Quota
	case TypeCredit:
		return 1
	default:
		return 0
	}
}

// =============================================================================
// DISPLAY LOOKUPS - Total over every status, no fallback branch
// =============================================================================

var statusLabels = map[Status]string{
	StatusAvailable:     "Available",
	StatusPartiallyUsed: "Partially used",
	StatusExhausted:     "Used up",
	StatusExpiringSoon:  "Expiring soon",
	StatusPending:       "Action needed",
	StatusNotApplicable: "Not applicable",
}

var statusColorClasses = map[Status]string{
	StatusAvailable:     "success",
	StatusPartiallyUsed: "info",
	StatusExhausted:     "neutral",
	StatusExpiringSoon:  "warning",
	StatusPending:       "accent",
	StatusNotApplicable: "neutral",
}

// StatusLabel returns the fixed display label for a status.
func StatusLabel(s Status) string { return statusLabels[s] }

// StatusColorClass returns the semantic color category for a status.
func StatusColorClass(s Status) string { return statusColorClasses[s] }

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - DTO suffix: response types returned to clients
  - Create/Update Request prefixes: request body types from clients

AMOUNTS:
  Credit amounts, balances, and costs travel as decimal strings
  (shopspring/decimal's default JSON form); clients may send numbers or
  strings, both unmarshal.

SEE ALSO:
  - handlers.go: Uses these types
  - benefit/types.go: Domain model
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/homeperks/benefit-engine/benefit"
)

// =============================================================================
// CYCLE ANCHORS
// =============================================================================

// AnchorDTO represents a recurrence rule. Month is ignored for monthly
// anchors.
type AnchorDTO struct {
	Period string `json:"period"`
	Day    int    `json:"day"`
	Month  int    `json:"month,omitempty"`
	Label  string `json:"label,omitempty"`
}

func toAnchorDTO(a *benefit.CycleAnchor) *AnchorDTO {
	if a == nil {
		return nil
	}
	return &AnchorDTO{
		Period: string(a.Period),
		Day:    a.Day,
		Month:  int(a.Month),
		Label:  a.Label(),
	}
}

func fromAnchorDTO(dto *AnchorDTO) *benefit.CycleAnchor {
	if dto == nil {
		return nil
	}
	return &benefit.CycleAnchor{
		Period: benefit.CyclePeriod(dto.Period),
		Day:    dto.Day,
		Month:  time.Month(dto.Month),
	}
}

// =============================================================================
// ENTITIES
// =============================================================================

type MemberDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type SourceDTO struct {
	ID            string     `json:"id"`
	MemberID      string     `json:"memberId"`
	Name          string     `json:"name"`
	DefaultAnchor *AnchorDTO `json:"defaultAnchor,omitempty"`
	Memo          string     `json:"memo,omitempty"`
	CreatedAt     string     `json:"createdAt"`
}

type BenefitDTO struct {
	ID           string           `json:"id"`
	SourceID     string           `json:"sourceId"`
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	Quota        int              `json:"quota,omitempty"`
	CreditAmount *decimal.Decimal `json:"creditAmount,omitempty"`
	Shared       bool             `json:"shared"`
	CycleAnchor  *AnchorDTO       `json:"cycleAnchor,omitempty"`
	Memo         string           `json:"memo,omitempty"`
	CreatedAt    string           `json:"createdAt"`
}

type RedemptionDTO struct {
	ID         string `json:"id"`
	BenefitID  string `json:"benefitId"`
	MemberID   string `json:"memberId"`
	RedeemedAt string `json:"redeemedAt"`
	Memo       string `json:"memo,omitempty"`
}

type PointsSourceDTO struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"memberId"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt string          `json:"createdAt"`
}

type RedeemableDTO struct {
	ID             string          `json:"id"`
	PointsSourceID string          `json:"pointsSourceId"`
	Name           string          `json:"name"`
	Cost           decimal.Decimal `json:"cost"`
	Affordable     *bool           `json:"affordable,omitempty"`
	CreatedAt      string          `json:"createdAt"`
}

type SettingsDTO struct {
	Timezone        string `json:"timezone,omitempty"`
	DefaultMemberID string `json:"defaultMemberId,omitempty"`
}

// DatasetDTO is the full household snapshot the client hydrates from.
type DatasetDTO struct {
	Members         []MemberDTO       `json:"members"`
	Sources         []SourceDTO       `json:"sources"`
	Benefits        []BenefitDTO      `json:"benefits"`
	Redemptions     []RedemptionDTO   `json:"redemptions"`
	PointsSources   []PointsSourceDTO `json:"pointsSources"`
	Redeemables     []RedeemableDTO   `json:"redeemables"`
	DefaultSettings SettingsDTO       `json:"defaultSettings"`
}

// =============================================================================
// EVALUATION
// =============================================================================

// WindowDTO is the half-open cycle window [start, end).
type WindowDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// EvaluationDTO is the classifier output the presentation layer consumes
// as opaque view values.
type EvaluationDTO struct {
	BenefitID  string     `json:"benefitId"`
	Window     *WindowDTO `json:"window,omitempty"`
	Used       int        `json:"used"`
	Total      int        `json:"total"`
	Ratio      float64    `json:"ratio"`
	Percent    int        `json:"percent"`
	DaysLeft   int        `json:"daysLeft"`
	Urgency    string     `json:"urgency"`
	Status     string     `json:"status"`
	Label      string     `json:"label"`
	ColorClass string     `json:"colorClass"`
}

func toEvaluationDTO(benefitID string, ev benefit.Evaluation) EvaluationDTO {
	dto := EvaluationDTO{
		BenefitID:  benefitID,
		Used:       ev.Used,
		Total:      ev.Total,
		Ratio:      ev.Ratio,
		Percent:    ev.Percent,
		DaysLeft:   ev.DaysLeft,
		Urgency:    string(ev.Urgency),
		Status:     string(ev.Status),
		Label:      benefit.StatusLabel(ev.Status),
		ColorClass: benefit.StatusColorClass(ev.Status),
	}
	if ev.HasCycle {
		dto.Window = &WindowDTO{Start: ev.Window.Start.String(), End: ev.Window.End.String()}
	}
	return dto
}

// =============================================================================
// REQUESTS
// =============================================================================

type CreateMemberRequest struct {
	Name string `json:"name"`
}

type UpdateMemberRequest struct {
	Name *string `json:"name,omitempty"`
}

type CreateSourceRequest struct {
	MemberID      string     `json:"memberId"`
	Name          string     `json:"name"`
	DefaultAnchor *AnchorDTO `json:"defaultAnchor,omitempty"`
	Memo          string     `json:"memo,omitempty"`
}

type UpdateSourceRequest struct {
	MemberID      *string    `json:"memberId,omitempty"`
	Name          *string    `json:"name,omitempty"`
	DefaultAnchor *AnchorDTO `json:"defaultAnchor,omitempty"`
	Memo          *string    `json:"memo,omitempty"`
}

type CreateBenefitRequest struct {
	SourceID     string           `json:"sourceId"`
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	Quota        int              `json:"quota,omitempty"`
	CreditAmount *decimal.Decimal `json:"creditAmount,omitempty"`
	Shared       bool             `json:"shared,omitempty"`
	CycleAnchor  *AnchorDTO       `json:"cycleAnchor,omitempty"`
	Memo         string           `json:"memo,omitempty"`
}

type UpdateBenefitRequest struct {
	Name         *string          `json:"name,omitempty"`
	Type         *string          `json:"type,omitempty"`
	Quota        *int             `json:"quota,omitempty"`
	CreditAmount *decimal.Decimal `json:"creditAmount,omitempty"`
	Shared       *bool            `json:"shared,omitempty"`
	CycleAnchor  *AnchorDTO       `json:"cycleAnchor,omitempty"`
	Memo         *string          `json:"memo,omitempty"`
}

type CreateRedemptionRequest struct {
	BenefitID  string `json:"benefitId"`
	MemberID   string `json:"memberId"`
	RedeemedAt string `json:"redeemedAt,omitempty"` // YYYY-MM-DD, defaults to today
	Memo       string `json:"memo,omitempty"`
}

type CreatePointsSourceRequest struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
}

type UpdatePointsSourceRequest struct {
	MemberID *string          `json:"memberId,omitempty"`
	Name     *string          `json:"name,omitempty"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

type CreateRedeemableRequest struct {
	PointsSourceID string          `json:"pointsSourceId"`
	Name           string          `json:"name"`
	Cost           decimal.Decimal `json:"cost"`
}

type UpdateRedeemableRequest struct {
	Name *string          `json:"name,omitempty"`
	Cost *decimal.Decimal `json:"cost,omitempty"`
}

type UpdateSettingsRequest struct {
	Timezone        *string `json:"timezone,omitempty"`
	DefaultMemberID *string `json:"defaultMemberId,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FieldErrorDTO mirrors benefit.FieldError on the wire.
type FieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResponse carries field-scoped diagnostics for forms.
type ValidationResponse struct {
	Errors []FieldErrorDTO `json:"errors"`
}

func toValidationResponse(errs []benefit.FieldError) ValidationResponse {
	out := ValidationResponse{Errors: make([]FieldErrorDTO, len(errs))}
	for i, e := range errs {
		out.Errors[i] = FieldErrorDTO{Field: e.Field, Message: e.Message}
	}
	return out
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toMemberDTO(m benefit.Member) MemberDTO {
	return MemberDTO{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt.String()}
}

func toSourceDTO(s benefit.Source) SourceDTO {
	return SourceDTO{
		ID:            s.ID,
		MemberID:      s.MemberID,
		Name:          s.Name,
		DefaultAnchor: toAnchorDTO(s.DefaultAnchor),
		Memo:          s.Memo,
		CreatedAt:     s.CreatedAt.String(),
	}
}

func toBenefitDTO(b benefit.Benefit) BenefitDTO {
	return BenefitDTO{
		ID:           b.ID,
		SourceID:     b.SourceID,
		Name:         b.Name,
		Type:         string(b.Type),
		Quota:        b.Quota,
		CreditAmount: b.CreditAmount,
		Shared:       b.Shared,
		CycleAnchor:  toAnchorDTO(b.CycleAnchor),
		Memo:         b.Memo,
		CreatedAt:    b.CreatedAt.String(),
	}
}

func toRedemptionDTO(r benefit.Redemption) RedemptionDTO {
	return RedemptionDTO{
		ID:         r.ID,
		BenefitID:  r.BenefitID,
		MemberID:   r.MemberID,
		RedeemedAt: r.RedeemedAt.String(),
		Memo:       r.Memo,
	}
}

func toPointsSourceDTO(ps benefit.PointsSource) PointsSourceDTO {
	return PointsSourceDTO{
		ID:        ps.ID,
		MemberID:  ps.MemberID,
		Name:      ps.Name,
		Balance:   ps.Balance,
		CreatedAt: ps.CreatedAt.String(),
	}
}

func toRedeemableDTO(item benefit.Redeemable) RedeemableDTO {
	return RedeemableDTO{
		ID:             item.ID,
		PointsSourceID: item.PointsSourceID,
		Name:           item.Name,
		Cost:           item.Cost,
		CreatedAt:      item.CreatedAt.String(),
	}
}

func toDatasetDTO(ds benefit.Dataset) DatasetDTO {
	dto := DatasetDTO{
		Members:       make([]MemberDTO, len(ds.Members)),
		Sources:       make([]SourceDTO, len(ds.Sources)),
		Benefits:      make([]BenefitDTO, len(ds.Benefits)),
		Redemptions:   make([]RedemptionDTO, len(ds.Redemptions)),
		PointsSources: make([]PointsSourceDTO, len(ds.PointsSources)),
		Redeemables:   make([]RedeemableDTO, len(ds.Redeemables)),
		DefaultSettings: SettingsDTO{
			Timezone:        ds.Settings.Timezone,
			DefaultMemberID: ds.Settings.DefaultMemberID,
		},
	}
	for i, m := range ds.Members {
		dto.Members[i] = toMemberDTO(m)
	}
	for i, s := range ds.Sources {
		dto.Sources[i] = toSourceDTO(s)
	}
	for i, b := range ds.Benefits {
		dto.Benefits[i] = toBenefitDTO(b)
	}
	for i, r := range ds.Redemptions {
		dto.Redemptions[i] = toRedemptionDTO(r)
	}
	for i, ps := range ds.PointsSources {
		dto.PointsSources[i] = toPointsSourceDTO(ps)
	}
	for i, item := range ds.Redeemables {
		dto.Redeemables[i] = toRedeemableDTO(item)
	}
	return dto
}

/*
crud.go - Immutable collection operations for household entities

PURPOSE:
  Add/update/remove over the Dataset's entity slices. Every function returns
  a new slice and leaves its input untouched. Updates merge only the fields
  present in the patch; a missing id is a silent no-op, never an error.
*/
package benefit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// BENEFITS
// =============================================================================

// BenefitInput is the caller-supplied portion of a new benefit.
type BenefitInput struct {
	SourceID     string
	Name         string
	Type         BenefitType
	Quota        int
	CreditAmount *decimal.Decimal
	Shared       bool
	CycleAnchor  *CycleAnchor
	Memo         string
}

// BenefitPatch carries a partial update; nil fields are left untouched.
type BenefitPatch struct {
	Name         *string
	Type         *BenefitType
	Quota        *int
	CreditAmount *decimal.Decimal
	Shared       *bool
	CycleAnchor  *CycleAnchor
	Memo         *string
}

// AddBenefit appends a new benefit with a generated id and createdAt.
func AddBenefit(benefits []Benefit, in BenefitInput, now Date) []Benefit {
	out := make([]Benefit, len(benefits), len(benefits)+1)
	copy(out, benefits)
	return append(out, Benefit{
		ID:           uuid.NewString(),
		SourceID:     in.SourceID,
		Name:         in.Name,
		Type:         in.Type,
		Quota:        in.Quota,
		CreditAmount: in.CreditAmount,
		Shared:       in.Shared,
		CycleAnchor:  in.CycleAnchor,
		Memo:         in.Memo,
		CreatedAt:    now,
	})
}

// UpdateBenefit merges the patch into the matching benefit. No-op if the id
// is not found.
func UpdateBenefit(benefits []Benefit, id string, patch BenefitPatch) []Benefit {
	out := make([]Benefit, len(benefits))
	copy(out, benefits)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Name != nil {
			out[i].Name = *patch.Name
		}
		if patch.Type != nil {
			out[i].Type = *patch.Type
		}
		if patch.Quota != nil {
			out[i].Quota = *patch.Quota
		}
		if patch.CreditAmount != nil {
			out[i].CreditAmount = patch.CreditAmount
		}
		if patch.Shared != nil {
			out[i].Shared = *patch.Shared
		}
		if patch.CycleAnchor != nil {
			out[i].CycleAnchor = patch.CycleAnchor
		}
		if patch.Memo != nil {
			out[i].Memo = *patch.Memo
		}
		break
	}
	return out
}

// RemoveBenefit removes the matching benefit. Redemptions referencing it
// are weak references; the caller prunes them if desired.
func RemoveBenefit(benefits []Benefit, id string) []Benefit {
	out := make([]Benefit, 0, len(benefits))
	for _, b := range benefits {
		if b.ID == id {
			continue
		}
		out = append(out, b)
	}
	return out
}

// FindBenefit returns the benefit with the given id, or nil.
func FindBenefit(benefits []Benefit, id string) *Benefit {
	for i := range benefits {
		if benefits[i].ID == id {
			return &benefits[i]
		}
	}
	return nil
}

// =============================================================================
// MEMBERS
// =============================================================================

type MemberInput struct {
	Name string
}

type MemberPatch struct {
	Name *string
}

func AddMember(members []Member, in MemberInput, now Date) []Member {
	out := make([]Member, len(members), len(members)+1)
	copy(out, members)
	return append(out, Member{ID: uuid.NewString(), Name: in.Name, CreatedAt: now})
}

func UpdateMember(members []Member, id string, patch MemberPatch) []Member {
	out := make([]Member, len(members))
	copy(out, members)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Name != nil {
			out[i].Name = *patch.Name
		}
		break
	}
	return out
}

func RemoveMember(members []Member, id string) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if m.ID == id {
			continue
		}
		out = append(out, m)
	}
	return out
}

// =============================================================================
// SOURCES
// =============================================================================

type SourceInput struct {
	MemberID      string
	Name          string
	DefaultAnchor *CycleAnchor
	Memo          string
}

type SourcePatch struct {
	MemberID      *string
	Name          *string
	DefaultAnchor *CycleAnchor
	Memo          *string
}

func AddSource(sources []Source, in SourceInput, now Date) []Source {
	out := make([]Source, len(sources), len(sources)+1)
	copy(out, sources)
	return append(out, Source{
		ID:            uuid.NewString(),
		MemberID:      in.MemberID,
		Name:          in.Name,
		DefaultAnchor: in.DefaultAnchor,
		Memo:          in.Memo,
		CreatedAt:     now,
	})
}

func UpdateSource(sources []Source, id string, patch SourcePatch) []Source {
	out := make([]Source, len(sources))
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
		if patch.DefaultAnchor != nil {
			out[i].DefaultAnchor = patch.DefaultAnchor
		}
		if patch.Memo != nil {
			out[i].Memo = *patch.Memo
		}
		break
	}
	return out
}

func RemoveSource(sources []Source, id string) []Source {
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.ID == id {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FindSource returns the source with the given id, or nil.
func FindSource(sources []Source, id string) *Source {
	for i := range sources {
		if sources[i].ID == id {
			return &sources[i]
		}
	}
	return nil
}

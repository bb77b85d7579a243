/*
handlers.go - HTTP API handlers for the benefit engine

PURPOSE:
  Exposes the benefit engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates every state change to the pure core
  functions in the benefit package.

ENDPOINTS:
  Dataset:
    GET    /api/dataset                       Full snapshot

  Household:
    POST/PUT/DELETE /api/members[/{id}]
    POST/PUT/DELETE /api/sources[/{id}]

  Benefits:
    GET    /api/benefits                      List benefits
    GET    /api/benefits/status               Evaluate all benefits
    GET    /api/benefits/{id}/status          Evaluate one benefit (?on=date)
    POST/PUT/DELETE /api/benefits[/{id}]

  Redemptions:
    POST   /api/redemptions
    DELETE /api/redemptions/{id}

  Points:
    POST/PUT/DELETE /api/points-sources[/{id}]
    GET    /api/points-sources/{id}/affordability
    POST/PUT/DELETE /api/redeemables[/{id}]

  Settings:
    PUT    /api/settings

ARCHITECTURE:
  The Handler owns the working Dataset in memory, guarded by a RWMutex.
  Mutations go through the immutable core functions and replace the held
  snapshot; the Syncer then persists it after the debounce interval.

ERROR HANDLING:
  - 400 with {errors: [{field, message}]} for validation failures
  - 400 with {error} for malformed bodies or dates
  - 404 where a response requires an entity that does not exist
  Core-level no-ops (removing a missing redemption) still return 204: the
  engine treats missing ids as non-errors and so does the API.

SEE ALSO:
  - dto.go: Request/response data structures
  - syncer.go: Debounced persistence
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homeperks/benefit-engine/benefit"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service benefit.DataService
	Mode    benefit.Mode
	Syncer  *Syncer

	// Today is the injected observable evaluation date. When nil, the
	// handler resolves today from the dataset's timezone per request.
	Today *benefit.ObservableDate

	mu sync.RWMutex
	ds benefit.Dataset
}

// NewHandler creates a handler bound to one dataset mode.
func NewHandler(svc benefit.DataService, mode benefit.Mode, syncer *Syncer) *Handler {
	return &Handler{Service: svc, Mode: mode, Syncer: syncer}
}

// LoadDataset hydrates the working dataset from the data service.
func (h *Handler) LoadDataset(ctx context.Context) error {
	ds, err := h.Service.Load(ctx, h.Mode)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.ds = ds
	h.mu.Unlock()
	return nil
}

// snapshot returns the current dataset under a read lock.
func (h *Handler) snapshot() benefit.Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ds
}

// mutate applies fn to the working dataset and schedules persistence.
// fn runs under the write lock, so it must not call today or snapshot;
// handlers resolve the date first and close over it.
func (h *Handler) mutate(fn func(*benefit.Dataset)) benefit.Dataset {
	h.mu.Lock()
	fn(&h.ds)
	snap := h.ds
	h.mu.Unlock()

	if h.Syncer != nil {
		h.Syncer.Schedule(snap)
	}
	return snap
}

// today resolves the evaluation date: the injected observable if present,
// otherwise the current date in the dataset's timezone.
func (h *Handler) today() benefit.Date {
	if h.Today != nil {
		return h.Today.Get()
	}
	tz := h.snapshot().Settings.Timezone
	loc, err := time.LoadLocation(tz)
	if tz == "" || err != nil {
		loc = time.UTC
	}
	return benefit.Today(loc)
}

// referenceDate honors an explicit ?on=YYYY-MM-DD override.
func (h *Handler) referenceDate(r *http.Request) (benefit.Date, bool) {
	on := r.URL.Query().Get("on")
	if on == "" {
		return h.today(), true
	}
	d, err := benefit.ParseDate(on)
	if err != nil {
		return benefit.Date{}, false
	}
	return d, true
}

// =============================================================================
// DATASET
// =============================================================================

// GetDataset returns the full household snapshot.
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toDatasetDTO(h.snapshot()))
}

// UpdateSettings merges the supplied settings fields.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			writeValidation(w, []benefit.FieldError{{Field: "timezone", Message: "unknown timezone"}})
			return
		}
	}

	snap := h.mutate(func(ds *benefit.Dataset) {
		if req.Timezone != nil {
			ds.Settings.Timezone = *req.Timezone
		}
		if req.DefaultMemberID != nil {
			ds.Settings.DefaultMemberID = *req.DefaultMemberID
		}
	})
	writeJSON(w, http.StatusOK, SettingsDTO{
		Timezone:        snap.Settings.Timezone,
		DefaultMemberID: snap.Settings.DefaultMemberID,
	})
}

// =============================================================================
// MEMBERS
// =============================================================================

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ds := h.snapshot()
	dtos := make([]MemberDTO, len(ds.Members))
	for i, m := range ds.Members {
		dtos[i] = toMemberDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := benefit.MemberInput{Name: req.Name}
	if errs := benefit.ValidateMemberInput(in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	now := h.today()
	snap := h.mutate(func(ds *benefit.Dataset) {
		ds.Members = benefit.AddMember(ds.Members, in, now)
	})
	writeJSON(w, http.StatusCreated, toMemberDTO(snap.Members[len(snap.Members)-1]))
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != nil {
		if errs := benefit.ValidateMemberInput(benefit.MemberInput{Name: *req.Name}); len(errs) > 0 {
			writeValidation(w, errs)
			return
		}
	}

	h.mutate(func(ds *benefit.Dataset) {
		ds.Members = benefit.UpdateMember(ds.Members, id, benefit.MemberPatch{Name: req.Name})
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(func(ds *benefit.Dataset) {
		ds.Members = benefit.RemoveMember(ds.Members, id)
	})
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SOURCES
// =============================================================================

func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	ds := h.snapshot()
	dtos := make([]SourceDTO, len(ds.Sources))
	for i, s := range ds.Sources {
		dtos[i] = toSourceDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := benefit.SourceInput{
		MemberID:      req.MemberID,
		Name:          req.Name,
		DefaultAnchor: fromAnchorDTO(req.DefaultAnchor),
		Memo:          req.Memo,
	}
	if errs := benefit.ValidateSourceInput(in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	now := h.today()
	snap := h.mutate(func(ds *benefit.Dataset) {
		ds.Sources = benefit.AddSource(ds.Sources, in, now)
	})
	writeJSON(w, http.StatusCreated, toSourceDTO(snap.Sources[len(snap.Sources)-1]))
}

func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch := benefit.SourcePatch{
		MemberID:      req.MemberID,
		Name:          req.Name,
		DefaultAnchor: fromAnchorDTO(req.DefaultAnchor),
		Memo:          req.Memo,
	}
	if errs := benefit.ValidateSourcePatch(patch); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	h.mutate(func(ds *benefit.Dataset) {
		ds.Sources = benefit.UpdateSource(ds.Sources, id, patch)
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(func(ds *benefit.Dataset) {
		ds.Sources = benefit.RemoveSource(ds.Sources, id)
	})
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BENEFITS
// =============================================================================

func (h *Handler) ListBenefits(w http.ResponseWriter, r *http.Request) {
	ds := h.snapshot()
	dtos := make([]BenefitDTO, len(ds.Benefits))
	for i, b := range ds.Benefits {
		dtos[i] = toBenefitDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateBenefit(w http.ResponseWriter, r *http.Request) {
	var req CreateBenefitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := benefit.BenefitInput{
		SourceID:     req.SourceID,
		Name:         req.Name,
		Type:         benefit.BenefitType(req.Type),
		Quota:        req.Quota,
		CreditAmount: req.CreditAmount,
		Shared:       req.Shared,
		CycleAnchor:  fromAnchorDTO(req.CycleAnchor),
		Memo:         req.Memo,
	}
	if errs := benefit.ValidateBenefitInput(in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	now := h.today()
	snap := h.mutate(func(ds *benefit.Dataset) {
		ds.Benefits = benefit.AddBenefit(ds.Benefits, in, now)
	})
	writeJSON(w, http.StatusCreated, toBenefitDTO(snap.Benefits[len(snap.Benefits)-1]))
}

func (h *Handler) UpdateBenefit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateBenefitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing := benefit.FindBenefit(h.snapshot().Benefits, id)
	if existing == nil {
		writeError(w, http.StatusNotFound, "Benefit not found")
		return
	}

	patch := benefit.BenefitPatch{
		Name:         req.Name,
		Quota:        req.Quota,
		CreditAmount: req.CreditAmount,
		Shared:       req.Shared,
		CycleAnchor:  fromAnchorDTO(req.CycleAnchor),
		Memo:         req.Memo,
	}
	effectiveType := existing.Type
	if req.Type != nil {
		t := benefit.BenefitType(*req.Type)
		patch.Type = &t
		effectiveType = t
	}
	if errs := benefit.ValidateBenefitPatch(patch, effectiveType); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	snap := h.mutate(func(ds *benefit.Dataset) {
		ds.Benefits = benefit.UpdateBenefit(ds.Benefits, id, patch)
	})
	// The benefit may have been deleted between the existence check and the
	// mutation; re-find under the snapshot we just produced.
	updated := benefit.FindBenefit(snap.Benefits, id)
	if updated == nil {
		writeError(w, http.StatusNotFound, "Benefit not found")
		return
	}
	writeJSON(w, http.StatusOK, toBenefitDTO(*updated))
}

func (h *Handler) DeleteBenefit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(func(ds *benefit.Dataset) {
		ds.Benefits = benefit.RemoveBenefit(ds.Benefits, id)
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetBenefitStatus evaluates one benefit as of today, or ?on=YYYY-MM-DD.
func (h *Handler) GetBenefitStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ref, ok := h.referenceDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)")
		return
	}

	ds := h.snapshot()
	b := benefit.FindBenefit(ds.Benefits, id)
	if b == nil {
		writeError(w, http.StatusNotFound, "Benefit not found")
		return
	}

	source := benefit.FindSource(ds.Sources, b.SourceID)
	memberID := r.URL.Query().Get("memberId")
	ev := benefit.EvaluateBenefitForMember(*b, source, ds.Redemptions, memberID, ref)
	writeJSON(w, http.StatusOK, toEvaluationDTO(b.ID, ev))
}

// ListBenefitStatuses evaluates every benefit in one pass, the shape the
// dashboard renders from.
func (h *Handler) ListBenefitStatuses(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.referenceDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)")
		return
	}

	ds := h.snapshot()
	dtos := make([]EvaluationDTO, len(ds.Benefits))
	for i, b := range ds.Benefits {
		source := benefit.FindSource(ds.Sources, b.SourceID)
		dtos[i] = toEvaluationDTO(b.ID, benefit.EvaluateBenefit(b, source, ds.Redemptions, ref))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REDEMPTIONS
// =============================================================================

func (h *Handler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	benefitID := r.URL.Query().Get("benefitId")
	ds := h.snapshot()

	var dtos []RedemptionDTO
	for _, red := range ds.Redemptions {
		if benefitID != "" && red.BenefitID != benefitID {
			continue
		}
		dtos = append(dtos, toRedemptionDTO(red))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateRedemption(w http.ResponseWriter, r *http.Request) {
	var req CreateRedemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := benefit.RedemptionInput{
		BenefitID: req.BenefitID,
		MemberID:  req.MemberID,
		Memo:      req.Memo,
	}
	if req.RedeemedAt != "" {
		d, err := benefit.ParseDate(req.RedeemedAt)
		if err != nil {
			writeValidation(w, []benefit.FieldError{{Field: "redeemedAt", Message: "date must be YYYY-MM-DD"}})
			return
		}
		in.RedeemedAt = d
	}
	if in.MemberID == "" {
		in.MemberID = h.snapshot().Settings.DefaultMemberID
	}
	if errs := benefit.ValidateRedemptionInput(in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	now := h.today()
	snap := h.mutate(func(ds *benefit.Dataset) {
		ds.Redemptions = benefit.AddRedemption(ds.Redemptions, in, now)
	})
	writeJSON(w, http.StatusCreated, toRedemptionDTO(snap.Redemptions[len(snap.Redemptions)-1]))
}

func (h *Handler) DeleteRedemption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(func(ds *benefit.Dataset) {
		ds.Redemptions = benefit.RemoveRedemption(ds.Redemptions, id)
	})
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// POINTS SOURCES
// =============================================================================

func (h *Handler) ListPointsSources(w http.ResponseWriter, r *http.Request) {
	ds := h.snapshot()
	dtos := make([]PointsSourceDTO, len(ds.PointsSources))
	for i, ps := range ds.PointsSources {
		dtos[i] = toPointsSourceDTO(ps)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePointsSource(w http.ResponseWriter, r *http.Request) {
	var req CreatePointsSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := benefit.PointsSourceInput{MemberID: req.MemberID, Name: req.Name, Balance: req.Balance}
	if errs := benefit.ValidatePointsSourceInput(in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	now := h.today()
	snap := h.mutate(func(ds *benefit.Dataset) {
		ds.PointsSources = benefit.AddPointsSource(ds.PointsSources, in, now)
	})
	writeJSON(w, http.StatusCreated, toPointsSourceDTO(snap.PointsSources[len(snap.PointsSources)-1]))
}

func (h *Handler) UpdatePointsSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdatePointsSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Balance != nil && req.Balance.IsNegative() {
		writeValidation(w, []benefit.FieldError{{Field: "balance", Message: "balance must not be negative"}})
		return
	}

	h.mutate(func(ds *benefit.Dataset) {
		ds.PointsSources = benefit.UpdatePointsSource(ds.PointsSources, id, benefit.PointsSourcePatch{
			MemberID: req.MemberID,
			Name:     req.Name,
			Balance:  req.Balance,
		})
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePointsSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(func(ds *benefit.Dataset) {
		ds.PointsSources = benefit.RemovePointsSource(ds.PointsSources, id)
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetAffordability returns the source's redeemables flagged against its
// current balance.
func (h *Handler) GetAffordability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ds := h.snapshot()

	source := benefit.FindPointsSource(ds.PointsSources, id)
	if source == nil {
		writeError(w, http.StatusNotFound, "Points source not found")
		return
	}

	items := benefit.AffordabilityView(*source, ds.Redeemables)
	dtos := make([]RedeemableDTO, len(items))
	for i, item := range items {
		dto := toRedeemableDTO(item.Redeemable)
		affordable := item.Affordable
		dto.Affordable = &affordable
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REDEEMABLES
// =============================================================================

func (h *Handler) CreateRedeemable(w http.ResponseWriter, r *http.Request) {
	var req CreateRedeemableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := benefit.RedeemableInput{PointsSourceID: req.PointsSourceID, Name: req.Name, Cost: req.Cost}
	if errs := benefit.ValidateRedeemableInput(in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	now := h.today()
	snap := h.mutate(func(ds *benefit.Dataset) {
		ds.Redeemables = benefit.AddRedeemable(ds.Redeemables, in, now)
	})
	writeJSON(w, http.StatusCreated, toRedeemableDTO(snap.Redeemables[len(snap.Redeemables)-1]))
}

func (h *Handler) UpdateRedeemable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateRedeemableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := benefit.RedeemablePatch{Name: req.Name, Cost: req.Cost}
	if errs := benefit.ValidateRedeemablePatch(patch); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	h.mutate(func(ds *benefit.Dataset) {
		ds.Redeemables = benefit.UpdateRedeemable(ds.Redeemables, id, patch)
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteRedeemable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(func(ds *benefit.Dataset) {
		ds.Redeemables = benefit.RemoveRedeemable(ds.Redeemables, id)
	})
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeValidation(w http.ResponseWriter, errs []benefit.FieldError) {
	writeJSON(w, http.StatusBadRequest, toValidationResponse(errs))
}

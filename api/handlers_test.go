package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeperks/benefit-engine/api"
	"github.com/homeperks/benefit-engine/benefit"
	"github.com/homeperks/benefit-engine/benefit/store"
)

func decimalVal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// newServer wires a handler against an in-memory store with a fixed
// evaluation date, the full middleware stack included.
func newServer(t *testing.T, seed benefit.Dataset, today benefit.Date) (*httptest.Server, *store.Memory) {
	t.Helper()

	svc := store.NewMemory()
	require.NoError(t, svc.Save(context.Background(), benefit.ModeTest, seed))

	syncer := api.NewSyncer(svc, benefit.ModeTest, 10*time.Millisecond)
	h := api.NewHandler(svc, benefit.ModeTest, syncer)
	h.Today = benefit.NewObservableDate(today)
	require.NoError(t, h.LoadDataset(context.Background()))

	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, svc
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func seedDataset() benefit.Dataset {
	monthly := benefit.CycleAnchor{Period: benefit.Monthly, Day: 1}
	return benefit.Dataset{
		Members: []benefit.Member{
			{ID: "m1", Name: "Alice", CreatedAt: benefit.NewDate(2025, time.January, 1)},
		},
		Sources: []benefit.Source{
			{ID: "s1", MemberID: "m1", Name: "Platinum Card", CreatedAt: benefit.NewDate(2025, time.January, 1)},
		},
		Benefits: []benefit.Benefit{
			{ID: "b1", SourceID: "s1", Name: "Lounge visits", Type: benefit.TypeQuota,
				Quota: 6, Shared: true, CycleAnchor: &monthly,
				CreatedAt: benefit.NewDate(2025, time.January, 1)},
		},
		Settings: benefit.Settings{DefaultMemberID: "m1"},
	}
}

// =============================================================================
// DATASET AND MEMBERS
// =============================================================================

func TestGetDataset(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp, err := http.Get(srv.URL + "/api/dataset")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.DatasetDTO
	decodeInto(t, resp, &dto)
	assert.Len(t, dto.Members, 1)
	assert.Len(t, dto.Benefits, 1)
	assert.Equal(t, "m1", dto.DefaultSettings.DefaultMemberID)
}

func TestCreateMember_ValidatesName(t *testing.T) {
	srv, _ := newServer(t, benefit.Dataset{}, benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/members", api.CreateMemberRequest{Name: "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var validation api.ValidationResponse
	decodeInto(t, resp, &validation)
	require.Len(t, validation.Errors, 1)
	assert.Equal(t, "name", validation.Errors[0].Field)
}

func TestCreateMember_ReturnsCreatedEntity(t *testing.T) {
	srv, _ := newServer(t, benefit.Dataset{}, benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/members", api.CreateMemberRequest{Name: "Alice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var dto api.MemberDTO
	decodeInto(t, resp, &dto)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "Alice", dto.Name)
	assert.Equal(t, "2025-03-10", dto.CreatedAt)
}

func TestDeleteMember_MissingIDStillNoContent(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/members/nope", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCreateMember_WorksWithoutInjectedToday(t *testing.T) {
	// With no observable injected, the handler resolves today from the
	// dataset's timezone per request. Creates must still complete: the
	// date is resolved before the write lock is taken, never under it.

	svc := store.NewMemory()
	h := api.NewHandler(svc, benefit.ModeTest, nil)
	require.NoError(t, h.LoadDataset(context.Background()))
	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)

	done := make(chan int, 1)
	go func() {
		resp, err := http.Post(srv.URL+"/api/members", "application/json",
			bytes.NewBufferString(`{"name":"Alice"}`))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	select {
	case status := <-done:
		assert.Equal(t, http.StatusCreated, status)
	case <-time.After(2 * time.Second):
		t.Fatal("create never returned without an injected today value")
	}
}

// =============================================================================
// BENEFITS AND STATUS
// =============================================================================

func TestCreateBenefit_CreditWithoutAmountRejected(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/benefits", api.CreateBenefitRequest{
		SourceID: "s1",
		Name:     "Dining credit",
		Type:     "credit",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var validation api.ValidationResponse
	decodeInto(t, resp, &validation)
	require.Len(t, validation.Errors, 1)
	assert.Equal(t, "creditAmount", validation.Errors[0].Field)
}

func TestCreateBenefit_MalformedAnchorRejected(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/benefits", api.CreateBenefitRequest{
		SourceID:    "s1",
		Name:        "Lounge visits",
		Type:        "quota",
		Quota:       6,
		CycleAnchor: &api.AnchorDTO{Period: "monthly", Day: 0},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var validation api.ValidationResponse
	decodeInto(t, resp, &validation)
	require.Len(t, validation.Errors, 1)
	assert.Equal(t, "cycleAnchor", validation.Errors[0].Field)
}

func TestUpdateBenefit_DeletedBenefitIs404(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/benefits/b1", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	name := "Renamed"
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/benefits/b1", api.UpdateBenefitRequest{Name: &name})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetBenefitStatus_EvaluatesAtReferenceDate(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp, err := http.Get(srv.URL + "/api/benefits/b1/status?on=2025-03-30")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.EvaluationDTO
	decodeInto(t, resp, &dto)
	assert.Equal(t, "b1", dto.BenefitID)
	assert.Equal(t, 2, dto.DaysLeft)
	assert.Equal(t, "urgent", dto.Urgency)
	assert.Equal(t, "expiring_soon", dto.Status, "unused allowance still expires")
	require.NotNil(t, dto.Window)
	assert.Equal(t, "2025-03-01", dto.Window.Start)
	assert.Equal(t, "2025-04-01", dto.Window.End)
}

func TestGetBenefitStatus_BadDate(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp, err := http.Get(srv.URL + "/api/benefits/b1/status?on=March-1st")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetBenefitStatus_UnknownBenefit(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp, err := http.Get(srv.URL + "/api/benefits/nope/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListBenefitStatuses(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp, err := http.Get(srv.URL + "/api/benefits/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dtos []api.EvaluationDTO
	decodeInto(t, resp, &dtos)
	require.Len(t, dtos, 1)
	assert.Equal(t, "success", dtos[0].ColorClass)
}

// =============================================================================
// REDEMPTIONS
// =============================================================================

func TestCreateRedemption_DefaultsMemberAndDate(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/redemptions", api.CreateRedemptionRequest{
		BenefitID: "b1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var dto api.RedemptionDTO
	decodeInto(t, resp, &dto)
	assert.Equal(t, "m1", dto.MemberID, "member should default from settings")
	assert.Equal(t, "2025-03-10", dto.RedeemedAt, "date should default to today")
}

func TestRedemption_MovesStatusToPartiallyUsed(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/redemptions", api.CreateRedemptionRequest{
		BenefitID: "b1", MemberID: "m1", RedeemedAt: "2025-03-05",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/api/benefits/b1/status")
	require.NoError(t, err)
	var dto api.EvaluationDTO
	decodeInto(t, resp, &dto)
	assert.Equal(t, "partially_used", dto.Status)
	assert.Equal(t, 1, dto.Used)
}

// =============================================================================
// POINTS AND AFFORDABILITY
// =============================================================================

func TestAffordabilityEndpoint(t *testing.T) {
	ds := seedDataset()
	ds.PointsSources = []benefit.PointsSource{{
		ID: "p1", MemberID: "m1", Name: "Airline miles",
		Balance:   decimalVal(t, "1000"),
		CreatedAt: benefit.NewDate(2025, time.January, 1),
	}}
	ds.Redeemables = []benefit.Redeemable{
		{ID: "x1", PointsSourceID: "p1", Name: "Upgrade", Cost: decimalVal(t, "699"),
			CreatedAt: benefit.NewDate(2025, time.January, 1)},
		{ID: "x2", PointsSourceID: "p1", Name: "Flight", Cost: decimalVal(t, "5000"),
			CreatedAt: benefit.NewDate(2025, time.January, 1)},
	}
	srv, _ := newServer(t, ds, benefit.NewDate(2025, time.March, 10))

	resp, err := http.Get(srv.URL + "/api/points-sources/p1/affordability")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dtos []api.RedeemableDTO
	decodeInto(t, resp, &dtos)
	require.Len(t, dtos, 2)
	for _, dto := range dtos {
		require.NotNil(t, dto.Affordable)
		switch dto.ID {
		case "x1":
			assert.True(t, *dto.Affordable)
		case "x2":
			assert.False(t, *dto.Affordable)
		}
	}
}

func TestAffordability_UnknownSource(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	resp, err := http.Get(srv.URL + "/api/points-sources/nope/affordability")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// SETTINGS AND PERSISTENCE
// =============================================================================

func TestUpdateSettings_RejectsUnknownTimezone(t *testing.T) {
	srv, _ := newServer(t, seedDataset(), benefit.NewDate(2025, time.March, 10))

	bad := "Mars/Olympus_Mons"
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/settings", api.UpdateSettingsRequest{Timezone: &bad})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMutations_ReachTheStoreAfterDebounce(t *testing.T) {
	srv, svc := newServer(t, benefit.Dataset{}, benefit.NewDate(2025, time.March, 10))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/members", api.CreateMemberRequest{Name: "Alice"})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Eventually(t, func() bool {
		ds, err := svc.Load(context.Background(), benefit.ModeTest)
		return err == nil && len(ds.Members) == 1
	}, time.Second, 10*time.Millisecond, "debounced save never landed")
}

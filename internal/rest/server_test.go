package rest_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/civicwatch/civicwatch/internal/database/memstore"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/rest"
	"github.com/civicwatch/civicwatch/internal/rest/middleware/identity"
	restTypes "github.com/civicwatch/civicwatch/internal/rest/types"
	"github.com/civicwatch/civicwatch/internal/setup"
	"github.com/civicwatch/civicwatch/internal/setup/config"
	"github.com/civicwatch/civicwatch/internal/voting"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	handler http.Handler
	store   *memstore.Store
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	logger := zaptest.NewLogger(t)
	cfg := config.Default()
	cfg.API.RateLimit.BurstSize = 1000

	store := memstore.New()
	services := setup.NewServices(
		&cfg.Common,
		setup.MemoryStores(store),
		nil,
		alerting.NewInlineDispatcher(context.Background(), logger),
		logger,
	)
	t.Cleanup(services.Close)

	return &testServer{
		handler: rest.NewServer(services, &cfg.API, logger),
		store:   store,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, actor *types.Actor) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set(identity.HeaderUserID, actor.ID.String())
		req.Header.Set(identity.HeaderUserRole, actor.Role.String())
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func citizen() *types.Actor {
	return &types.Actor{ID: uuid.New(), Role: enum.ActorRoleCitizen}
}

func ptr[T any](v T) *T { return &v }

func voteBody(voteType enum.VoteType) restTypes.CastVoteRequest {
	return restTypes.CastVoteRequest{VoteType: ptr(voteType)}
}

func crimeReport() restTypes.SubmitReportRequest {
	return restTypes.SubmitReportRequest{
		Category:  ptr(enum.ReportCategoryCrime),
		Priority:  ptr(enum.ReportPriorityHigh),
		Title:     "Armed robbery",
		AreaLabel: "Congo Cross",
		Latitude:  ptr(8.4840),
		Longitude: ptr(-13.2340),
	}
}

func TestSubmitReportRequiresIdentity(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	rec := s.do(t, http.MethodPost, "/v1/reports", crimeReport(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := decode[restTypes.ErrorResponse](t, rec)
	assert.Equal(t, restTypes.ErrorCodeUnauthenticated, resp.Code)
}

func TestSubmitReportValidation(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	missing := crimeReport()
	missing.Longitude = nil
	rec := s.do(t, http.MethodPost, "/v1/reports", missing, citizen())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	outOfRange := crimeReport()
	outOfRange.Latitude = ptr[float64](123)
	rec = s.do(t, http.MethodPost, "/v1/reports", outOfRange, citizen())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports", strings.NewReader(`{"category":"VOLCANO"}`))
	req.Header.Set(identity.HeaderUserID, uuid.NewString())
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	for _, field := range []string{"category", "priority"} {
		body := `{"category":"CRIME","priority":"HIGH","latitude":8.484,"longitude":-13.234}`
		body = strings.Replace(body, `"`+field+`"`, `"omitted"`, 1)
		req := httptest.NewRequest(http.MethodPost, "/v1/reports", strings.NewReader(body))
		req.Header.Set(identity.HeaderUserID, uuid.NewString())
		raw := httptest.NewRecorder()
		s.handler.ServeHTTP(raw, req)
		assert.Equal(t, http.StatusBadRequest, raw.Code, field)
	}

	rec = s.do(t, http.MethodGet, "/v1/reports/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/reports/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportVotingFlow(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	author := citizen()
	rec := s.do(t, http.MethodPost, "/v1/reports", crimeReport(), author)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	report := decode[types.Report](t, rec)
	assert.Equal(t, enum.ReportStatusPending, report.Status)
	assert.Equal(t, author.ID, report.AuthorID)

	votePath := "/v1/reports/" + report.ID.String() + "/vote"

	// Authors cannot vote on their own report
	rec = s.do(t, http.MethodPut, votePath, voteBody(enum.VoteTypeUp), author)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A vote type is required
	voter := citizen()
	req := httptest.NewRequest(http.MethodPut, votePath, strings.NewReader(`{}`))
	req.Header.Set(identity.HeaderUserID, voter.ID.String())
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
	assert.Equal(t, restTypes.ErrorCodeInvalidArgument, decode[restTypes.ErrorResponse](t, raw).Code)

	rec = s.do(t, http.MethodGet, "/v1/reports/"+report.ID.String()+"/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.VoteCounts{}, decode[types.VoteStats](t, rec).Counts)

	// Voters must be nearby
	far := restTypes.CastVoteRequest{VoteType: ptr(enum.VoteTypeUp), Latitude: ptr(8.60), Longitude: ptr(-13.2340)}
	rec = s.do(t, http.MethodPut, votePath, far, citizen())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	farResp := decode[restTypes.ErrorResponse](t, rec)
	require.NotNil(t, farResp.DistanceKm)
	assert.InDelta(t, 12.9, *farResp.DistanceKm, 0.2)
	require.NotNil(t, farResp.LimitKm)
	assert.InDelta(t, 5.0, *farResp.LimitKm, 1e-9)

	near := restTypes.CastVoteRequest{VoteType: ptr(enum.VoteTypeUp), Latitude: ptr(8.4850), Longitude: ptr(-13.2350)}
	rec = s.do(t, http.MethodPut, votePath, near, voter)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[voting.CastVoteResult](t, rec)
	assert.False(t, result.Revote)
	assert.Equal(t, 1, result.Verification.Score)

	rec = s.do(t, http.MethodPut, votePath, voteBody(enum.VoteTypeDown), voter)
	require.Equal(t, http.StatusOK, rec.Code)
	result = decode[voting.CastVoteResult](t, rec)
	assert.True(t, result.Revote)
	assert.Equal(t, -1, result.Verification.Score)

	rec = s.do(t, http.MethodGet, votePath, nil, voter)
	require.Equal(t, http.StatusOK, rec.Code)
	vote := decode[types.Vote](t, rec)
	assert.Equal(t, enum.VoteTypeDown, vote.VoteType)

	rec = s.do(t, http.MethodGet, "/v1/reports/"+report.ID.String()+"/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[types.VoteStats](t, rec)
	assert.Equal(t, types.VoteCounts{Down: 1}, stats.Counts)

	rec = s.do(t, http.MethodDelete, votePath, nil, voter)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[types.VerificationSummary](t, rec)
	assert.Equal(t, 0, summary.Score)

	rec = s.do(t, http.MethodDelete, votePath, nil, voter)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, votePath, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAlertFlow(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	for range 3 {
		rec := s.do(t, http.MethodPost, "/v1/reports", crimeReport(), citizen())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/v1/alerts?lat=8.4840&lng=-13.2340&radius=2000", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	alerts := decode[[]types.Alert](t, rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, enum.AlertSeverityLow, alerts[0].Severity)
	assert.Equal(t, 3, alerts[0].ReportCount)
	assert.Equal(t, "Crime alert near Congo Cross", alerts[0].Title)

	alertPath := "/v1/alerts/" + alerts[0].ID.String()

	rec = s.do(t, http.MethodGet, alertPath, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, alertPath+"/resolve", nil, citizen())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	authority := &types.Actor{ID: uuid.New(), Role: enum.ActorRoleAuthority}
	rec = s.do(t, http.MethodPost, alertPath+"/resolve", nil, authority)
	require.Equal(t, http.StatusOK, rec.Code)
	resolved := decode[types.Alert](t, rec)
	assert.False(t, resolved.IsActive)
	assert.Equal(t, authority.ID, resolved.ResolvedBy)

	rec = s.do(t, http.MethodPost, alertPath+"/resolve", nil, authority)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/alerts?lat=8.4840&lng=-13.2340", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]types.Alert](t, rec))

	rec = s.do(t, http.MethodGet, "/v1/alerts?lat=north&lng=-13.2340", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/alerts?lat=95&lng=-13.2340", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

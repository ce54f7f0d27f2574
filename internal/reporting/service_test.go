package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/memstore"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/civicwatch/civicwatch/internal/reporting"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type createdRecorder struct {
	reports []*types.Report
}

func (r *createdRecorder) ReportCreated(_ context.Context, report *types.Report) {
	r.reports = append(r.reports, report)
}

func validRequest() *reporting.SubmitRequest {
	return &reporting.SubmitRequest{
		AuthorID:    uuid.New(),
		Category:    enum.ReportCategoryHazard,
		Priority:    enum.ReportPriorityMedium,
		Title:       "  Open manhole on Main Street  ",
		Description: "Cover missing since last night\n",
		AreaLabel:   " Brookfields ",
		Location:    &geo.Point{Lat: 8.4657, Lng: -13.2317},
	}
}

func TestSubmitStoresPendingReport(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	recorder := &createdRecorder{}
	now := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	service := reporting.NewService(store, recorder, zaptest.NewLogger(t)).
		WithClock(func() time.Time { return now })

	req := validRequest()
	report, err := service.Submit(t.Context(), req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, req.AuthorID, report.AuthorID)
	assert.Equal(t, enum.ReportStatusPending, report.Status)
	assert.Equal(t, "Open manhole on Main Street", report.Title)
	assert.Equal(t, "Cover missing since last night", report.Description)
	assert.Equal(t, "Brookfields", report.AreaLabel)
	assert.Equal(t, now, report.CreatedAt)
	assert.False(t, report.Verified)
	assert.Zero(t, report.VerificationScore)

	stored, err := service.Get(t.Context(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report, stored)

	require.Len(t, recorder.reports, 1)
	assert.Equal(t, report.ID, recorder.reports[0].ID)
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(req *reporting.SubmitRequest)
		wantErr error
	}{
		{
			name:    "unknown category",
			mutate:  func(req *reporting.SubmitRequest) { req.Category = enum.ReportCategory(99) },
			wantErr: types.ErrInvalidCategory,
		},
		{
			name:    "unknown priority",
			mutate:  func(req *reporting.SubmitRequest) { req.Priority = enum.ReportPriority(-1) },
			wantErr: types.ErrInvalidPriority,
		},
		{
			name:    "missing location",
			mutate:  func(req *reporting.SubmitRequest) { req.Location = nil },
			wantErr: types.ErrMissingCoordinates,
		},
		{
			name:    "latitude out of range",
			mutate:  func(req *reporting.SubmitRequest) { req.Location = &geo.Point{Lat: -90.5, Lng: 0} },
			wantErr: geo.ErrInvalidCoordinates,
		},
		{
			name:    "longitude out of range",
			mutate:  func(req *reporting.SubmitRequest) { req.Location = &geo.Point{Lat: 0, Lng: 180.1} },
			wantErr: geo.ErrInvalidCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := &createdRecorder{}
			service := reporting.NewService(memstore.New(), recorder, zaptest.NewLogger(t))

			req := validRequest()
			tt.mutate(req)

			_, err := service.Submit(t.Context(), req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, recorder.reports)
		})
	}
}

func TestGetUnknownReport(t *testing.T) {
	t.Parallel()

	service := reporting.NewService(memstore.New(), nil, zaptest.NewLogger(t))

	_, err := service.Get(t.Context(), uuid.New())
	require.ErrorIs(t, err, types.ErrReportNotFound)
}

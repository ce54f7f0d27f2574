package alerting_test

import (
	"context"
	"testing"
	"time"

	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/civicwatch/civicwatch/internal/database/memstore"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var center = geo.Point{Lat: 8.4657, Lng: -13.2317}

type fixture struct {
	store   *memstore.Store
	service *alerting.Service
	now     time.Time
}

func setupService(t *testing.T) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := memstore.New()
	now := time.Now()
	clock := func() time.Time { return now }
	params := alerting.DefaultParams()

	detector := alerting.NewDetector(store, params, clock, logger)
	synthesizer := alerting.NewSynthesizer(store, alerting.NewLocalLocker(), params, clock, logger)
	service := alerting.NewService(
		detector, synthesizer, store,
		alerting.NewInlineDispatcher(context.Background(), logger),
		alerting.DefaultDetectionTimeout, logger,
	)

	return &fixture{store: store, service: service, now: now}
}

type reportOption func(*types.Report)

func withPriority(priority enum.ReportPriority) reportOption {
	return func(r *types.Report) { r.Priority = priority }
}

func withCategory(category enum.ReportCategory) reportOption {
	return func(r *types.Report) { r.Category = category }
}

func withAge(age time.Duration) reportOption {
	return func(r *types.Report) { r.CreatedAt = r.CreatedAt.Add(-age) }
}

func withOffset(northMeters, eastMeters float64) reportOption {
	return func(r *types.Report) {
		p := geo.Offset(center, northMeters, eastMeters)
		r.Latitude, r.Longitude = p.Lat, p.Lng
	}
}

func verified() reportOption {
	return func(r *types.Report) {
		r.Verified = true
		r.VerificationScore = 10
	}
}

// addReport stores a HIGH crime report at the center, created a minute ago.
func (f *fixture) addReport(t *testing.T, opts ...reportOption) *types.Report {
	t.Helper()

	created := f.now.Add(-time.Minute)
	report := &types.Report{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		Category:  enum.ReportCategoryCrime,
		Priority:  enum.ReportPriorityHigh,
		Status:    enum.ReportStatusPending,
		Title:     "Robbery",
		AreaLabel: "Lumley",
		Latitude:  center.Lat,
		Longitude: center.Lng,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(report)
	}

	require.NoError(t, f.store.CreateReport(t.Context(), report))

	return report
}

// submit stores a report and runs detection for it as a new submission would.
func (f *fixture) submit(t *testing.T, opts ...reportOption) *types.Report {
	t.Helper()

	report := f.addReport(t, opts...)
	f.service.ReportCreated(t.Context(), report)

	return report
}

package alerting

import (
	"context"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
)

// ReportFinder runs spatio-temporal report queries.
type ReportFinder interface {
	// FindNearbyReports may over-approximate the radius; callers re-check exact distance.
	FindNearbyReports(ctx context.Context, query *types.NearbyQuery) ([]*types.Report, error)
}

// AlertStore persists alerts.
type AlertStore interface {
	// FindActiveAlert returns types.ErrAlertNotFound if no active alert covers the query.
	FindActiveAlert(ctx context.Context, query *types.ActiveAlertQuery) (*types.Alert, error)
	CreateAlert(ctx context.Context, alert *types.Alert) error
	// AddReport adds the report to the alert's member set if it is not already there.
	// It returns types.ErrAlertInactive if the alert was resolved.
	AddReport(ctx context.Context, alertID, reportID uuid.UUID) (*types.Alert, error)
	UpdateSeverity(ctx context.Context, alertID uuid.UUID, severity enum.AlertSeverity, title, message string) error
	// ResolveAlert returns types.ErrAlertInactive if the alert was already resolved.
	ResolveAlert(ctx context.Context, alertID, resolverID uuid.UUID, resolvedAt time.Time) (*types.Alert, error)
	GetAlert(ctx context.Context, id uuid.UUID) (*types.Alert, error)
	ListActiveAlerts(ctx context.Context, center geo.Point, radiusMeters float64) ([]*types.Alert, error)
}

// Locker provides mutual exclusion across every process sharing the store.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

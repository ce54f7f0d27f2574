package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/dbretry"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AlertModel handles database operations for area alerts.
type AlertModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAlert creates a new alert model.
func NewAlert(db *bun.DB, logger *zap.Logger) *AlertModel {
	return &AlertModel{
		db:     db,
		logger: logger.Named("db_alert"),
	}
}

// FindActiveAlert returns the active alert of the category whose centroid is
// nearest to the query center, within its radius.
func (r *AlertModel) FindActiveAlert(ctx context.Context, query *types.ActiveAlertQuery) (*types.Alert, error) {
	box := geo.BoundingBox(query.Center, query.RadiusMeters)

	candidates, err := dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Alert, error) {
		var alerts []*types.Alert
		err := r.db.NewSelect().
			Model(&alerts).
			Where("is_active = true").
			Where("category = ?", query.Category).
			Where("created_at >= ?", query.Since).
			Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
			Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
			Scan(ctx)
		return alerts, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find active alert: %w", err)
	}

	var (
		best     *types.Alert
		bestDist float64
	)
	for _, alert := range candidates {
		dist := geo.DistanceMeters(query.Center, alert.Location())
		if dist > query.RadiusMeters {
			continue
		}
		if best == nil || dist < bestDist {
			best, bestDist = alert, dist
		}
	}

	if best == nil {
		return nil, types.ErrAlertNotFound
	}

	return best, nil
}

// CreateAlert inserts a new alert.
func (r *AlertModel) CreateAlert(ctx context.Context, alert *types.Alert) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(alert).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
		return nil
	})
}

// AddReport appends a report to the active alert's member set. Adding a report that is
// already a member leaves the alert unchanged; a resolved alert is never reopened.
func (r *AlertModel) AddReport(ctx context.Context, alertID, reportID uuid.UUID) (*types.Alert, error) {
	alert, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.Alert, error) {
		var alert types.Alert
		err := r.db.NewUpdate().
			Model(&alert).
			Set("report_ids = array_append(report_ids, ?::uuid)", reportID).
			Set("report_count = cardinality(report_ids) + 1").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", alertID).
			Where("is_active = true").
			Where("NOT (?::uuid = ANY(report_ids))", reportID).
			Returning("*").
			Scan(ctx, &alert)
		return &alert, err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Missing, resolved or a member already
			current, err := r.GetAlert(ctx, alertID)
			if err != nil {
				return nil, err
			}
			if !current.IsActive {
				return nil, types.ErrAlertInactive
			}
			return current, nil
		}
		return nil, fmt.Errorf("failed to add report to alert: %w", err)
	}

	r.logger.Debug("Added report to alert",
		zap.String("alertID", alertID.String()),
		zap.String("reportID", reportID.String()),
		zap.Int("reportCount", alert.ReportCount))

	return alert, nil
}

// UpdateSeverity sets the severity and message of an alert.
func (r *AlertModel) UpdateSeverity(
	ctx context.Context, alertID uuid.UUID, severity enum.AlertSeverity, title, message string,
) error {
	result, err := dbretry.Operation(ctx, func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().
			Model((*types.Alert)(nil)).
			Set("severity = ?", severity).
			Set("title = ?", title).
			Set("message = ?", message).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", alertID).
			Exec(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to update alert severity: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return types.ErrAlertNotFound
	}

	return nil
}

// ResolveAlert deactivates an active alert.
func (r *AlertModel) ResolveAlert(
	ctx context.Context, alertID, resolverID uuid.UUID, resolvedAt time.Time,
) (*types.Alert, error) {
	alert, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.Alert, error) {
		var alert types.Alert
		err := r.db.NewUpdate().
			Model(&alert).
			Set("is_active = false").
			Set("resolved_at = ?", resolvedAt).
			Set("resolved_by = ?", resolverID).
			Set("updated_at = ?", resolvedAt).
			Where("id = ?", alertID).
			Where("is_active = true").
			Returning("*").
			Scan(ctx, &alert)
		return &alert, err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := r.GetAlert(ctx, alertID); err != nil {
				return nil, err
			}
			return nil, types.ErrAlertInactive
		}
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}

	return alert, nil
}

// GetAlert retrieves an alert by its ID.
func (r *AlertModel) GetAlert(ctx context.Context, id uuid.UUID) (*types.Alert, error) {
	alert, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.Alert, error) {
		var alert types.Alert
		err := r.db.NewSelect().
			Model(&alert).
			Where("id = ?", id).
			Scan(ctx)
		return &alert, err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return alert, nil
}

// ListActiveAlerts returns the active alerts within a radius of a point, newest first.
func (r *AlertModel) ListActiveAlerts(
	ctx context.Context, center geo.Point, radiusMeters float64,
) ([]*types.Alert, error) {
	box := geo.BoundingBox(center, radiusMeters)

	candidates, err := dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Alert, error) {
		var alerts []*types.Alert
		err := r.db.NewSelect().
			Model(&alerts).
			Where("is_active = true").
			Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
			Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
			Order("created_at DESC").
			Scan(ctx)
		return alerts, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}

	alerts := make([]*types.Alert, 0, len(candidates))
	for _, alert := range candidates {
		if geo.Within(center, alert.Location(), radiusMeters) {
			alerts = append(alerts, alert)
		}
	}

	return alerts, nil
}

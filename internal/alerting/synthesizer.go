package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Synthesizer turns clusters into alerts. At most one active alert exists per
// category and area; later clusters join it instead of creating another.
type Synthesizer struct {
	alerts AlertStore
	locker Locker
	params Params
	now    func() time.Time
	logger *zap.Logger
}

// NewSynthesizer creates a new alert synthesizer.
func NewSynthesizer(alerts AlertStore, locker Locker, params Params, now func() time.Time, logger *zap.Logger) *Synthesizer {
	if now == nil {
		now = time.Now
	}

	return &Synthesizer{
		alerts: alerts,
		locker: locker,
		params: params,
		now:    now,
		logger: logger.Named("alert_synthesizer"),
	}
}

// Synthesize creates or updates the alert for a cluster. It returns nil
// without error when the cluster is below the alert threshold.
func (s *Synthesizer) Synthesize(ctx context.Context, cluster *Cluster) (*types.Alert, error) {
	if cluster == nil || cluster.TotalCount < s.params.AlertThreshold {
		return nil, nil
	}

	report := cluster.Report

	var alert *types.Alert
	err := s.locker.WithLock(ctx, lockKey(report.Category), func(ctx context.Context) error {
		existing, err := s.alerts.FindActiveAlert(ctx, &types.ActiveAlertQuery{
			Category:     report.Category,
			Center:       report.Location(),
			RadiusMeters: s.params.ClusterRadiusMeters,
			Since:        s.now().Add(-s.params.TimeWindow),
		})
		switch {
		case err == nil:
			alert, err = s.merge(ctx, existing, cluster)
			if errors.Is(err, types.ErrAlertInactive) {
				// Resolved after lookup, start a fresh alert
				s.logger.Debug("Alert resolved during merge",
					zap.String("alertID", existing.ID.String()),
					zap.String("reportID", report.ID.String()))
				alert, err = s.create(ctx, cluster)
			}
			return err
		case errors.Is(err, types.ErrAlertNotFound):
			alert, err = s.create(ctx, cluster)
			return err
		default:
			return fmt.Errorf("failed to find active alert: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return alert, nil
}

// Resolve deactivates an alert. Only authorities may resolve alerts and a
// resolved alert can never be reopened.
func (s *Synthesizer) Resolve(ctx context.Context, alertID uuid.UUID, actor types.Actor) (*types.Alert, error) {
	if !actor.IsAuthority() {
		return nil, types.ErrNotAuthority
	}

	alert, err := s.alerts.GetAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !alert.IsActive {
		return nil, types.ErrAlertInactive
	}

	// Serialized with synthesis so a merge never lands on a resolving alert
	var resolved *types.Alert
	err = s.locker.WithLock(ctx, lockKey(alert.Category), func(ctx context.Context) error {
		resolved, err = s.alerts.ResolveAlert(ctx, alertID, actor.ID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Alert resolved",
		zap.String("alertID", alertID.String()),
		zap.String("resolvedBy", actor.ID.String()),
		zap.Int("reportCount", resolved.ReportCount))

	return resolved, nil
}

// create persists a new alert holding every report of the cluster.
func (s *Synthesizer) create(ctx context.Context, cluster *Cluster) (*types.Alert, error) {
	report := cluster.Report
	severity := SeverityFor(cluster.TotalCount)
	title, message := buildMessage(
		report.Category, cluster.TotalCount, areaName(report),
		s.params.ClusterRadiusMeters, s.params.TimeWindow, severity,
	)

	now := s.now()
	alert := &types.Alert{
		ID:           uuid.New(),
		Category:     report.Category,
		Severity:     severity,
		Title:        title,
		Message:      message,
		Latitude:     report.Latitude,
		Longitude:    report.Longitude,
		RadiusMeters: s.params.ClusterRadiusMeters,
		ReportCount:  cluster.TotalCount,
		ReportIDs:    cluster.ReportIDs(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.alerts.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.logger.Info("Alert created",
		zap.String("alertID", alert.ID.String()),
		zap.String("category", alert.Category.String()),
		zap.String("severity", alert.Severity.String()),
		zap.Int("reportCount", alert.ReportCount))

	return alert, nil
}

// merge adds the triggering report to an existing alert and escalates its
// severity when the cluster has grown. Severity never goes down.
func (s *Synthesizer) merge(ctx context.Context, existing *types.Alert, cluster *Cluster) (*types.Alert, error) {
	report := cluster.Report

	alert, err := s.alerts.AddReport(ctx, existing.ID, report.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add report to alert: %w", err)
	}

	count := max(cluster.TotalCount, alert.ReportCount)
	severity := SeverityFor(count)
	if severity <= alert.Severity {
		s.logger.Debug("Report joined alert",
			zap.String("alertID", alert.ID.String()),
			zap.String("reportID", report.ID.String()),
			zap.Int("reportCount", alert.ReportCount))
		return alert, nil
	}

	title, message := buildMessage(
		alert.Category, count, areaName(report),
		alert.RadiusMeters, s.params.TimeWindow, severity,
	)
	if err := s.alerts.UpdateSeverity(ctx, alert.ID, severity, title, message); err != nil {
		return nil, fmt.Errorf("failed to escalate alert: %w", err)
	}

	s.logger.Info("Alert escalated",
		zap.String("alertID", alert.ID.String()),
		zap.String("from", alert.Severity.String()),
		zap.String("to", severity.String()),
		zap.Int("reportCount", alert.ReportCount))

	alert.Severity = severity
	alert.Title = title
	alert.Message = message

	return alert, nil
}

// lockKey serializes alert synthesis per category.
func lockKey(category enum.ReportCategory) string {
	return "alerts:" + category.String()
}

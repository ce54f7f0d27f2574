package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs the detection pipeline for reports and exposes alert queries.
type Service struct {
	detector    *Detector
	synthesizer *Synthesizer
	alerts      AlertStore
	dispatcher  Dispatcher
	timeout     time.Duration
	logger      *zap.Logger
}

// NewService creates a new alerting service.
func NewService(
	detector *Detector,
	synthesizer *Synthesizer,
	alerts AlertStore,
	dispatcher Dispatcher,
	timeout time.Duration,
	logger *zap.Logger,
) *Service {
	if timeout <= 0 {
		timeout = DefaultDetectionTimeout
	}

	return &Service{
		detector:    detector,
		synthesizer: synthesizer,
		alerts:      alerts,
		dispatcher:  dispatcher,
		timeout:     timeout,
		logger:      logger.Named("alert_service"),
	}
}

// ReportCreated schedules detection for a newly submitted report.
func (s *Service) ReportCreated(_ context.Context, report *types.Report) {
	s.schedule("report_created", report)
}

// ReportVerified schedules detection for a report that just became verified.
func (s *Service) ReportVerified(_ context.Context, report *types.Report) {
	s.schedule("report_verified", report)
}

// Check runs the detection pipeline synchronously and returns the created or
// updated alert, or nil when no alert was warranted.
func (s *Service) Check(ctx context.Context, report *types.Report) (*types.Alert, error) {
	cluster, err := s.detector.FindCluster(ctx, report)
	if err != nil {
		return nil, err
	}

	alert, err := s.synthesizer.Synthesize(ctx, cluster)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize alert: %w", err)
	}

	return alert, nil
}

// Resolve deactivates an alert on behalf of an authority.
func (s *Service) Resolve(ctx context.Context, alertID uuid.UUID, actor types.Actor) (*types.Alert, error) {
	return s.synthesizer.Resolve(ctx, alertID, actor)
}

// Get returns an alert by id.
func (s *Service) Get(ctx context.Context, alertID uuid.UUID) (*types.Alert, error) {
	return s.alerts.GetAlert(ctx, alertID)
}

// ActiveNear lists the active alerts whose centroid lies within the radius of a point.
func (s *Service) ActiveNear(ctx context.Context, center geo.Point, radiusMeters float64) ([]*types.Alert, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}

	alerts, err := s.alerts.ListActiveAlerts(ctx, center, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}

	// The store may prefilter with a bounding box
	result := make([]*types.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if geo.Within(center, alert.Location(), radiusMeters) {
			result = append(result, alert)
		}
	}

	return result, nil
}

// schedule hands the report to the dispatcher. Failures never reach the caller.
func (s *Service) schedule(name string, report *types.Report) {
	snapshot := *report

	err := s.dispatcher.Dispatch(name, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		alert, err := s.Check(ctx, &snapshot)
		if err != nil {
			level := zap.ErrorLevel
			if errors.Is(err, context.DeadlineExceeded) {
				level = zap.WarnLevel
			}
			s.logger.Log(level, "Alert detection failed",
				zap.String("trigger", name),
				zap.String("reportID", snapshot.ID.String()),
				zap.Error(err))
			return
		}

		if alert != nil {
			s.logger.Debug("Alert detection finished",
				zap.String("trigger", name),
				zap.String("reportID", snapshot.ID.String()),
				zap.String("alertID", alert.ID.String()),
				zap.Int("reportCount", alert.ReportCount))
		}
	})
	if err != nil {
		s.logger.Warn("Failed to dispatch alert detection",
			zap.String("trigger", name),
			zap.String("reportID", report.ID.String()),
			zap.Error(err))
	}
}

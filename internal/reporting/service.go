package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportStore persists reports.
type ReportStore interface {
	CreateReport(ctx context.Context, report *types.Report) error
	// GetReport returns types.ErrReportNotFound if the report does not exist.
	GetReport(ctx context.Context, id uuid.UUID) (*types.Report, error)
}

// CreationListener is notified after a report has been stored.
// Implementations must not block.
type CreationListener interface {
	ReportCreated(ctx context.Context, report *types.Report)
}

// SubmitRequest contains the fields a citizen provides for a new report.
type SubmitRequest struct {
	AuthorID    uuid.UUID
	Category    enum.ReportCategory
	Priority    enum.ReportPriority
	Title       string
	Description string
	AreaLabel   string
	Location    *geo.Point
}

// Service accepts new incident reports.
type Service struct {
	reports  ReportStore
	listener CreationListener
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a new report intake service. The listener may be nil.
func NewService(reports ReportStore, listener CreationListener, logger *zap.Logger) *Service {
	return &Service{
		reports:  reports,
		listener: listener,
		now:      time.Now,
		logger:   logger.Named("report_service"),
	}
}

// WithClock replaces the clock used for timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit validates and stores a new pending report, then hands it to the
// creation listener. Listener failures never fail the submission.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*types.Report, error) {
	if !req.Category.IsAReportCategory() {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidCategory, req.Category)
	}
	if !req.Priority.IsAReportPriority() {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidPriority, req.Priority)
	}
	if req.Location == nil {
		return nil, types.ErrMissingCoordinates
	}
	if err := req.Location.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	report := &types.Report{
		ID:          uuid.New(),
		AuthorID:    req.AuthorID,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      enum.ReportStatusPending,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		AreaLabel:   strings.TrimSpace(req.AreaLabel),
		Latitude:    req.Location.Lat,
		Longitude:   req.Location.Lng,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Info("Report submitted",
		zap.String("reportID", report.ID.String()),
		zap.String("category", report.Category.String()),
		zap.String("priority", report.Priority.String()))

	if s.listener != nil {
		s.listener.ReportCreated(ctx, report)
	}

	return report, nil
}

// Get returns a report by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*types.Report, error) {
	return s.reports.GetReport(ctx, id)
}

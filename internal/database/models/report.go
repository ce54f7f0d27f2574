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

// ReportModel handles database operations for reports.
type ReportModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewReport creates a new report model.
func NewReport(db *bun.DB, logger *zap.Logger) *ReportModel {
	return &ReportModel{
		db:     db,
		logger: logger.Named("db_report"),
	}
}

// CreateReport inserts a new report.
func (r *ReportModel) CreateReport(ctx context.Context, report *types.Report) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(report).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
		return nil
	})
}

// GetReport retrieves a report by its ID.
func (r *ReportModel) GetReport(ctx context.Context, id uuid.UUID) (*types.Report, error) {
	report, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.Report, error) {
		var report types.Report
		err := r.db.NewSelect().
			Model(&report).
			Where("id = ?", id).
			Scan(ctx)
		return &report, err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// UpdateVerification writes the vote counts and verification state of a report.
// The status only changes when the report is sent to review, and never leaves a
// terminal status.
func (r *ReportModel) UpdateVerification(
	ctx context.Context, id uuid.UUID, update *types.VerificationUpdate,
) (*types.Report, error) {
	report, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.Report, error) {
		var report types.Report
		err := r.db.NewUpdate().
			Model(&report).
			Set("up_vote_count = ?", update.Counts.Up).
			Set("down_vote_count = ?", update.Counts.Down).
			Set("flag_count = ?", update.Counts.Flags).
			Set("verification_score = ?", update.VerificationScore).
			Set("verified = ?", update.Verified).
			Set("status = CASE WHEN ? AND status NOT IN (?, ?) THEN ? ELSE status END",
				update.MarkUnderReview, enum.ReportStatusResolved, enum.ReportStatusClosed,
				enum.ReportStatusUnderReview).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Returning("*").
			Scan(ctx, &report)
		return &report, err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to update report verification: %w", err)
	}

	r.logger.Debug("Updated report verification",
		zap.String("reportID", id.String()),
		zap.Int("score", report.VerificationScore),
		zap.Bool("verified", report.Verified))

	return report, nil
}

// FindNearbyReports returns reports of a category created since a time within a
// radius of a point. The radius is applied as a bounding box, then refined by
// great-circle distance.
func (r *ReportModel) FindNearbyReports(ctx context.Context, query *types.NearbyQuery) ([]*types.Report, error) {
	box := geo.BoundingBox(query.Center, query.RadiusMeters)

	candidates, err := dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Report, error) {
		var reports []*types.Report
		q := r.db.NewSelect().
			Model(&reports).
			Where("category = ?", query.Category).
			Where("created_at >= ?", query.Since).
			Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
			Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
			Order("created_at ASC")

		if query.ExcludeID != uuid.Nil {
			q = q.Where("id != ?", query.ExcludeID)
		}

		if query.Qualifying {
			q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("verified = true").
					WhereOr("priority IN (?)", bun.In([]enum.ReportPriority{
						enum.ReportPriorityHigh,
						enum.ReportPriorityCritical,
					}))
			})
		}

		err := q.Scan(ctx)
		return reports, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby reports: %w", err)
	}

	reports := make([]*types.Report, 0, len(candidates))
	for _, report := range candidates {
		if geo.Within(query.Center, report.Location(), query.RadiusMeters) {
			reports = append(reports, report)
		}
	}

	return reports, nil
}

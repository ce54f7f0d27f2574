package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cluster is a triggering report together with its qualifying neighbours.
type Cluster struct {
	Report     *types.Report
	Members    []*types.Report
	TotalCount int
}

// ReportIDs returns the ids of the triggering report and all members.
func (c *Cluster) ReportIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members)+1)
	ids = append(ids, c.Report.ID)
	for _, member := range c.Members {
		ids = append(ids, member.ID)
	}
	return ids
}

// Detector finds spatio-temporally co-located reports of the same category.
type Detector struct {
	reports ReportFinder
	params  Params
	now     func() time.Time
	logger  *zap.Logger
}

// NewDetector creates a new cluster detector.
func NewDetector(reports ReportFinder, params Params, now func() time.Time, logger *zap.Logger) *Detector {
	if now == nil {
		now = time.Now
	}

	return &Detector{
		reports: reports,
		params:  params,
		now:     now,
		logger:  logger.Named("cluster_detector"),
	}
}

// FindCluster returns the qualifying neighbours of the report. Reports that are
// neither verified nor urgent never seed a cluster and get a cluster of one.
func (d *Detector) FindCluster(ctx context.Context, report *types.Report) (*Cluster, error) {
	cluster := &Cluster{Report: report, TotalCount: 1}
	if !report.QualifiesForCluster() {
		return cluster, nil
	}

	since := d.now().Add(-d.params.TimeWindow)
	center := report.Location()

	candidates, err := d.reports.FindNearbyReports(ctx, &types.NearbyQuery{
		Category:     report.Category,
		Center:       center,
		RadiusMeters: d.params.ClusterRadiusMeters,
		Since:        since,
		ExcludeID:    report.ID,
		Qualifying:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby reports: %w", err)
	}

	// The store may prefilter with a bounding box, so apply the exact rules again
	for _, candidate := range candidates {
		if candidate.ID == report.ID ||
			candidate.Category != report.Category ||
			candidate.CreatedAt.Before(since) ||
			!candidate.QualifiesForCluster() ||
			!geo.Within(center, candidate.Location(), d.params.ClusterRadiusMeters) {
			continue
		}
		cluster.Members = append(cluster.Members, candidate)
	}

	cluster.TotalCount = len(cluster.Members) + 1

	d.logger.Debug("Cluster detected",
		zap.String("reportID", report.ID.String()),
		zap.String("category", report.Category.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("totalCount", cluster.TotalCount))

	return cluster, nil
}

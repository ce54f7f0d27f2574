package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/civicwatch/civicwatch/internal/database/memstore"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/civicwatch/civicwatch/internal/reporting"
	"github.com/civicwatch/civicwatch/internal/setup"
	"github.com/civicwatch/civicwatch/internal/setup/config"
	"github.com/civicwatch/civicwatch/internal/voting"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scenario describes a burst of reports in one area followed by neighbors
// confirming the first of them.
type Scenario struct {
	Center   geo.Point
	Spread   float64
	Reports  int
	Voters   int
	Category enum.ReportCategory
	Priority enum.ReportPriority
	Seed     uint64
}

// Run replays the scenario against in-memory stores with default settings.
func (s *Scenario) Run(ctx context.Context, logger *zap.Logger) error {
	if err := s.Center.Validate(); err != nil {
		return err
	}

	cfg := config.Default()
	store := memstore.New()
	services := setup.NewServices(
		&cfg.Common,
		setup.MemoryStores(store),
		nil,
		alerting.NewInlineDispatcher(ctx, logger),
		logger,
	)
	defer services.Close()

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // placement only

	reports := make([]*types.Report, 0, s.Reports)
	for i := range s.Reports {
		location := s.scatter(rng)

		report, err := services.Reports.Submit(ctx, &reporting.SubmitRequest{
			AuthorID:  uuid.New(),
			Category:  s.Category,
			Priority:  s.Priority,
			Title:     fmt.Sprintf("Incident #%d", i+1),
			AreaLabel: "Simulated area",
			Location:  &location,
		})
		if err != nil {
			return fmt.Errorf("failed to submit report %d: %w", i+1, err)
		}

		reports = append(reports, report)
		logger.Info("Submitted report",
			zap.String("reportID", report.ID.String()),
			zap.Stringer("location", location),
			zap.Float64("distanceMeters", geo.DistanceMeters(s.Center, location)))
	}

	if len(reports) > 0 && s.Voters > 0 {
		if err := s.confirm(ctx, services.Ledger, reports[0], rng, logger); err != nil {
			return err
		}
	}

	for _, alert := range store.Alerts() {
		logger.Info("Alert",
			zap.String("alertID", alert.ID.String()),
			zap.String("severity", alert.Severity.String()),
			zap.Int("reportCount", alert.ReportCount),
			zap.Bool("active", alert.IsActive),
			zap.String("title", alert.Title),
			zap.String("message", alert.Message))
	}

	return nil
}

// confirm has neighbors upvote the report until every voter has voted.
func (s *Scenario) confirm(
	ctx context.Context, ledger *voting.Ledger, report *types.Report, rng *rand.Rand, logger *zap.Logger,
) error {
	for i := range s.Voters {
		location := s.scatter(rng)

		result, err := ledger.CastVote(ctx, &voting.CastVoteRequest{
			ReportID:      report.ID,
			VoterID:       uuid.New(),
			VoteType:      enum.VoteTypeUp,
			VoterLocation: &location,
		})
		if err != nil {
			return fmt.Errorf("failed to cast vote %d: %w", i+1, err)
		}

		logger.Debug("Vote cast",
			zap.Int("score", result.Verification.Score),
			zap.Bool("verified", result.Verification.Verified))
	}

	stats, err := ledger.GetStats(ctx, report.ID)
	if err != nil {
		return err
	}

	logger.Info("Report confirmed",
		zap.String("reportID", report.ID.String()),
		zap.Int("upvotes", stats.Counts.Up),
		zap.Int("score", stats.VerificationScore),
		zap.Bool("verified", stats.Verified))

	return nil
}

// scatter returns a uniformly distributed point within the spread of the center.
func (s *Scenario) scatter(rng *rand.Rand) geo.Point {
	distance := s.Spread * math.Sqrt(rng.Float64())
	bearing := rng.Float64() * 2 * math.Pi

	return geo.Offset(s.Center, distance*math.Cos(bearing), distance*math.Sin(bearing))
}

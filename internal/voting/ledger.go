package voting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// statsLoadTimeout bounds a shared stats load.
const statsLoadTimeout = 10 * time.Second

// CastVoteRequest contains everything needed to cast or change a vote.
type CastVoteRequest struct {
	ReportID uuid.UUID
	VoterID  uuid.UUID
	VoteType enum.VoteType
	Reason   string
	// VoterLocation is optional; when present the voter must be near the report.
	VoterLocation *geo.Point
}

// CastVoteResult is returned after a vote was recorded.
type CastVoteResult struct {
	Vote         *types.Vote                `json:"vote"`
	Verification *types.VerificationSummary `json:"verification"`
	// Revote is true when an existing vote was overwritten.
	Revote bool `json:"revote"`
}

// Ledger records one vote per voter per report and keeps the report's
// verification fields in sync with the full vote list.
type Ledger struct {
	reports          ReportStore
	votes            VoteStore
	policy           Policy
	proximityLimitKm float64
	cache            StatsCache
	listener         VerificationListener
	loads            singleflight.Group
	now              func() time.Time
	logger           *zap.Logger
}

// NewLedger creates a new vote ledger. The cache and listener may be nil.
func NewLedger(
	reports ReportStore,
	votes VoteStore,
	policy Policy,
	proximityLimitKm float64,
	cache StatsCache,
	listener VerificationListener,
	logger *zap.Logger,
) *Ledger {
	if proximityLimitKm <= 0 {
		proximityLimitKm = DefaultProximityLimitKm
	}

	return &Ledger{
		reports:          reports,
		votes:            votes,
		policy:           policy,
		proximityLimitKm: proximityLimitKm,
		cache:            cache,
		listener:         listener,
		now:              time.Now,
		logger:           logger.Named("vote_ledger"),
	}
}

// CastVote records a vote or overwrites the voter's previous vote on the report.
func (l *Ledger) CastVote(ctx context.Context, req *CastVoteRequest) (*CastVoteResult, error) {
	if !req.VoteType.IsAVoteType() {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidVoteType, req.VoteType)
	}

	if req.VoterLocation != nil {
		if err := req.VoterLocation.Validate(); err != nil {
			return nil, err
		}
	}

	report, err := l.reports.GetReport(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}

	// Authors cannot vouch for their own reports
	if report.AuthorID == req.VoterID {
		return nil, types.ErrSelfVote
	}

	// Voters must be close enough to have witnessed the incident
	if req.VoterLocation != nil {
		distance := geo.DistanceKm(
			req.VoterLocation.Lat, req.VoterLocation.Lng,
			report.Latitude, report.Longitude,
		)
		if distance > l.proximityLimitKm {
			return nil, &types.DistanceError{DistanceKm: distance, LimitKm: l.proximityLimitKm}
		}
	}

	vote, revote, err := l.upsertVote(ctx, req)
	if err != nil {
		return nil, err
	}

	summary, err := l.recompute(ctx, report)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Vote recorded",
		zap.String("reportID", report.ID.String()),
		zap.String("voterID", req.VoterID.String()),
		zap.String("voteType", req.VoteType.String()),
		zap.Bool("revote", revote),
		zap.Int("score", summary.Score))

	return &CastVoteResult{
		Vote:         vote,
		Verification: summary,
		Revote:       revote,
	}, nil
}

// RetractVote deletes the voter's vote and recomputes the report's verification.
func (l *Ledger) RetractVote(ctx context.Context, reportID, voterID uuid.UUID) (*types.VerificationSummary, error) {
	report, err := l.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if err := l.votes.DeleteVote(ctx, reportID, voterID); err != nil {
		return nil, err
	}

	summary, err := l.recompute(ctx, report)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Vote retracted",
		zap.String("reportID", reportID.String()),
		zap.String("voterID", voterID.String()),
		zap.Int("score", summary.Score))

	return summary, nil
}

// GetVote returns the voter's current vote on the report.
func (l *Ledger) GetVote(ctx context.Context, reportID, voterID uuid.UUID) (*types.Vote, error) {
	return l.votes.GetVote(ctx, reportID, voterID)
}

// GetStats returns the aggregate vote counts of a report without side effects.
func (l *Ledger) GetStats(ctx context.Context, reportID uuid.UUID) (*types.VoteStats, error) {
	if l.cache == nil {
		return l.loadStats(ctx, reportID)
	}

	stats, generation, ok := l.cache.Get(ctx, reportID)
	if ok {
		return stats, nil
	}

	// Concurrent misses of the same generation share one load. The load outlives
	// any single caller so a canceled request does not fail the others.
	key := reportID.String() + ":" + strconv.FormatInt(generation, 10)
	ch := l.loads.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsLoadTimeout)
		defer cancel()

		stats, err := l.loadStats(loadCtx, reportID)
		if err != nil {
			return nil, err
		}

		l.cache.Fill(loadCtx, stats, generation)
		return stats, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*types.VoteStats), nil
	}
}

// loadStats counts the report's current votes.
func (l *Ledger) loadStats(ctx context.Context, reportID uuid.UUID) (*types.VoteStats, error) {
	report, err := l.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	votes, err := l.votes.ListVotes(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	counts := types.CountVotes(votes)

	return &types.VoteStats{
		ReportID:          reportID,
		Counts:            counts,
		VerificationScore: counts.Up - counts.Down,
		Verified:          report.Verified,
	}, nil
}

// upsertVote creates the vote or overwrites the existing one in place.
// A create that loses a race against a concurrent create is retried as an update.
func (l *Ledger) upsertVote(ctx context.Context, req *CastVoteRequest) (*types.Vote, bool, error) {
	existing, err := l.votes.GetVote(ctx, req.ReportID, req.VoterID)
	switch {
	case err == nil:
		vote, err := l.overwriteVote(ctx, existing, req)
		return vote, true, err
	case !errors.Is(err, types.ErrVoteNotFound):
		return nil, false, fmt.Errorf("failed to get vote: %w", err)
	}

	now := l.now()
	vote := &types.Vote{
		ID:        uuid.New(),
		ReportID:  req.ReportID,
		VoterID:   req.VoterID,
		VoteType:  req.VoteType,
		Reason:    req.Reason,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = l.votes.CreateVote(ctx, vote)
	if err == nil {
		return vote, false, nil
	}
	if !errors.Is(err, types.ErrVoteExists) {
		return nil, false, fmt.Errorf("failed to create vote: %w", err)
	}

	// Another request created the vote first
	existing, err = l.votes.GetVote(ctx, req.ReportID, req.VoterID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get vote after conflict: %w", err)
	}

	vote, err = l.overwriteVote(ctx, existing, req)
	return vote, true, err
}

// overwriteVote replaces the type and reason of an existing vote.
func (l *Ledger) overwriteVote(ctx context.Context, existing *types.Vote, req *CastVoteRequest) (*types.Vote, error) {
	existing.VoteType = req.VoteType
	existing.Reason = req.Reason
	existing.UpdatedAt = l.now()

	if err := l.votes.UpdateVote(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update vote: %w", err)
	}

	return existing, nil
}

// recompute rebuilds the report's counts from its full vote list, applies the
// policy and persists the result.
func (l *Ledger) recompute(ctx context.Context, report *types.Report) (*types.VerificationSummary, error) {
	votes, err := l.votes.ListVotes(ctx, report.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	counts := types.CountVotes(votes)
	decision := l.policy.Apply(counts, report.Verified, report.Status)

	updated, err := l.reports.UpdateVerification(ctx, report.ID, &types.VerificationUpdate{
		Counts:            counts,
		VerificationScore: decision.VerificationScore,
		Verified:          decision.Verified,
		MarkUnderReview:   decision.UnderReview(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update report verification: %w", err)
	}

	if l.cache != nil {
		l.cache.Invalidate(ctx, report.ID)
	}

	if decision.UnderReview() && report.Status != enum.ReportStatusUnderReview {
		l.logger.Info("Report sent to review by community flags",
			zap.String("reportID", report.ID.String()),
			zap.Int("flags", counts.Flags))
	}

	if decision.Revoked {
		l.logger.Info("Report verification revoked",
			zap.String("reportID", report.ID.String()),
			zap.Int("score", updated.VerificationScore))
	}

	// A newly verified report may now complete a cluster
	if decision.Granted {
		l.logger.Info("Report verified by community votes",
			zap.String("reportID", report.ID.String()),
			zap.Int("score", updated.VerificationScore))

		if l.listener != nil {
			l.listener.ReportVerified(ctx, updated)
		}
	}

	return updated.Verification(), nil
}

package voting

import (
	"context"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/google/uuid"
)

// ReportStore is the part of the report store the ledger depends on.
type ReportStore interface {
	// GetReport returns types.ErrReportNotFound if the report does not exist.
	GetReport(ctx context.Context, id uuid.UUID) (*types.Report, error)
	// UpdateVerification persists the ledger-owned verification fields and returns the updated report.
	UpdateVerification(ctx context.Context, id uuid.UUID, update *types.VerificationUpdate) (*types.Report, error)
}

// VoteStore persists votes with a unique (report, voter) constraint.
type VoteStore interface {
	// GetVote returns types.ErrVoteNotFound if the voter has not voted on the report.
	GetVote(ctx context.Context, reportID, voterID uuid.UUID) (*types.Vote, error)
	// CreateVote returns types.ErrVoteExists if the (report, voter) pair already has a vote.
	CreateVote(ctx context.Context, vote *types.Vote) error
	UpdateVote(ctx context.Context, vote *types.Vote) error
	// DeleteVote returns types.ErrVoteNotFound if there was nothing to delete.
	DeleteVote(ctx context.Context, reportID, voterID uuid.UUID) error
	ListVotes(ctx context.Context, reportID uuid.UUID) ([]*types.Vote, error)
}

// VerificationListener is notified when a report becomes verified.
// Implementations must not block.
type VerificationListener interface {
	ReportVerified(ctx context.Context, report *types.Report)
}

// StatsCache caches read-only vote statistics.
type StatsCache interface {
	// Get returns cached stats, or on a miss the generation to hand to Fill.
	Get(ctx context.Context, reportID uuid.UUID) (*types.VoteStats, int64, bool)
	// Fill stores stats loaded at generation unless the report was invalidated since.
	Fill(ctx context.Context, stats *types.VoteStats, generation int64)
	// Invalidate drops the cached stats and advances the report's generation.
	Invalidate(ctx context.Context, reportID uuid.UUID)
}

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/civicwatch/civicwatch/internal/database/dbretry"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// VoteModel handles database operations for report votes.
type VoteModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewVote creates a new vote model.
func NewVote(db *bun.DB, logger *zap.Logger) *VoteModel {
	return &VoteModel{
		db:     db,
		logger: logger.Named("db_vote"),
	}
}

// GetVote retrieves the vote a voter cast on a report.
func (r *VoteModel) GetVote(ctx context.Context, reportID, voterID uuid.UUID) (*types.Vote, error) {
	vote, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.Vote, error) {
		var vote types.Vote
		err := r.db.NewSelect().
			Model(&vote).
			Where("report_id = ?", reportID).
			Where("voter_id = ?", voterID).
			Scan(ctx)
		return &vote, err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}

	return vote, nil
}

// CreateVote inserts a new vote. The unique (report_id, voter_id) index turns
// a concurrent duplicate into types.ErrVoteExists.
func (r *VoteModel) CreateVote(ctx context.Context, vote *types.Vote) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(vote).
			Exec(ctx)
		return err
	})
	if err != nil {
		switch {
		case dbretry.IsUniqueViolation(err):
			return types.ErrVoteExists
		case dbretry.IsForeignKeyViolation(err):
			return types.ErrReportNotFound
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	return nil
}

// UpdateVote overwrites the type and reason of an existing vote.
func (r *VoteModel) UpdateVote(ctx context.Context, vote *types.Vote) error {
	result, err := dbretry.Operation(ctx, func(ctx context.Context) (sql.Result, error) {
		return r.db.NewUpdate().
			Model(vote).
			Column("vote_type", "reason", "updated_at").
			WherePK().
			Exec(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return types.ErrVoteNotFound
	}

	return nil
}

// DeleteVote removes a voter's vote on a report.
func (r *VoteModel) DeleteVote(ctx context.Context, reportID, voterID uuid.UUID) error {
	result, err := dbretry.Operation(ctx, func(ctx context.Context) (sql.Result, error) {
		return r.db.NewDelete().
			Model((*types.Vote)(nil)).
			Where("report_id = ?", reportID).
			Where("voter_id = ?", voterID).
			Exec(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return types.ErrVoteNotFound
	}

	r.logger.Debug("Deleted vote",
		zap.String("reportID", reportID.String()),
		zap.String("voterID", voterID.String()))

	return nil
}

// ListVotes retrieves every vote on a report.
func (r *VoteModel) ListVotes(ctx context.Context, reportID uuid.UUID) ([]*types.Vote, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Vote, error) {
		var votes []*types.Vote
		err := r.db.NewSelect().
			Model(&votes).
			Where("report_id = ?", reportID).
			Order("created_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list votes: %w", err)
		}
		return votes, nil
	})
}

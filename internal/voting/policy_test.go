package voting_test

import (
	"testing"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/voting"
	"github.com/stretchr/testify/assert"
)

func TestPolicyApply(t *testing.T) {
	t.Parallel()

	policy := voting.DefaultPolicy()

	tests := []struct {
		name         string
		counts       types.VoteCounts
		status       enum.ReportStatus
		wantScore    int
		wantVerified bool
		wantStatus   enum.ReportStatus
		wantInReview bool
	}{
		{
			name:       "no votes",
			status:     enum.ReportStatusPending,
			wantStatus: enum.ReportStatusPending,
		},
		{
			name:       "one short of verification",
			counts:     types.VoteCounts{Up: 9},
			status:     enum.ReportStatusPending,
			wantScore:  9,
			wantStatus: enum.ReportStatusPending,
		},
		{
			name:         "verified at threshold",
			counts:       types.VoteCounts{Up: 10},
			status:       enum.ReportStatusPending,
			wantScore:    10,
			wantVerified: true,
			wantStatus:   enum.ReportStatusPending,
		},
		{
			name:       "downvotes lower the score",
			counts:     types.VoteCounts{Up: 12, Down: 3},
			status:     enum.ReportStatusInProgress,
			wantScore:  9,
			wantStatus: enum.ReportStatusInProgress,
		},
		{
			name:       "negative score",
			counts:     types.VoteCounts{Up: 1, Down: 4},
			status:     enum.ReportStatusPending,
			wantScore:  -3,
			wantStatus: enum.ReportStatusPending,
		},
		{
			name:       "flags below threshold",
			counts:     types.VoteCounts{Flags: 4},
			status:     enum.ReportStatusPending,
			wantStatus: enum.ReportStatusPending,
		},
		{
			name:         "flags at threshold",
			counts:       types.VoteCounts{Flags: 5},
			status:       enum.ReportStatusPending,
			wantStatus:   enum.ReportStatusUnderReview,
			wantInReview: true,
		},
		{
			name:         "flags do not affect the score",
			counts:       types.VoteCounts{Up: 10, Flags: 7},
			status:       enum.ReportStatusInProgress,
			wantScore:    10,
			wantVerified: true,
			wantStatus:   enum.ReportStatusUnderReview,
			wantInReview: true,
		},
		{
			name:       "resolved report is not reopened by flags",
			counts:     types.VoteCounts{Flags: 8},
			status:     enum.ReportStatusResolved,
			wantStatus: enum.ReportStatusResolved,
		},
		{
			name:       "closed report is not reopened by flags",
			counts:     types.VoteCounts{Flags: 5},
			status:     enum.ReportStatusClosed,
			wantStatus: enum.ReportStatusClosed,
		},
		{
			name:         "review is kept once flags drop",
			counts:       types.VoteCounts{Flags: 4},
			status:       enum.ReportStatusUnderReview,
			wantStatus:   enum.ReportStatusUnderReview,
			wantInReview: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decision := policy.Apply(tt.counts, false, tt.status)

			assert.Equal(t, tt.wantScore, decision.VerificationScore)
			assert.Equal(t, tt.wantVerified, decision.Verified)
			assert.Equal(t, tt.wantStatus, decision.Status)
			assert.Equal(t, tt.wantInReview, decision.UnderReview())
		})
	}
}

func TestPolicyApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	policy := voting.DefaultPolicy()
	counts := types.VoteCounts{Up: 11, Down: 1, Flags: 6}

	first := policy.Apply(counts, false, enum.ReportStatusPending)
	second := policy.Apply(counts, first.Verified, first.Status)

	assert.Equal(t, first.VerificationScore, second.VerificationScore)
	assert.Equal(t, first.Verified, second.Verified)
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.Granted)
	assert.False(t, second.Granted)
}

func TestPolicyVerificationIsNotSticky(t *testing.T) {
	t.Parallel()

	policy := voting.DefaultPolicy()

	decision := policy.Apply(types.VoteCounts{Up: 9}, true, enum.ReportStatusPending)
	assert.False(t, decision.Verified)
	assert.True(t, decision.Revoked)
	assert.False(t, decision.Granted)
}

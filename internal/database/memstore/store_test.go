package memstore_test

import (
	"testing"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/memstore"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = geo.Point{Lat: 6.5244, Lng: 3.3792}

func newReport(t *testing.T, store *memstore.Store, location geo.Point, created time.Time) *types.Report {
	t.Helper()

	report := &types.Report{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		Category:  enum.ReportCategoryDog,
		Priority:  enum.ReportPriorityHigh,
		Latitude:  location.Lat,
		Longitude: location.Lng,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, store.CreateReport(t.Context(), report))

	return report
}

func TestVoteUniqueness(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	report := newReport(t, store, origin, time.Now())
	voter := uuid.New()

	vote := &types.Vote{ID: uuid.New(), ReportID: report.ID, VoterID: voter, VoteType: enum.VoteTypeUp}
	require.NoError(t, store.CreateVote(t.Context(), vote))

	duplicate := &types.Vote{ID: uuid.New(), ReportID: report.ID, VoterID: voter, VoteType: enum.VoteTypeDown}
	require.ErrorIs(t, store.CreateVote(t.Context(), duplicate), types.ErrVoteExists)

	orphan := &types.Vote{ID: uuid.New(), ReportID: uuid.New(), VoterID: voter, VoteType: enum.VoteTypeUp}
	require.ErrorIs(t, store.CreateVote(t.Context(), orphan), types.ErrReportNotFound)

	stored, err := store.GetVote(t.Context(), report.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, vote.ID, stored.ID)
	assert.Equal(t, enum.VoteTypeUp, stored.VoteType)

	require.NoError(t, store.DeleteVote(t.Context(), report.ID, voter))
	require.ErrorIs(t, store.DeleteVote(t.Context(), report.ID, voter), types.ErrVoteNotFound)
	require.ErrorIs(t, store.UpdateVote(t.Context(), vote), types.ErrVoteNotFound)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	report := newReport(t, store, origin, time.Now())

	fetched, err := store.GetReport(t.Context(), report.ID)
	require.NoError(t, err)
	fetched.Verified = true

	again, err := store.GetReport(t.Context(), report.ID)
	require.NoError(t, err)
	assert.False(t, again.Verified)
}

func TestFindNearbyReports(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	now := time.Now()

	trigger := newReport(t, store, origin, now)
	near := newReport(t, store, geo.Offset(origin, 600, 0), now.Add(-time.Hour))
	newReport(t, store, geo.Offset(origin, 1500, 0), now)
	newReport(t, store, origin, now.Add(-48*time.Hour))

	unverified := newReport(t, store, origin, now)
	unverified.Priority = enum.ReportPriorityLow
	require.NoError(t, store.CreateReport(t.Context(), unverified))

	reports, err := store.FindNearbyReports(t.Context(), &types.NearbyQuery{
		Category:     enum.ReportCategoryDog,
		Center:       origin,
		RadiusMeters: 1000,
		Since:        now.Add(-24 * time.Hour),
		ExcludeID:    trigger.ID,
		Qualifying:   true,
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, near.ID, reports[0].ID)
}

func TestAlertLifecycle(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	now := time.Now()
	first, second := uuid.New(), uuid.New()

	alert := &types.Alert{
		ID:           uuid.New(),
		Category:     enum.ReportCategoryDog,
		Severity:     enum.AlertSeverityLow,
		Latitude:     origin.Lat,
		Longitude:    origin.Lng,
		RadiusMeters: 1000,
		ReportCount:  1,
		ReportIDs:    []uuid.UUID{first},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.CreateAlert(t.Context(), alert))

	query := &types.ActiveAlertQuery{
		Category:     enum.ReportCategoryDog,
		Center:       geo.Offset(origin, 300, 300),
		RadiusMeters: 1000,
		Since:        now.Add(-time.Hour),
	}
	found, err := store.FindActiveAlert(t.Context(), query)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, found.ID)

	updated, err := store.AddReport(t.Context(), alert.ID, second)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ReportCount)

	updated, err = store.AddReport(t.Context(), alert.ID, second)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ReportCount)
	assert.Equal(t, []uuid.UUID{first, second}, updated.ReportIDs)

	require.NoError(t, store.UpdateSeverity(t.Context(), alert.ID, enum.AlertSeverityMedium, "title", "message"))

	resolver := uuid.New()
	resolved, err := store.ResolveAlert(t.Context(), alert.ID, resolver, now)
	require.NoError(t, err)
	assert.False(t, resolved.IsActive)
	assert.Equal(t, resolver, resolved.ResolvedBy)
	assert.Equal(t, enum.AlertSeverityMedium, resolved.Severity)

	_, err = store.ResolveAlert(t.Context(), alert.ID, resolver, now)
	require.ErrorIs(t, err, types.ErrAlertInactive)

	_, err = store.FindActiveAlert(t.Context(), query)
	require.ErrorIs(t, err, types.ErrAlertNotFound)

	active, err := store.ListActiveAlerts(t.Context(), origin, 5000)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestUpdateVerificationKeepsTerminalStatus(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	report := newReport(t, store, origin, time.Now())
	report.Status = enum.ReportStatusClosed
	require.NoError(t, store.CreateReport(t.Context(), report))

	updated, err := store.UpdateVerification(t.Context(), report.ID, &types.VerificationUpdate{
		Counts:          types.VoteCounts{Flags: 6},
		MarkUnderReview: true,
	})
	require.NoError(t, err)
	assert.Equal(t, enum.ReportStatusClosed, updated.Status)
	assert.Equal(t, 6, updated.FlagCount)
}

func TestAddReportRejectsResolvedAlert(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	now := time.Now()
	alert := &types.Alert{
		ID:          uuid.New(),
		Category:    enum.ReportCategoryDog,
		ReportCount: 1,
		ReportIDs:   []uuid.UUID{uuid.New()},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.CreateAlert(t.Context(), alert))

	_, err := store.ResolveAlert(t.Context(), alert.ID, uuid.New(), now)
	require.NoError(t, err)

	_, err = store.AddReport(t.Context(), alert.ID, uuid.New())
	require.ErrorIs(t, err, types.ErrAlertInactive)

	stored, err := store.GetAlert(t.Context(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ReportCount)
}

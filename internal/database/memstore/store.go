// Package memstore keeps reports, votes and alerts in memory. It satisfies the
// same store contracts as the Postgres models and backs tests and the simulator.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
)

type voteKey struct {
	reportID uuid.UUID
	voterID  uuid.UUID
}

// Store is a concurrency-safe in-memory store.
type Store struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]*types.Report
	votes   map[voteKey]*types.Vote
	alerts  map[uuid.UUID]*types.Alert
	now     func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		reports: make(map[uuid.UUID]*types.Report),
		votes:   make(map[voteKey]*types.Vote),
		alerts:  make(map[uuid.UUID]*types.Alert),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for update timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// CreateReport stores a new report.
func (s *Store) CreateReport(_ context.Context, report *types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *report
	s.reports[report.ID] = &clone
	return nil
}

// GetReport returns a copy of the report.
func (s *Store) GetReport(_ context.Context, id uuid.UUID) (*types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, types.ErrReportNotFound
	}

	clone := *report
	return &clone, nil
}

// UpdateVerification writes the ledger-owned fields of a report.
func (s *Store) UpdateVerification(
	_ context.Context, id uuid.UUID, update *types.VerificationUpdate,
) (*types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, types.ErrReportNotFound
	}

	report.UpVoteCount = update.Counts.Up
	report.DownVoteCount = update.Counts.Down
	report.FlagCount = update.Counts.Flags
	report.VerificationScore = update.VerificationScore
	report.Verified = update.Verified
	if update.MarkUnderReview && !report.Status.IsTerminal() {
		report.Status = enum.ReportStatusUnderReview
	}
	report.UpdatedAt = s.now()

	clone := *report
	return &clone, nil
}

// FindNearbyReports returns reports matching the query by exact distance.
func (s *Store) FindNearbyReports(_ context.Context, query *types.NearbyQuery) ([]*types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Report
	for _, report := range s.reports {
		if report.ID == query.ExcludeID ||
			report.Category != query.Category ||
			report.CreatedAt.Before(query.Since) ||
			(query.Qualifying && !report.QualifiesForCluster()) ||
			!geo.Within(query.Center, report.Location(), query.RadiusMeters) {
			continue
		}

		clone := *report
		result = append(result, &clone)
	}

	slices.SortFunc(result, func(a, b *types.Report) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return result, nil
}

// GetVote returns the voter's vote on the report.
func (s *Store) GetVote(_ context.Context, reportID, voterID uuid.UUID) (*types.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vote, ok := s.votes[voteKey{reportID, voterID}]
	if !ok {
		return nil, types.ErrVoteNotFound
	}

	clone := *vote
	return &clone, nil
}

// CreateVote stores a new vote, enforcing one vote per voter per report.
func (s *Store) CreateVote(_ context.Context, vote *types.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[vote.ReportID]; !ok {
		return types.ErrReportNotFound
	}

	key := voteKey{vote.ReportID, vote.VoterID}
	if _, ok := s.votes[key]; ok {
		return types.ErrVoteExists
	}

	clone := *vote
	s.votes[key] = &clone
	return nil
}

// UpdateVote overwrites an existing vote.
func (s *Store) UpdateVote(_ context.Context, vote *types.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{vote.ReportID, vote.VoterID}
	if _, ok := s.votes[key]; !ok {
		return types.ErrVoteNotFound
	}

	clone := *vote
	s.votes[key] = &clone
	return nil
}

// DeleteVote removes the voter's vote on the report.
func (s *Store) DeleteVote(_ context.Context, reportID, voterID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{reportID, voterID}
	if _, ok := s.votes[key]; !ok {
		return types.ErrVoteNotFound
	}

	delete(s.votes, key)
	return nil
}

// ListVotes returns every vote on the report.
func (s *Store) ListVotes(_ context.Context, reportID uuid.UUID) ([]*types.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Vote
	for key, vote := range s.votes {
		if key.reportID != reportID {
			continue
		}
		clone := *vote
		result = append(result, &clone)
	}

	return result, nil
}

// FindActiveAlert returns the nearest active alert matching the query.
func (s *Store) FindActiveAlert(_ context.Context, query *types.ActiveAlertQuery) (*types.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best     *types.Alert
		bestDist float64
	)
	for _, alert := range s.alerts {
		if !alert.IsActive ||
			alert.Category != query.Category ||
			alert.CreatedAt.Before(query.Since) {
			continue
		}

		dist := geo.DistanceMeters(query.Center, alert.Location())
		if dist > query.RadiusMeters {
			continue
		}
		if best == nil || dist < bestDist {
			best, bestDist = alert, dist
		}
	}

	if best == nil {
		return nil, types.ErrAlertNotFound
	}

	return cloneAlert(best), nil
}

// CreateAlert stores a new alert.
func (s *Store) CreateAlert(_ context.Context, alert *types.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts[alert.ID] = cloneAlert(alert)
	return nil
}

// AddReport adds the report to the alert's member set.
func (s *Store) AddReport(_ context.Context, alertID, reportID uuid.UUID) (*types.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[alertID]
	if !ok {
		return nil, types.ErrAlertNotFound
	}
	if !alert.IsActive {
		return nil, types.ErrAlertInactive
	}

	if !alert.HasReport(reportID) {
		alert.ReportIDs = append(alert.ReportIDs, reportID)
		alert.ReportCount = len(alert.ReportIDs)
		alert.UpdatedAt = s.now()
	}

	return cloneAlert(alert), nil
}

// UpdateSeverity sets the alert's severity and message.
func (s *Store) UpdateSeverity(
	_ context.Context, alertID uuid.UUID, severity enum.AlertSeverity, title, message string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[alertID]
	if !ok {
		return types.ErrAlertNotFound
	}

	alert.Severity = severity
	alert.Title = title
	alert.Message = message
	alert.UpdatedAt = s.now()
	return nil
}

// ResolveAlert deactivates an active alert.
func (s *Store) ResolveAlert(
	_ context.Context, alertID, resolverID uuid.UUID, resolvedAt time.Time,
) (*types.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[alertID]
	if !ok {
		return nil, types.ErrAlertNotFound
	}
	if !alert.IsActive {
		return nil, types.ErrAlertInactive
	}

	alert.IsActive = false
	alert.ResolvedAt = resolvedAt
	alert.ResolvedBy = resolverID
	alert.UpdatedAt = resolvedAt

	return cloneAlert(alert), nil
}

// GetAlert returns a copy of the alert.
func (s *Store) GetAlert(_ context.Context, id uuid.UUID) (*types.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, types.ErrAlertNotFound
	}

	return cloneAlert(alert), nil
}

// ListActiveAlerts returns active alerts around a point, newest first.
func (s *Store) ListActiveAlerts(_ context.Context, center geo.Point, radiusMeters float64) ([]*types.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Alert
	for _, alert := range s.alerts {
		if alert.IsActive && geo.Within(center, alert.Location(), radiusMeters) {
			result = append(result, cloneAlert(alert))
		}
	}

	slices.SortFunc(result, func(a, b *types.Alert) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return result, nil
}

// Alerts returns every alert, active or not. Used by tests and the simulator.
func (s *Store) Alerts() []*types.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*types.Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		result = append(result, cloneAlert(alert))
	}

	slices.SortFunc(result, func(a, b *types.Alert) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return result
}

func cloneAlert(alert *types.Alert) *types.Alert {
	clone := *alert
	clone.ReportIDs = slices.Clone(alert.ReportIDs)
	return &clone
}

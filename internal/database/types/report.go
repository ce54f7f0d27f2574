package types

import (
	"errors"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
)

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrMissingCoordinates = errors.New("report location is required")
	ErrInvalidCategory    = errors.New("invalid report category")
	ErrInvalidPriority    = errors.New("invalid report priority")
)

// Report represents a community-submitted incident pinned on the map.
type Report struct {
	ID                uuid.UUID           `bun:",pk,type:uuid"      json:"id"`
	AuthorID          uuid.UUID           `bun:",notnull,type:uuid" json:"authorId"`
	Category          enum.ReportCategory `bun:",notnull"           json:"category"`
	Priority          enum.ReportPriority `bun:",notnull"           json:"priority"`
	Status            enum.ReportStatus   `bun:",notnull"           json:"status"`
	Title             string              `bun:",notnull"           json:"title"`
	Description       string              `bun:",type:text"         json:"description"`
	AreaLabel         string              `bun:",nullzero"          json:"areaLabel,omitempty"`
	Latitude          float64             `bun:",notnull"           json:"latitude"`
	Longitude         float64             `bun:",notnull"           json:"longitude"`
	UpVoteCount       int                 `bun:",notnull"           json:"upVoteCount"`
	DownVoteCount     int                 `bun:",notnull"           json:"downVoteCount"`
	FlagCount         int                 `bun:",notnull"           json:"flagCount"`
	VerificationScore int                 `bun:",notnull"           json:"verificationScore"`
	Verified          bool                `bun:",notnull"           json:"verified"`
	CreatedAt         time.Time           `bun:",notnull"           json:"createdAt"`
	UpdatedAt         time.Time           `bun:",notnull"           json:"updatedAt"`
}

// Location returns the report's coordinates as a point.
func (r *Report) Location() geo.Point {
	return geo.Point{Lat: r.Latitude, Lng: r.Longitude}
}

// QualifiesForCluster checks if the report may seed or join a cluster.
// Only verified reports or reports with an urgent priority qualify.
func (r *Report) QualifiesForCluster() bool {
	return r.Verified || r.Priority.IsUrgent()
}

// Verification returns the report's current verification state.
func (r *Report) Verification() *VerificationSummary {
	return &VerificationSummary{
		Score:    r.VerificationScore,
		Verified: r.Verified,
		Status:   r.Status,
		Counts: VoteCounts{
			Up:    r.UpVoteCount,
			Down:  r.DownVoteCount,
			Flags: r.FlagCount,
		},
	}
}

// VerificationUpdate holds the report fields owned by the vote ledger.
// Status is only ever moved to under review; other transitions belong to the institutional workflow.
type VerificationUpdate struct {
	Counts            VoteCounts
	VerificationScore int
	Verified          bool
	MarkUnderReview   bool
}

// VerificationSummary is the verification state returned to voters.
type VerificationSummary struct {
	Score    int               `json:"score"`
	Verified bool              `json:"verified"`
	Status   enum.ReportStatus `json:"status"`
	Counts   VoteCounts        `json:"counts"`
}

// NearbyQuery describes a spatio-temporal search for reports around a point.
type NearbyQuery struct {
	Category     enum.ReportCategory
	Center       geo.Point
	RadiusMeters float64
	Since        time.Time
	ExcludeID    uuid.UUID
	// Qualifying restricts results to verified or urgent reports.
	Qualifying bool
}

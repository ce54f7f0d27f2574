package types

import (
	"errors"
	"slices"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
)

var (
	ErrAlertNotFound = errors.New("alert not found")
	ErrAlertInactive = errors.New("alert is not active")
	ErrNotAuthority  = errors.New("only authorities can resolve alerts")
)

// Alert is an area-level notification synthesized from a cluster of related reports.
type Alert struct {
	ID           uuid.UUID           `bun:",pk,type:uuid"          json:"id"`
	Category     enum.ReportCategory `bun:",notnull"               json:"category"`
	Severity     enum.AlertSeverity  `bun:",notnull"               json:"severity"`
	Title        string              `bun:",notnull"               json:"title"`
	Message      string              `bun:",type:text"             json:"message"`
	Latitude     float64             `bun:",notnull"               json:"latitude"`
	Longitude    float64             `bun:",notnull"               json:"longitude"`
	RadiusMeters float64             `bun:",notnull"               json:"radiusMeters"`
	ReportCount  int                 `bun:",notnull"               json:"reportCount"`
	ReportIDs    []uuid.UUID         `bun:",array,type:uuid[]"     json:"reportIds"`
	IsActive     bool                `bun:",notnull"               json:"isActive"`
	CreatedAt    time.Time           `bun:",notnull"               json:"createdAt"`
	UpdatedAt    time.Time           `bun:",notnull"               json:"updatedAt"`
	ResolvedAt   time.Time           `bun:",nullzero"              json:"resolvedAt,omitzero"`
	ResolvedBy   uuid.UUID           `bun:",nullzero,type:uuid"    json:"resolvedBy,omitzero"`
}

// Location returns the alert's centroid as a point.
func (a *Alert) Location() geo.Point {
	return geo.Point{Lat: a.Latitude, Lng: a.Longitude}
}

// HasReport checks if the report is already a member of the alert.
func (a *Alert) HasReport(reportID uuid.UUID) bool {
	return slices.Contains(a.ReportIDs, reportID)
}

// ActiveAlertQuery describes a search for an active alert covering a point.
type ActiveAlertQuery struct {
	Category     enum.ReportCategory
	Center       geo.Point
	RadiusMeters float64
	Since        time.Time
}

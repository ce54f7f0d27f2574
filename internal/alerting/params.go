package alerting

import (
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types/enum"
)

const (
	// DefaultClusterRadiusMeters is the great-circle radius that groups reports into a cluster.
	DefaultClusterRadiusMeters = 1000.0
	// DefaultTimeWindow is how far back reports are considered part of the same cluster.
	DefaultTimeWindow = 24 * time.Hour
	// DefaultAlertThreshold is the cluster size that produces an alert.
	DefaultAlertThreshold = 3
	// DefaultDetectionTimeout bounds a single detached detection run.
	DefaultDetectionTimeout = 10 * time.Second
)

// Params configures cluster detection and alert synthesis.
type Params struct {
	ClusterRadiusMeters float64
	TimeWindow          time.Duration
	AlertThreshold      int
}

// DefaultParams returns the standard clustering parameters.
func DefaultParams() Params {
	return Params{
		ClusterRadiusMeters: DefaultClusterRadiusMeters,
		TimeWindow:          DefaultTimeWindow,
		AlertThreshold:      DefaultAlertThreshold,
	}
}

// SeverityFor maps a cluster size onto the severity ladder.
func SeverityFor(count int) enum.AlertSeverity {
	switch {
	case count >= 10:
		return enum.AlertSeverityCritical
	case count >= 7:
		return enum.AlertSeverityHigh
	case count >= 5:
		return enum.AlertSeverityMedium
	default:
		return enum.AlertSeverityLow
	}
}

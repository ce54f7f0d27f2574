package enum

// AlertSeverity represents how serious an area alert is.
// Values are ordered so a greater value is more severe.
//
//go:generate go tool enumer -type=AlertSeverity -trimprefix=AlertSeverity -transform=snake-upper -text
type AlertSeverity int

const (
	AlertSeverityLow AlertSeverity = iota
	AlertSeverityMedium
	AlertSeverityHigh
	AlertSeverityCritical
)

package enum

// ReportCategory represents the kind of incident a report describes.
//
//go:generate go tool enumer -type=ReportCategory -trimprefix=ReportCategory -transform=snake-upper -text
type ReportCategory int

const (
	// ReportCategoryCrime indicates theft, assault, or other criminal activity.
	ReportCategoryCrime ReportCategory = iota
	// ReportCategoryMissing indicates a missing person.
	ReportCategoryMissing
	// ReportCategoryDog indicates a dog attack or a dangerous stray.
	ReportCategoryDog
	// ReportCategoryHazard indicates a man-made hazard such as exposed wiring or a sinkhole.
	ReportCategoryHazard
	// ReportCategoryNaturalDisaster indicates flooding, landslides, fires and similar events.
	ReportCategoryNaturalDisaster
)

// ReportPriority represents how urgent a report is.
//
//go:generate go tool enumer -type=ReportPriority -trimprefix=ReportPriority -transform=snake-upper -text
type ReportPriority int

const (
	ReportPriorityLow ReportPriority = iota
	ReportPriorityMedium
	ReportPriorityHigh
	ReportPriorityCritical
)

// IsUrgent returns true for priorities that qualify a report for clustering without verification.
func (p ReportPriority) IsUrgent() bool {
	return p == ReportPriorityHigh || p == ReportPriorityCritical
}

// ReportStatus represents where a report is in the institutional workflow.
//
//go:generate go tool enumer -type=ReportStatus -trimprefix=ReportStatus -transform=snake-upper -text
type ReportStatus int

const (
	// ReportStatusPending is the initial status of every submitted report.
	ReportStatusPending ReportStatus = iota
	// ReportStatusInProgress indicates an institution is working on the report.
	ReportStatusInProgress
	// ReportStatusUnderReview indicates the community flagged the report for moderation.
	ReportStatusUnderReview
	// ReportStatusResolved indicates the incident was handled.
	ReportStatusResolved
	// ReportStatusClosed indicates the report was closed without further action.
	ReportStatusClosed
)

// IsTerminal returns true if the status ends the report lifecycle.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusResolved || s == ReportStatusClosed
}

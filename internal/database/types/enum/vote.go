package enum

// VoteType represents a voter's opinion of a report.
//
//go:generate go tool enumer -type=VoteType -trimprefix=VoteType -transform=snake-upper -text
type VoteType int

const (
	// VoteTypeUp confirms the report is accurate.
	VoteTypeUp VoteType = iota
	// VoteTypeDown disputes the report.
	VoteTypeDown
	// VoteTypeFlag marks the report as abusive or fake.
	VoteTypeFlag
)

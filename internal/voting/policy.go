package voting

import (
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
)

const (
	// DefaultVerificationThreshold is the score at which a report becomes verified.
	DefaultVerificationThreshold = 10
	// DefaultFlagThreshold is the number of flags that sends a report to review.
	DefaultFlagThreshold = 5
	// DefaultProximityLimitKm is the maximum distance between a voter and the report.
	DefaultProximityLimitKm = 5.0
)

// Policy decides a report's verification state from its aggregate vote counts.
type Policy struct {
	VerificationThreshold int
	FlagThreshold         int
}

// DefaultPolicy returns the policy with the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		VerificationThreshold: DefaultVerificationThreshold,
		FlagThreshold:         DefaultFlagThreshold,
	}
}

// Decision is the outcome of applying the policy to a set of counts.
type Decision struct {
	VerificationScore int
	Verified          bool
	Status            enum.ReportStatus

	// Granted and Revoked describe the transition from the previous verified state.
	Granted bool
	Revoked bool
}

// UnderReview reports whether the decision moved the report to review.
func (d Decision) UnderReview() bool {
	return d.Status == enum.ReportStatusUnderReview
}

// Apply computes the verification score, verified flag and status for the given counts.
// Verification is not sticky: a lower score always revokes it. The only status the policy
// proposes is under review, and never for a resolved or closed report; any other status
// is passed through untouched.
func (p Policy) Apply(counts types.VoteCounts, currentlyVerified bool, currentStatus enum.ReportStatus) Decision {
	score := counts.Up - counts.Down
	verified := score >= p.VerificationThreshold

	status := currentStatus
	if counts.Flags >= p.FlagThreshold && !currentStatus.IsTerminal() {
		status = enum.ReportStatusUnderReview
	}

	return Decision{
		VerificationScore: score,
		Verified:          verified,
		Status:            status,
		Granted:           verified && !currentlyVerified,
		Revoked:           !verified && currentlyVerified,
	}
}

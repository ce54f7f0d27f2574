package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/google/uuid"
)

var (
	ErrVoteNotFound    = errors.New("vote not found")
	ErrVoteExists      = errors.New("vote already exists, update it instead")
	ErrInvalidVoteType = errors.New("invalid vote type")
	ErrSelfVote        = errors.New("cannot vote on own report")
	ErrTooFarAway      = errors.New("voter is too far from the report")
)

// DistanceError is returned when a voter is outside the proximity limit of a report.
type DistanceError struct {
	DistanceKm float64
	LimitKm    float64
}

func (e *DistanceError) Error() string {
	return fmt.Sprintf("%s: %.2f km away, must be within %.1f km", ErrTooFarAway, e.DistanceKm, e.LimitKm)
}

func (e *DistanceError) Unwrap() error {
	return ErrTooFarAway
}

// Vote represents one voter's opinion on one report.
// A voter holds at most one vote per report.
type Vote struct {
	ID        uuid.UUID     `bun:",pk,type:uuid"      json:"id"`
	ReportID  uuid.UUID     `bun:",notnull,type:uuid" json:"reportId"`
	VoterID   uuid.UUID     `bun:",notnull,type:uuid" json:"voterId"`
	VoteType  enum.VoteType `bun:",notnull"           json:"voteType"`
	Reason    string        `bun:",nullzero"          json:"reason,omitempty"`
	CreatedAt time.Time     `bun:",notnull"           json:"createdAt"`
	UpdatedAt time.Time     `bun:",notnull"           json:"updatedAt"`
}

// VoteCounts are the aggregate vote counts of a report.
type VoteCounts struct {
	Up    int `json:"up"`
	Down  int `json:"down"`
	Flags int `json:"flags"`
}

// Total returns the number of votes of any type.
func (c VoteCounts) Total() int {
	return c.Up + c.Down + c.Flags
}

// CountVotes tallies a full vote list into aggregate counts.
func CountVotes(votes []*Vote) VoteCounts {
	var counts VoteCounts
	for _, vote := range votes {
		switch vote.VoteType {
		case enum.VoteTypeUp:
			counts.Up++
		case enum.VoteTypeDown:
			counts.Down++
		case enum.VoteTypeFlag:
			counts.Flags++
		}
	}
	return counts
}

// VoteStats is the read-only vote summary of a report.
type VoteStats struct {
	ReportID          uuid.UUID  `json:"reportId"`
	Counts            VoteCounts `json:"counts"`
	VerificationScore int        `json:"verificationScore"`
	Verified          bool       `json:"verified"`
}

package types

import (
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
)

// SubmitReportRequest is the body of POST /v1/reports.
// Category and priority are required; nil means the field was omitted.
type SubmitReportRequest struct {
	Category    *enum.ReportCategory `json:"category"`
	Priority    *enum.ReportPriority `json:"priority"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	AreaLabel   string               `json:"areaLabel"`
	Latitude    *float64             `json:"latitude"`
	Longitude   *float64             `json:"longitude"`
}

// CastVoteRequest is the body of PUT /v1/reports/:id/vote.
// The vote type is required and the voter's coordinates are optional.
type CastVoteRequest struct {
	VoteType  *enum.VoteType `json:"voteType"`
	Reason    string         `json:"reason"`
	Latitude  *float64       `json:"latitude"`
	Longitude *float64       `json:"longitude"`
}

// ErrorCode classifies an error response.
type ErrorCode string

const (
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrorCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrorCodeConflict        ErrorCode = "CONFLICT"
	ErrorCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrorCodeInternal        ErrorCode = "INTERNAL"
)

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// DistanceKm is set when a voter was too far away from the report.
	DistanceKm *float64 `json:"distanceKm,omitempty"`
	LimitKm    *float64 `json:"limitKm,omitempty"`
}

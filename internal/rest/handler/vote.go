package handler

import (
	"net/http"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/rest/middleware/identity"
	restTypes "github.com/civicwatch/civicwatch/internal/rest/types"
	"github.com/civicwatch/civicwatch/internal/voting"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// VoteHandler handles vote REST endpoints.
type VoteHandler struct {
	ledger *voting.Ledger
	logger *zap.Logger
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(ledger *voting.Ledger, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		ledger: ledger,
		logger: logger.Named("vote_handler"),
	}
}

// CastVote records or changes the caller's vote on a report.
func (h *VoteHandler) CastVote(w http.ResponseWriter, req bunrouter.Request) error {
	actor, err := identity.FromContext(req.Context())
	if err != nil {
		return writeError(w, h.logger, err)
	}

	reportID, err := pathID(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	var body restTypes.CastVoteRequest
	if err := decodeBody(req, &body); err != nil {
		return writeError(w, h.logger, err)
	}

	if body.VoteType == nil {
		return writeError(w, h.logger, types.ErrInvalidVoteType)
	}

	location, err := optionalPoint(body.Latitude, body.Longitude)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	result, err := h.ledger.CastVote(req.Context(), &voting.CastVoteRequest{
		ReportID:      reportID,
		VoterID:       actor.ID,
		VoteType:      *body.VoteType,
		Reason:        body.Reason,
		VoterLocation: location,
	})
	if err != nil {
		return writeError(w, h.logger, err)
	}

	status := http.StatusCreated
	if result.Revote {
		status = http.StatusOK
	}

	return writeJSON(w, status, result)
}

// RetractVote deletes the caller's vote on a report.
func (h *VoteHandler) RetractVote(w http.ResponseWriter, req bunrouter.Request) error {
	actor, err := identity.FromContext(req.Context())
	if err != nil {
		return writeError(w, h.logger, err)
	}

	reportID, err := pathID(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	summary, err := h.ledger.RetractVote(req.Context(), reportID, actor.ID)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusOK, summary)
}

// GetVote returns the caller's vote on a report.
func (h *VoteHandler) GetVote(w http.ResponseWriter, req bunrouter.Request) error {
	actor, err := identity.FromContext(req.Context())
	if err != nil {
		return writeError(w, h.logger, err)
	}

	reportID, err := pathID(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	vote, err := h.ledger.GetVote(req.Context(), reportID, actor.ID)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusOK, vote)
}

// GetStats returns the vote counts of a report.
func (h *VoteHandler) GetStats(w http.ResponseWriter, req bunrouter.Request) error {
	reportID, err := pathID(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	stats, err := h.ledger.GetStats(req.Context(), reportID)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusOK, stats)
}

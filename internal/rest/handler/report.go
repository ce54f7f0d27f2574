package handler

import (
	"net/http"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/reporting"
	"github.com/civicwatch/civicwatch/internal/rest/middleware/identity"
	restTypes "github.com/civicwatch/civicwatch/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// ReportHandler handles report REST endpoints.
type ReportHandler struct {
	reports *reporting.Service
	logger  *zap.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports *reporting.Service, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger.Named("report_handler"),
	}
}

// SubmitReport creates a new report authored by the caller.
func (h *ReportHandler) SubmitReport(w http.ResponseWriter, req bunrouter.Request) error {
	actor, err := identity.FromContext(req.Context())
	if err != nil {
		return writeError(w, h.logger, err)
	}

	var body restTypes.SubmitReportRequest
	if err := decodeBody(req, &body); err != nil {
		return writeError(w, h.logger, err)
	}

	if body.Category == nil {
		return writeError(w, h.logger, types.ErrInvalidCategory)
	}
	if body.Priority == nil {
		return writeError(w, h.logger, types.ErrInvalidPriority)
	}

	// Both coordinates are required for a report
	if body.Latitude == nil || body.Longitude == nil {
		return writeError(w, h.logger, types.ErrMissingCoordinates)
	}

	location, err := optionalPoint(body.Latitude, body.Longitude)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	report, err := h.reports.Submit(req.Context(), &reporting.SubmitRequest{
		AuthorID:    actor.ID,
		Category:    *body.Category,
		Priority:    *body.Priority,
		Title:       body.Title,
		Description: body.Description,
		AreaLabel:   body.AreaLabel,
		Location:    location,
	})
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusCreated, report)
}

// GetReport returns a report by id.
func (h *ReportHandler) GetReport(w http.ResponseWriter, req bunrouter.Request) error {
	id, err := pathID(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	report, err := h.reports.Get(req.Context(), id)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusOK, report)
}

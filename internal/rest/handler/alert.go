package handler

import (
	"net/http"
	"strconv"

	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/civicwatch/civicwatch/internal/rest/middleware/identity"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// DefaultAlertSearchRadius is used when a listing does not specify a radius.
const DefaultAlertSearchRadius = 5000.0

// MaxAlertSearchRadius caps the radius of alert listings.
const MaxAlertSearchRadius = 50000.0

// AlertHandler handles alert REST endpoints.
type AlertHandler struct {
	alerts *alerting.Service
	logger *zap.Logger
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alerts *alerting.Service, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		logger: logger.Named("alert_handler"),
	}
}

// ListAlerts returns the active alerts around ?lat=&lng= within ?radius= meters.
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, req bunrouter.Request) error {
	query := req.URL.Query()

	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		return writeError(w, h.logger, ErrInvalidQuery)
	}

	lng, err := strconv.ParseFloat(query.Get("lng"), 64)
	if err != nil {
		return writeError(w, h.logger, ErrInvalidQuery)
	}

	radius := DefaultAlertSearchRadius
	if raw := query.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return writeError(w, h.logger, ErrInvalidQuery)
		}
		radius = min(radius, MaxAlertSearchRadius)
	}

	alerts, err := h.alerts.ActiveNear(req.Context(), geo.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusOK, alerts)
}

// GetAlert returns an alert by id.
func (h *AlertHandler) GetAlert(w http.ResponseWriter, req bunrouter.Request) error {
	id, err := pathID(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	alert, err := h.alerts.Get(req.Context(), id)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusOK, alert)
}

// ResolveAlert deactivates an alert. Only authorities may resolve alerts.
func (h *AlertHandler) ResolveAlert(w http.ResponseWriter, req bunrouter.Request) error {
	actor, err := identity.FromContext(req.Context())
	if err != nil {
		return writeError(w, h.logger, err)
	}

	id, err := pathID(req)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	alert, err := h.alerts.Resolve(req.Context(), id, actor)
	if err != nil {
		return writeError(w, h.logger, err)
	}

	return writeJSON(w, http.StatusOK, alert)
}

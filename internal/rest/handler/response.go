package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/civicwatch/civicwatch/internal/rest/middleware/identity"
	restTypes "github.com/civicwatch/civicwatch/internal/rest/types"
	"github.com/google/uuid"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// ErrInvalidBody is returned when a request body cannot be decoded.
var ErrInvalidBody = errors.New("invalid request body")

// ErrInvalidID is returned when a path id is not a valid uuid.
var ErrInvalidID = errors.New("invalid id")

// ErrInvalidQuery is returned when query parameters are missing or malformed.
var ErrInvalidQuery = errors.New("invalid query parameters")

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

// decodeBody decodes the JSON request body into v.
func decodeBody(req bunrouter.Request, v any) error {
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(v); err != nil {
		return errors.Join(ErrInvalidBody, err)
	}
	return nil
}

// pathID parses the :id route parameter.
func pathID(req bunrouter.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(req.Param("id"))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// optionalPoint builds a point from optional coordinates. Either both or none must be set.
func optionalPoint(lat, lng *float64) (*geo.Point, error) {
	switch {
	case lat == nil && lng == nil:
		return nil, nil
	case lat == nil || lng == nil:
		return nil, geo.ErrInvalidCoordinates
	default:
		return &geo.Point{Lat: *lat, Lng: *lng}, nil
	}
}

// ErrorStatus maps a domain error onto an HTTP status and error code.
func ErrorStatus(err error) (int, restTypes.ErrorCode) {
	switch {
	case errors.Is(err, types.ErrReportNotFound),
		errors.Is(err, types.ErrVoteNotFound),
		errors.Is(err, types.ErrAlertNotFound):
		return http.StatusNotFound, restTypes.ErrorCodeNotFound
	case errors.Is(err, types.ErrSelfVote),
		errors.Is(err, types.ErrTooFarAway),
		errors.Is(err, types.ErrNotAuthority):
		return http.StatusForbidden, restTypes.ErrorCodeForbidden
	case errors.Is(err, types.ErrInvalidVoteType),
		errors.Is(err, types.ErrMissingCoordinates),
		errors.Is(err, types.ErrInvalidCategory),
		errors.Is(err, types.ErrInvalidPriority),
		errors.Is(err, geo.ErrInvalidCoordinates),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest, restTypes.ErrorCodeInvalidArgument
	case errors.Is(err, types.ErrVoteExists),
		errors.Is(err, types.ErrAlertInactive):
		return http.StatusConflict, restTypes.ErrorCodeConflict
	case errors.Is(err, identity.ErrNoIdentity):
		return http.StatusUnauthorized, restTypes.ErrorCodeUnauthenticated
	default:
		return http.StatusInternalServerError, restTypes.ErrorCodeInternal
	}
}

// writeError writes the error response for err. Internal errors are logged and
// their details hidden from the client.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) error {
	status, code := ErrorStatus(err)

	response := restTypes.ErrorResponse{
		Code:    code,
		Message: firstLine(err.Error()),
	}

	var distErr *types.DistanceError
	if errors.As(err, &distErr) {
		response.DistanceKm = &distErr.DistanceKm
		response.LimitKm = &distErr.LimitKm
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		response.Message = "Internal server error"
	}

	return writeJSON(w, status, response)
}

// firstLine trims joined errors down to their leading message.
func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

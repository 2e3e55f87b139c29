package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"floorplan/internal/editor"
	"floorplan/internal/geoproj"
	"floorplan/internal/inference"
	"floorplan/internal/mask/contour"
	"floorplan/internal/measure"
	"floorplan/internal/raster"
	"floorplan/internal/session"
	"floorplan/internal/shape"
)

// errBadRequest marks malformed requests.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

var clientErrors = []error{
	errBadRequest,
	editor.ErrInvalidPoint,
	editor.ErrTooFewPoints,
	geoproj.ErrMalformed,
	geoproj.ErrTooFewPoints,
	geoproj.ErrNonFinite,
	geoproj.ErrDegenerateBounds,
	raster.ErrSizeMismatch,
	raster.ErrEmpty,
	measure.ErrInvalidFootLength,
	contour.ErrNoContour,
	shape.ErrHandleDisabled,
	shape.ErrVertexIndex,
	shape.ErrMinVertices,
	shape.ErrNotSelectable,
	session.ErrInvalidGesture,
	session.ErrUnboundKey,
}

var conflictErrors = []error{
	session.ErrBusy,
	session.ErrToolDisabled,
	session.ErrNoOutput,
	session.ErrNothingSelected,
	editor.ErrPolygonClosed,
	shape.ErrNoGesture,
	shape.ErrGestureActive,
	inference.ErrCanceled,
}

// statusFor maps a sentinel error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	case errors.Is(err, inference.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, inference.ErrModel), errors.Is(err, inference.ErrNoModel):
		return http.StatusBadGateway
	}
	for _, e := range clientErrors {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	for _, e := range conflictErrors {
		if errors.Is(err, e) {
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request_failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request_rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

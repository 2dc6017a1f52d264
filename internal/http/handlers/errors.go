package handlers

import (
	"errors"
	"net/http"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/logx"
)

// writeServiceError maps a service error to its HTTP status. Client errors
// carry the error text; anything unexpected is logged and hidden.
func writeServiceError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := errResponse{Error: "internal error"}

	switch {
	case errors.Is(err, apperr.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidTransition), errors.Is(err, apperr.ErrPaymentPrecondition):
		status = http.StatusConflict
		body.Status, _ = apperr.CurrentStatus(err)
	case errors.Is(err, apperr.ErrBusy):
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "1")
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			logx.String("req_id", reqID(r.Context())),
			logx.String("method", r.Method),
			logx.String("path", r.URL.Path),
			logx.Err(err),
		)
	} else {
		body.Error = err.Error()
	}
	writeErrorBody(logger, w, r, status, body)
}

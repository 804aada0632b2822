// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrDuplicate   = errors.New("duplicate entry")
	ErrValidation  = errors.New("validation failed")
	ErrRemote      = errors.New("remote service failed")
	ErrUnsupported = errors.New("capability not available")
	ErrBusy        = errors.New("operation already in flight")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrBusy):
		Problem(w, http.StatusConflict, "Busy", err.Error())
	case errors.Is(err, ErrRemote):
		Problem(w, http.StatusBadGateway, "Remote Service Failed", err.Error())
	case errors.Is(err, ErrUnsupported):
		Problem(w, http.StatusNotImplemented, "Not Supported", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

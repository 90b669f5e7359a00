// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/stocklens/stocklens/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInvalidConfiguration):
		Problem(w, http.StatusBadRequest, "Invalid Configuration", err.Error())
	case errors.Is(err, shared.ErrDataUnavailable):
		Problem(w, http.StatusUnprocessableEntity, "Data Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

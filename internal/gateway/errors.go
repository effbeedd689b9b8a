package gateway

import (
	"fmt"
	"net/http"

	"simple-notes-be/internal/apperror"
)

// RequestFailure is returned for every non-2xx response.
type RequestFailure struct {
	StatusCode int
	Message    string
}

func (e *RequestFailure) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// Unwrap lets callers branch on the server's error class with errors.Is.
func (e *RequestFailure) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return apperror.ErrValidation
	case http.StatusNotFound:
		return apperror.ErrNotFound
	case http.StatusServiceUnavailable:
		return apperror.ErrBackendUnavailable
	default:
		return nil
	}
}

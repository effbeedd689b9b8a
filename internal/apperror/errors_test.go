package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("title", ""), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("save: %w", NewValidationError("id", "")), http.StatusBadRequest},
		{"not found", NewNotFoundError("Note", "n1"), http.StatusNotFound},
		{"backend", NewBackendUnavailableError("fetch notes", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestBackendUnavailableUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBackendUnavailableError("save note", cause)

	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to save note", Message(err))
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "id is required", NewValidationError("id", "").Error())
	assert.Equal(t, "Note ID is required", NewValidationError("id", "Note ID is required").Error())
	assert.Equal(t, "Note not found", NewNotFoundError("Note", "x").Error())
}

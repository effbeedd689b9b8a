package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(dto.ClearRequest{Confirm: "yes"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = ValidateRequest(dto.ClearRequest{})
	require.Error(t, err)
	assert.Equal(t, "confirm is required", err.Error())

	assert.NoError(t, ValidateRequest(dto.ClearRequest{Confirm: "true"}))

	err = ValidateRequest(dto.UploadImageMetadata{Width: -1})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/validation", func(c *fiber.Ctx) error { return apperror.NewValidationError("id", "Note ID is required") })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperror.NewNotFoundError("Note", "x") })
	app.Get("/down", func(c *fiber.Ctx) error {
		return apperror.NewBackendUnavailableError("fetch notes", errors.New("dial tcp: refused"))
	})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret detail") })

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{"/validation", 400, "Note ID is required"},
		{"/missing", 404, "Note not found"},
		{"/down", 503, "Failed to fetch notes"},
		{"/boom", 500, "Internal server error"},
		{"/nowhere", 404, "Cannot GET /nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.message, out.Error)
		})
	}
}

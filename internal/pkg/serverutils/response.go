package serverutils

import (
	"simple-notes-be/internal/dto"
)

func ErrorResponse(message string) dto.ErrorResponse {
	return dto.ErrorResponse{Error: message}
}

func SuccessResponse() dto.SuccessResponse {
	return dto.SuccessResponse{Success: true}
}

package entity

import (
	"strings"

	"simple-notes-be/internal/apperror"
)

// Validate checks the fields every backend requires before a write. Ids
// and titles made only of whitespace count as missing.
func (n *Note) Validate() error {
	if n == nil {
		return apperror.NewValidationError("note", "Note is required")
	}
	if strings.TrimSpace(n.Id) == "" {
		return apperror.NewValidationError("id", "Note ID is required")
	}
	if strings.TrimSpace(n.Title) == "" {
		return apperror.NewValidationError("title", "Title is required")
	}
	return nil
}

// NormalizeTimestamps fills a missing creation time and keeps
// UpdatedAt >= CreatedAt.
func (n *Note) NormalizeTimestamps() {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = Now()
	}
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}
}

// NewImage validates an upload and derives the blob key when the
// reference does not carry one.
func NewImage(noteId string, ref ImageReference, data []byte) (*Image, error) {
	if strings.TrimSpace(noteId) == "" {
		return nil, apperror.NewValidationError("noteId", "Note ID is required")
	}
	if strings.TrimSpace(ref.Id) == "" {
		return nil, apperror.NewValidationError("imageId", "Image ID is required")
	}
	if len(data) == 0 {
		return nil, apperror.NewValidationError("image", "Image data is required")
	}
	if ref.BlobKey == "" {
		ref.BlobKey = BlobKeyFor(noteId, ref.Id)
	}
	return &Image{
		ImageReference: ref,
		NoteId:         noteId,
		Data:           data,
		CreatedAt:      Now(),
	}, nil
}

package dto

import (
	"time"
)

type ImageReference struct {
	Id      string `json:"id"`
	BlobKey string `json:"blobKey"`
	Alt     string `json:"alt"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type Note struct {
	Id        string           `json:"id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	IsPinned  bool             `json:"isPinned"`
	Images    []ImageReference `json:"images"`
}

// CreateNoteRequest carries a partial note. Missing fields get defaults;
// images are ignored because they need their bytes.
type CreateNoteRequest struct {
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	IsPinned  bool             `json:"isPinned"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
	Images    []ImageReference `json:"images,omitempty"`
}

// UpdateNoteRequest is a partial update; nil fields are left as stored.
type UpdateNoteRequest struct {
	Id       string  `json:"id,omitempty" validate:"required"`
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	IsPinned *bool   `json:"isPinned,omitempty"`
}

type NoteResponse struct {
	Note Note `json:"note"`
}

type NotesResponse struct {
	Notes []Note `json:"notes"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

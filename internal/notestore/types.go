package notestore

import (
	"context"

	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
)

type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewCard ViewMode = "card"
)

type SortBy string

const (
	SortByCreatedAt SortBy = "createdAt"
	SortByUpdatedAt SortBy = "updatedAt"
	SortByTitle     SortBy = "title"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PreferencesName is the key the store's preferences are saved under.
const PreferencesName = "database-notes-storage"

// Preferences is the part of the state kept across sessions.
type Preferences struct {
	SelectedNoteId string    `json:"selectedNoteId"`
	SearchQuery    string    `json:"searchQuery"`
	ViewMode       ViewMode  `json:"viewMode"`
	SortBy         SortBy    `json:"sortBy"`
	SortOrder      SortOrder `json:"sortOrder"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		ViewMode:  ViewList,
		SortBy:    SortByUpdatedAt,
		SortOrder: SortDesc,
	}
}

// Snapshot is an immutable view of the store. The Notes slice and the notes
// in it are shared between snapshots and must not be modified.
type Snapshot struct {
	Preferences
	Notes     []*entity.Note
	IsLoading bool
	IsSaving  bool
}

// NotePatch is a partial note update; nil fields are left unchanged.
type NotePatch struct {
	Title    *string
	Content  *string
	IsPinned *bool
}

// Repository is the backend the store talks to. *gateway.Client satisfies
// it, and so does LocalRepository.
type Repository interface {
	GetAllNotes(ctx context.Context) ([]*entity.Note, error)
	CreateNote(ctx context.Context, note dto.CreateNoteRequest) (*entity.Note, error)
	UpdateNote(ctx context.Context, id string, patch dto.UpdateNoteRequest) (*entity.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

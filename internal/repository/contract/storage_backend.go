package contract

import (
	"context"

	"simple-notes-be/internal/entity"
)

const (
	BackendRelational = "relational"
	BackendLocal      = "local"
)

// StorageBackend is the persistence contract shared by the relational and
// the local implementations. Lookups return (nil, nil) when nothing matches.
type StorageBackend interface {
	// GetAllNotes returns every note, pinned first, then most recently updated.
	GetAllNotes(ctx context.Context) ([]*entity.Note, error)
	GetNoteById(ctx context.Context, id string) (*entity.Note, error)
	// SaveNote inserts or replaces a note. The stored created_at of an
	// existing note is kept and image rows are left untouched.
	SaveNote(ctx context.Context, note *entity.Note) error
	// UpdateNote applies mutate to the stored note atomically. It never
	// inserts: a missing note yields NotFoundError.
	UpdateNote(ctx context.Context, id string, mutate func(note *entity.Note) error) (*entity.Note, error)
	// DeleteNote removes the note and all of its images.
	DeleteNote(ctx context.Context, id string) error
	// SearchNotes matches the query as a case-insensitive substring of the
	// title or the content. An empty query behaves like GetAllNotes.
	SearchNotes(ctx context.Context, query string) ([]*entity.Note, error)

	SaveImage(ctx context.Context, noteId string, ref entity.ImageReference, data []byte) error
	GetImage(ctx context.Context, blobKey string) ([]byte, error)
	DeleteImage(ctx context.Context, blobKey string) error

	GetStorageStats(ctx context.Context) (*entity.StorageStats, error)
	ClearAllData(ctx context.Context) error

	Name() string
	Ping(ctx context.Context) error
	Close() error
}

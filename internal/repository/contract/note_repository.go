package contract

import (
	"context"

	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/repository/specification"
)

type NoteRepository interface {
	// Upsert inserts the note or overwrites every column except created_at.
	Upsert(ctx context.Context, note *entity.Note) error
	// Update overwrites an existing row and reports whether one matched.
	Update(ctx context.Context, note *entity.Note) (bool, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

package unitofwork

import (
	"context"

	"simple-notes-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
	ImageRepository() contract.ImageRepository
}

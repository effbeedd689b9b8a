package notestore

import (
	"context"
	"errors"
	"strings"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/repository/contract"

	"github.com/google/uuid"
)

// LocalRepository runs the store directly against a storage backend, with
// no server in between.
type LocalRepository struct {
	backend contract.StorageBackend
}

func NewLocalRepository(backend contract.StorageBackend) *LocalRepository {
	return &LocalRepository{backend: backend}
}

func (r *LocalRepository) GetAllNotes(ctx context.Context) ([]*entity.Note, error) {
	return r.backend.GetAllNotes(ctx)
}

func (r *LocalRepository) CreateNote(ctx context.Context, req dto.CreateNoteRequest) (*entity.Note, error) {
	now := entity.Now()
	note := &entity.Note{
		Id:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		IsPinned:  req.IsPinned,
		CreatedAt: now,
		UpdatedAt: now,
		Images:    []entity.ImageReference{},
	}
	if note.Title == "" {
		note.Title = entity.DefaultNoteTitle
	}
	if req.CreatedAt != nil {
		note.CreatedAt = req.CreatedAt.UTC()
	}
	if req.UpdatedAt != nil {
		note.UpdatedAt = req.UpdatedAt.UTC()
	}
	note.NormalizeTimestamps()

	if err := r.backend.SaveNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (r *LocalRepository) UpdateNote(ctx context.Context, id string, req dto.UpdateNoteRequest) (*entity.Note, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, apperror.NewValidationError("title", "Title is required")
	}
	return r.backend.UpdateNote(ctx, id, func(n *entity.Note) error {
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Content != nil {
			n.Content = *req.Content
		}
		if req.IsPinned != nil {
			n.IsPinned = *req.IsPinned
		}
		n.UpdatedAt = entity.Touch(n.UpdatedAt)
		return nil
	})
}

func (r *LocalRepository) DeleteNote(ctx context.Context, id string) error {
	err := r.backend.DeleteNote(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	return err
}

// FILE: internal/service/note_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/mapper"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/pkg/events"
	"simple-notes-be/pkg/utils"

	"github.com/google/uuid"
)

type INoteService interface {
	List(ctx context.Context, query string) ([]dto.Note, error)
	Show(ctx context.Context, id string) (*dto.Note, error)
	Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.Note, error)
	Update(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.Note, error)
	Delete(ctx context.Context, id string) error
}

type noteService struct {
	backend    contract.StorageBackend
	dispatcher IEventDispatcher
	logger     logger.ILogger
}

func NewNoteService(
	backend contract.StorageBackend,
	dispatcher IEventDispatcher,
	log logger.ILogger,
) INoteService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &noteService{
		backend:    backend,
		dispatcher: dispatcher,
		logger:     log,
	}
}

func (c *noteService) List(ctx context.Context, query string) ([]dto.Note, error) {
	var (
		notes []*entity.Note
		err   error
	)
	if strings.TrimSpace(query) == "" {
		notes, err = c.backend.GetAllNotes(ctx)
	} else {
		notes, err = c.backend.SearchNotes(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return mapper.NotesToDTO(notes), nil
}

func (c *noteService) Show(ctx context.Context, id string) (*dto.Note, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.NewValidationError("id", "Note ID is required")
	}

	note, err := c.backend.GetNoteById(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NewNotFoundError("Note", id)
	}

	res := mapper.NoteToDTO(note)
	return &res, nil
}

func (c *noteService) Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.Note, error) {
	now := entity.Now()
	note := entity.Note{
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

	if len(req.Images) > 0 {
		c.logger.Warn("NoteService", "Ignoring images in create request; upload them separately", map[string]interface{}{
			"note_id": note.Id,
			"count":   len(req.Images),
		})
	}

	if err := c.backend.SaveNote(ctx, &note); err != nil {
		return nil, err
	}

	c.dispatcher.Dispatch(ctx, events.New(events.NoteCreated, map[string]interface{}{
		"note_id": note.Id,
		"title":   note.Title,
		"preview": utils.NotePreview(note.Content),
	}))

	res := mapper.NoteToDTO(&note)
	return &res, nil
}

func (c *noteService) Update(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.Note, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, apperror.NewValidationError("title", "Title is required")
	}

	note, err := c.backend.UpdateNote(ctx, req.Id, func(n *entity.Note) error {
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
	if err != nil {
		return nil, err
	}

	c.dispatcher.Dispatch(ctx, events.New(events.NoteUpdated, map[string]interface{}{
		"note_id": note.Id,
		"title":   note.Title,
		"preview": utils.NotePreview(note.Content),
	}))

	res := mapper.NoteToDTO(note)
	return &res, nil
}

// Delete treats a note that is already gone as deleted.
func (c *noteService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.NewValidationError("id", "Note ID is required")
	}

	err := c.backend.DeleteNote(ctx, id)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	if err != nil {
		c.logger.Debug("NoteService", "Delete of absent note treated as success", map[string]interface{}{
			"note_id": id,
		})
	}

	c.dispatcher.Dispatch(ctx, events.New(events.NoteDeleted, map[string]interface{}{
		"note_id": id,
	}))
	return nil
}

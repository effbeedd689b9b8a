package service

import (
	"context"
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

type IImageService interface {
	Upload(ctx context.Context, noteId string, data []byte, meta *dto.UploadImageMetadata) (*dto.ImageReference, error)
	Get(ctx context.Context, blobKey string) ([]byte, error)
	Delete(ctx context.Context, blobKey string) error
}

type imageService struct {
	backend    contract.StorageBackend
	dispatcher IEventDispatcher
	logger     logger.ILogger
}

func NewImageService(
	backend contract.StorageBackend,
	dispatcher IEventDispatcher,
	log logger.ILogger,
) IImageService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &imageService{
		backend:    backend,
		dispatcher: dispatcher,
		logger:     log,
	}
}

func (s *imageService) Upload(ctx context.Context, noteId string, data []byte, meta *dto.UploadImageMetadata) (*dto.ImageReference, error) {
	if strings.TrimSpace(noteId) == "" {
		return nil, apperror.NewValidationError("noteId", "Note ID is required")
	}
	if len(data) == 0 {
		return nil, apperror.NewValidationError("image", "Image file is required")
	}

	info, err := utils.ReadImageInfo(data)
	if err != nil {
		return nil, apperror.NewValidationError("image", "Invalid image file type")
	}

	if meta == nil {
		meta = &dto.UploadImageMetadata{}
	}
	ref := entity.ImageReference{
		Id:     meta.Id,
		Alt:    meta.Alt,
		Width:  meta.Width,
		Height: meta.Height,
	}
	if ref.Id == "" {
		ref.Id = uuid.NewString()
	}
	if ref.Width == 0 || ref.Height == 0 {
		ref.Width, ref.Height = info.Width, info.Height
	}
	ref.BlobKey = entity.BlobKeyFor(noteId, ref.Id)

	if err := s.backend.SaveImage(ctx, noteId, ref, data); err != nil {
		return nil, err
	}

	s.logger.Info("ImageService", "Image stored", map[string]interface{}{
		"note_id":  noteId,
		"blob_key": ref.BlobKey,
		"format":   info.Format,
		"size":     utils.FormatBytes(int64(len(data))),
	})
	s.dispatcher.Dispatch(ctx, events.New(events.ImageSaved, map[string]interface{}{
		"note_id":  noteId,
		"blob_key": ref.BlobKey,
	}))

	res := mapper.ImageReferenceToDTO(ref)
	return &res, nil
}

func (s *imageService) Get(ctx context.Context, blobKey string) ([]byte, error) {
	if strings.TrimSpace(blobKey) == "" {
		return nil, apperror.NewValidationError("blobKey", "Blob key is required")
	}

	data, err := s.backend.GetImage(ctx, blobKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, apperror.NewNotFoundError("Image", blobKey)
	}
	return data, nil
}

func (s *imageService) Delete(ctx context.Context, blobKey string) error {
	if strings.TrimSpace(blobKey) == "" {
		return apperror.NewValidationError("blobKey", "Blob key is required")
	}

	if err := s.backend.DeleteImage(ctx, blobKey); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, events.New(events.ImageDeleted, map[string]interface{}{
		"blob_key": blobKey,
	}))
	return nil
}

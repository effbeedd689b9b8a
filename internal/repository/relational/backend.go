package relational

import (
	"context"
	"strings"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/internal/repository/specification"
	"simple-notes-be/internal/repository/unitofwork"

	"gorm.io/gorm"
)

const module = "RelationalBackend"

// Backend stores notes and images in two tables joined by a cascading
// foreign key. Works on Postgres and SQLite.
type Backend struct {
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewBackend(db *gorm.DB, log logger.ILogger) *Backend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Backend{
		db:         db,
		uowFactory: unitofwork.NewRepositoryFactory(db),
		logger:     log,
	}
}

var _ contract.StorageBackend = (*Backend)(nil)

func (b *Backend) Name() string {
	return contract.BackendRelational + ":" + b.db.Dialector.Name()
}

func (b *Backend) fail(op string, err error) error {
	translated := translateError(op, err)
	if _, ok := translated.(*apperror.BackendUnavailableError); ok {
		b.logger.Error(module, "Storage operation failed", map[string]interface{}{
			"operation": op,
			"error":     err.Error(),
		})
	}
	return translated
}

func (b *Backend) GetAllNotes(ctx context.Context) ([]*entity.Note, error) {
	uow := b.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.WithImageMetadata{},
		specification.PinnedFirst{},
	)
	if err != nil {
		return nil, b.fail("fetch notes", err)
	}
	return notes, nil
}

func (b *Backend) GetNoteById(ctx context.Context, id string) (*entity.Note, error) {
	if id == "" {
		return nil, apperror.NewValidationError("id", "Note ID is required")
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.WithImageMetadata{},
	)
	if err != nil {
		return nil, b.fail("fetch note", err)
	}
	return note, nil
}

func (b *Backend) SaveNote(ctx context.Context, note *entity.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return b.fail("save note", err)
	}
	defer uow.Rollback()

	existing, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: note.Id},
		specification.WithImageMetadata{},
		specification.ForUpdate{},
	)
	if err != nil {
		return b.fail("save note", err)
	}

	row := note.Clone()
	if existing != nil {
		row.CreatedAt = existing.CreatedAt
		b.warnOnImageDrift(existing, note)
	}
	row.NormalizeTimestamps()

	if err := uow.NoteRepository().Upsert(ctx, row); err != nil {
		return b.fail("save note", err)
	}
	if err := uow.Commit(); err != nil {
		return b.fail("save note", err)
	}
	return nil
}

func (b *Backend) UpdateNote(ctx context.Context, id string, mutate func(note *entity.Note) error) (*entity.Note, error) {
	if id == "" {
		return nil, apperror.NewValidationError("id", "Note ID is required")
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, b.fail("update note", err)
	}
	defer uow.Rollback()

	existing, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.WithImageMetadata{},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, b.fail("update note", err)
	}
	if existing == nil {
		return nil, apperror.NewNotFoundError("Note", id)
	}

	updated := existing.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}
	updated.Id = existing.Id
	updated.CreatedAt = existing.CreatedAt
	updated.Images = existing.Images
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.NormalizeTimestamps()

	found, err := uow.NoteRepository().Update(ctx, updated)
	if err != nil {
		return nil, b.fail("update note", err)
	}
	if !found {
		return nil, apperror.NewNotFoundError("Note", id)
	}
	if err := uow.Commit(); err != nil {
		return nil, b.fail("update note", err)
	}
	return updated, nil
}

func (b *Backend) DeleteNote(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("id", "Note ID is required")
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return b.fail("delete note", err)
	}
	defer uow.Rollback()

	// The cascade covers this too; deleting explicitly keeps SQLite
	// connections without foreign key enforcement consistent.
	if _, err := uow.ImageRepository().Delete(ctx, specification.ByNoteID{NoteID: id}); err != nil {
		return b.fail("delete note", err)
	}
	deleted, err := uow.NoteRepository().Delete(ctx, id)
	if err != nil {
		return b.fail("delete note", err)
	}
	if !deleted {
		return apperror.NewNotFoundError("Note", id)
	}
	if err := uow.Commit(); err != nil {
		return b.fail("delete note", err)
	}
	return nil
}

func (b *Backend) SearchNotes(ctx context.Context, query string) ([]*entity.Note, error) {
	if strings.TrimSpace(query) == "" {
		return b.GetAllNotes(ctx)
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteSearchQuery{Query: query},
		specification.WithImageMetadata{},
		specification.PinnedFirst{},
	)
	if err != nil {
		return nil, b.fail("search notes", err)
	}
	return notes, nil
}

func (b *Backend) SaveImage(ctx context.Context, noteId string, ref entity.ImageReference, data []byte) error {
	img, err := entity.NewImage(noteId, ref, data)
	if err != nil {
		return err
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return b.fail("save image", err)
	}
	defer uow.Rollback()

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId}, specification.ForUpdate{})
	if err != nil {
		return b.fail("save image", err)
	}
	if note == nil {
		return apperror.NewNotFoundError("Note", noteId)
	}

	if err := uow.ImageRepository().Create(ctx, img); err != nil {
		return b.fail("save image", err)
	}
	if err := uow.Commit(); err != nil {
		return b.fail("save image", err)
	}
	return nil
}

func (b *Backend) GetImage(ctx context.Context, blobKey string) ([]byte, error) {
	if blobKey == "" {
		return nil, apperror.NewValidationError("blobKey", "Blob key is required")
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	img, err := uow.ImageRepository().FindOne(ctx, specification.ByBlobKey{BlobKey: blobKey})
	if err != nil {
		return nil, b.fail("fetch image", err)
	}
	if img == nil {
		return nil, nil
	}
	return img.Data, nil
}

func (b *Backend) DeleteImage(ctx context.Context, blobKey string) error {
	if blobKey == "" {
		return apperror.NewValidationError("blobKey", "Blob key is required")
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.ImageRepository().Delete(ctx, specification.ByBlobKey{BlobKey: blobKey}); err != nil {
		return b.fail("delete image", err)
	}
	return nil
}

func (b *Backend) GetStorageStats(ctx context.Context) (*entity.StorageStats, error) {
	uow := b.uowFactory.NewUnitOfWork(ctx)

	noteCount, err := uow.NoteRepository().Count(ctx)
	if err != nil {
		return nil, b.fail("fetch storage stats", err)
	}
	imageCount, err := uow.ImageRepository().Count(ctx)
	if err != nil {
		return nil, b.fail("fetch storage stats", err)
	}
	totalSize, err := uow.ImageRepository().TotalSize(ctx)
	if err != nil {
		return nil, b.fail("fetch storage stats", err)
	}

	return &entity.StorageStats{
		NoteCount:      noteCount,
		ImageCount:     imageCount,
		TotalSizeBytes: totalSize,
	}, nil
}

func (b *Backend) ClearAllData(ctx context.Context) error {
	uow := b.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return b.fail("clear data", err)
	}
	defer uow.Rollback()

	if err := uow.ImageRepository().DeleteAll(ctx); err != nil {
		return b.fail("clear data", err)
	}
	if err := uow.NoteRepository().DeleteAll(ctx); err != nil {
		return b.fail("clear data", err)
	}
	if err := uow.Commit(); err != nil {
		return b.fail("clear data", err)
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return apperror.NewBackendUnavailableError("connect to database", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.NewBackendUnavailableError("connect to database", err)
	}
	return nil
}

func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// warnOnImageDrift reports image references passed through SaveNote that
// do not match the stored rows. Images only change through SaveImage and
// DeleteImage.
func (b *Backend) warnOnImageDrift(stored, incoming *entity.Note) {
	if incoming.Images == nil {
		return
	}
	drift := len(incoming.Images) != len(stored.Images)
	for _, ref := range incoming.Images {
		if !stored.HasImage(ref.BlobKey) {
			drift = true
			break
		}
	}
	if drift {
		b.logger.Warn(module, "Ignoring image references passed with note", map[string]interface{}{
			"note_id":  incoming.Id,
			"stored":   len(stored.Images),
			"incoming": len(incoming.Images),
		})
	}
}

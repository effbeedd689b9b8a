package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/pkg/kvstore"
)

const (
	module         = "LocalBackend"
	notesKey       = "notes"
	imageKeyPrefix = "image_"
)

type imageDocument struct {
	Id      string `json:"id"`
	BlobKey string `json:"blobKey"`
	Alt     string `json:"alt"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type noteDocument struct {
	Id        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	IsPinned  bool            `json:"isPinned"`
	Images    []imageDocument `json:"images"`
}

// LocalBackend keeps every note in a single JSON document under "notes"
// and each image blob under "image_<blobKey>". All access goes through one
// mutex, so the engine only ever sees a single writer.
type LocalBackend struct {
	mu     sync.Mutex
	engine kvstore.Engine
	logger logger.ILogger
}

func NewLocalBackend(engine kvstore.Engine, log logger.ILogger) *LocalBackend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &LocalBackend{
		engine: engine,
		logger: log,
	}
}

var _ contract.StorageBackend = (*LocalBackend)(nil)

func imageKey(blobKey string) string {
	return imageKeyPrefix + blobKey
}

func (b *LocalBackend) Name() string {
	return contract.BackendLocal
}

func (b *LocalBackend) unavailable(op string, err error) error {
	b.logger.Error(module, "Storage operation failed", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	return apperror.NewBackendUnavailableError(op, err)
}

func (b *LocalBackend) readNotes(ctx context.Context, op string) ([]*entity.Note, error) {
	raw, found, err := b.engine.Get(ctx, notesKey)
	if err != nil {
		return nil, b.unavailable(op, err)
	}
	if !found {
		return []*entity.Note{}, nil
	}

	var docs []noteDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, b.unavailable(op, err)
	}

	notes := make([]*entity.Note, len(docs))
	for i := range docs {
		notes[i] = toEntity(&docs[i])
	}
	return notes, nil
}

func (b *LocalBackend) writeNotes(ctx context.Context, op string, notes []*entity.Note) error {
	docs := make([]noteDocument, len(notes))
	for i, n := range notes {
		docs[i] = toDocument(n)
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return b.unavailable(op, err)
	}
	if err := b.engine.Set(ctx, notesKey, raw); err != nil {
		return b.unavailable(op, err)
	}
	return b.flush(ctx, op)
}

func (b *LocalBackend) flush(ctx context.Context, op string) error {
	if err := b.engine.Flush(ctx); err != nil {
		return b.unavailable(op, err)
	}
	return nil
}

func indexOf(notes []*entity.Note, id string) int {
	for i, n := range notes {
		if n.Id == id {
			return i
		}
	}
	return -1
}

func sortPinnedFirst(notes []*entity.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, c := notes[i], notes[j]
		if a.IsPinned != c.IsPinned {
			return a.IsPinned
		}
		if !a.UpdatedAt.Equal(c.UpdatedAt) {
			return a.UpdatedAt.After(c.UpdatedAt)
		}
		return a.Id < c.Id
	})
}

func (b *LocalBackend) GetAllNotes(ctx context.Context) ([]*entity.Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	notes, err := b.readNotes(ctx, "fetch notes")
	if err != nil {
		return nil, err
	}
	sortPinnedFirst(notes)
	return notes, nil
}

func (b *LocalBackend) GetNoteById(ctx context.Context, id string) (*entity.Note, error) {
	if id == "" {
		return nil, apperror.NewValidationError("id", "Note ID is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	notes, err := b.readNotes(ctx, "fetch note")
	if err != nil {
		return nil, err
	}
	if i := indexOf(notes, id); i >= 0 {
		return notes[i], nil
	}
	return nil, nil
}

func (b *LocalBackend) SaveNote(ctx context.Context, note *entity.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	notes, err := b.readNotes(ctx, "save note")
	if err != nil {
		return err
	}

	row := note.Clone()
	i := indexOf(notes, note.Id)
	if i >= 0 {
		existing := notes[i]
		row.CreatedAt = existing.CreatedAt
		b.warnOnImageDrift(existing, note)
		row.Images = existing.Images
	} else {
		if len(note.Images) > 0 {
			b.logger.Warn(module, "Ignoring image references passed with new note", map[string]interface{}{
				"note_id":  note.Id,
				"incoming": len(note.Images),
			})
		}
		row.Images = nil
	}
	row.NormalizeTimestamps()

	if i >= 0 {
		notes[i] = row
	} else {
		notes = append(notes, row)
	}
	return b.writeNotes(ctx, "save note", notes)
}

func (b *LocalBackend) UpdateNote(ctx context.Context, id string, mutate func(note *entity.Note) error) (*entity.Note, error) {
	if id == "" {
		return nil, apperror.NewValidationError("id", "Note ID is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	notes, err := b.readNotes(ctx, "update note")
	if err != nil {
		return nil, err
	}
	i := indexOf(notes, id)
	if i < 0 {
		return nil, apperror.NewNotFoundError("Note", id)
	}

	existing := notes[i]
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

	notes[i] = updated
	if err := b.writeNotes(ctx, "update note", notes); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// DeleteNote succeeds silently when the note does not exist. Only the
// blobs the note references are removed; blob keys of other notes may
// share its id as a prefix.
func (b *LocalBackend) DeleteNote(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("id", "Note ID is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	notes, err := b.readNotes(ctx, "delete note")
	if err != nil {
		return err
	}
	i := indexOf(notes, id)
	if i < 0 {
		return nil
	}

	owned := notes[i].Images
	notes = append(notes[:i], notes[i+1:]...)
	if err := b.writeNotes(ctx, "delete note", notes); err != nil {
		return err
	}

	if len(owned) == 0 {
		return nil
	}
	keys := make([]string, len(owned))
	for j, img := range owned {
		keys[j] = imageKey(img.BlobKey)
	}
	if err := b.engine.Delete(ctx, keys...); err != nil {
		return b.unavailable("delete note", err)
	}
	return b.flush(ctx, "delete note")
}

func (b *LocalBackend) SearchNotes(ctx context.Context, query string) ([]*entity.Note, error) {
	if strings.TrimSpace(query) == "" {
		return b.GetAllNotes(ctx)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	notes, err := b.readNotes(ctx, "search notes")
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matches := make([]*entity.Note, 0)
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			matches = append(matches, n)
		}
	}
	sortPinnedFirst(matches)
	return matches, nil
}

func (b *LocalBackend) SaveImage(ctx context.Context, noteId string, ref entity.ImageReference, data []byte) error {
	img, err := entity.NewImage(noteId, ref, data)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	notes, err := b.readNotes(ctx, "save image")
	if err != nil {
		return err
	}
	i := indexOf(notes, noteId)
	if i < 0 {
		return apperror.NewNotFoundError("Note", noteId)
	}

	key := imageKey(img.BlobKey)
	_, exists, err := b.engine.Get(ctx, key)
	if err != nil {
		return b.unavailable("save image", err)
	}
	if exists || notes[i].HasImage(img.BlobKey) {
		return apperror.NewValidationError("blobKey", "Image already exists")
	}

	if err := b.engine.Set(ctx, key, img.Data); err != nil {
		return b.unavailable("save image", err)
	}
	notes[i].Images = append(notes[i].Images, img.ImageReference)
	if err := b.writeNotes(ctx, "save image", notes); err != nil {
		_ = b.engine.Delete(ctx, key)
		return err
	}
	return nil
}

func (b *LocalBackend) GetImage(ctx context.Context, blobKey string) ([]byte, error) {
	if blobKey == "" {
		return nil, apperror.NewValidationError("blobKey", "Blob key is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	data, found, err := b.engine.Get(ctx, imageKey(blobKey))
	if err != nil {
		return nil, b.unavailable("fetch image", err)
	}
	if !found {
		return nil, nil
	}
	return data, nil
}

// DeleteImage drops the reference first, so a failure never leaves a note
// pointing at a missing blob.
func (b *LocalBackend) DeleteImage(ctx context.Context, blobKey string) error {
	if blobKey == "" {
		return apperror.NewValidationError("blobKey", "Blob key is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	notes, err := b.readNotes(ctx, "delete image")
	if err != nil {
		return err
	}
	changed := false
	for _, n := range notes {
		if n.RemoveImage(blobKey) {
			changed = true
		}
	}
	if changed {
		if err := b.writeNotes(ctx, "delete image", notes); err != nil {
			return err
		}
	}

	if err := b.engine.Delete(ctx, imageKey(blobKey)); err != nil {
		return b.unavailable("delete image", err)
	}
	return b.flush(ctx, "delete image")
}

func (b *LocalBackend) GetStorageStats(ctx context.Context) (*entity.StorageStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	raw, found, err := b.engine.Get(ctx, notesKey)
	if err != nil {
		return nil, b.unavailable("fetch storage stats", err)
	}
	stats := &entity.StorageStats{}
	if found {
		var docs []noteDocument
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, b.unavailable("fetch storage stats", err)
		}
		stats.NoteCount = int64(len(docs))
		stats.TotalSizeBytes = int64(len(raw))
	}

	keys, err := b.engine.Keys(ctx, imageKeyPrefix)
	if err != nil {
		return nil, b.unavailable("fetch storage stats", err)
	}
	for _, k := range keys {
		blob, ok, err := b.engine.Get(ctx, k)
		if err != nil {
			return nil, b.unavailable("fetch storage stats", err)
		}
		if ok {
			stats.ImageCount++
			stats.TotalSizeBytes += int64(len(blob))
		}
	}
	return stats, nil
}

func (b *LocalBackend) ClearAllData(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys, err := b.engine.Keys(ctx, imageKeyPrefix)
	if err != nil {
		return b.unavailable("clear data", err)
	}
	keys = append(keys, notesKey)
	if err := b.engine.Delete(ctx, keys...); err != nil {
		return b.unavailable("clear data", err)
	}
	return b.flush(ctx, "clear data")
}

func (b *LocalBackend) Ping(ctx context.Context) error {
	if err := b.engine.Ping(ctx); err != nil {
		return apperror.NewBackendUnavailableError("connect to local store", err)
	}
	return nil
}

func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Close()
}

func (b *LocalBackend) warnOnImageDrift(stored, incoming *entity.Note) {
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

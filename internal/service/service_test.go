package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/internal/repository/memory"
	"simple-notes-be/pkg/events"
	"simple-notes-be/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.BaseEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event events.BaseEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) types() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	for i, e := range d.events {
		out[i] = e.Type
	}
	return out
}

func newLocalBackend(t *testing.T) contract.StorageBackend {
	t.Helper()
	engine, err := kvstore.NewCacheEngine("")
	require.NoError(t, err)
	return memory.NewLocalBackend(engine, nil)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }

func TestNoteServiceCreateDefaults(t *testing.T) {
	ctx := context.Background()
	dispatcher := &recordingDispatcher{}
	svc := NewNoteService(newLocalBackend(t), dispatcher, nil)

	note, err := svc.Create(ctx, &dto.CreateNoteRequest{
		Images: []dto.ImageReference{{Id: "ignored"}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, note.Id)
	assert.Equal(t, entity.DefaultNoteTitle, note.Title)
	assert.Empty(t, note.Content)
	assert.False(t, note.IsPinned)
	assert.Empty(t, note.Images)
	assert.False(t, note.CreatedAt.IsZero())
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)
	assert.Equal(t, []string{events.NoteCreated}, dispatcher.types())
}

func TestNoteServiceCreateKeepsSuppliedTimestamps(t *testing.T) {
	ctx := context.Background()
	svc := NewNoteService(newLocalBackend(t), &recordingDispatcher{}, nil)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	note, err := svc.Create(ctx, &dto.CreateNoteRequest{
		Title:     "Dated",
		CreatedAt: &created,
		UpdatedAt: ptr(created.Add(-time.Hour)),
	})
	require.NoError(t, err)
	assert.True(t, created.Equal(note.CreatedAt))
	assert.True(t, created.Equal(note.UpdatedAt), "updatedAt is clamped to createdAt")
}

func TestNoteServiceShow(t *testing.T) {
	ctx := context.Background()
	svc := NewNoteService(newLocalBackend(t), &recordingDispatcher{}, nil)

	_, err := svc.Show(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Show(ctx, " ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	created, err := svc.Create(ctx, &dto.CreateNoteRequest{Title: "Hello"})
	require.NoError(t, err)
	got, err := svc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
}

func TestNoteServiceListAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := NewNoteService(newLocalBackend(t), &recordingDispatcher{}, nil)

	_, err := svc.Create(ctx, &dto.CreateNoteRequest{Title: "Groceries", Content: "milk"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &dto.CreateNoteRequest{Title: "Work", Content: "100% done", IsPinned: true})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Work", all[0].Title, "pinned notes come first")

	blank, err := svc.List(ctx, "   ")
	require.NoError(t, err)
	assert.Len(t, blank, 2, "a blank query lists everything")

	found, err := svc.List(ctx, "MILK")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Groceries", found[0].Title)

	found, err = svc.List(ctx, "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Work", found[0].Title)
}

func TestNoteServiceUpdate(t *testing.T) {
	ctx := context.Background()
	dispatcher := &recordingDispatcher{}
	svc := NewNoteService(newLocalBackend(t), dispatcher, nil)

	created, err := svc.Create(ctx, &dto.CreateNoteRequest{Title: "Draft", Content: "v1"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, &dto.UpdateNoteRequest{Id: created.Id, IsPinned: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "Draft", updated.Title)
	assert.Equal(t, "v1", updated.Content)
	assert.True(t, updated.IsPinned)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	for _, blank := range []string{"", "   ", " \t"} {
		_, err = svc.Update(ctx, &dto.UpdateNoteRequest{Id: created.Id, Title: ptr(blank)})
		assert.ErrorIs(t, err, apperror.ErrValidation, "title %q", blank)
	}
	shown, err := svc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Draft", shown.Title)

	_, err = svc.Update(ctx, &dto.UpdateNoteRequest{Id: "missing", Title: ptr("x")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Equal(t, []string{events.NoteCreated, events.NoteUpdated}, dispatcher.types())
}

func TestNoteServiceDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewNoteService(newLocalBackend(t), &recordingDispatcher{}, nil)

	created, err := svc.Create(ctx, &dto.CreateNoteRequest{Title: "Bye"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.Id))
	require.NoError(t, svc.Delete(ctx, created.Id))

	_, err = svc.Show(ctx, created.Id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestImageServiceUploadReadsDimensions(t *testing.T) {
	ctx := context.Background()
	backend := newLocalBackend(t)
	dispatcher := &recordingDispatcher{}
	notes := NewNoteService(backend, dispatcher, nil)
	images := NewImageService(backend, dispatcher, nil)

	note, err := notes.Create(ctx, &dto.CreateNoteRequest{Title: "With picture"})
	require.NoError(t, err)

	data := pngBytes(t, 4, 3)
	ref, err := images.Upload(ctx, note.Id, data, &dto.UploadImageMetadata{Alt: "red dot"})
	require.NoError(t, err)
	assert.NotEmpty(t, ref.Id)
	assert.Equal(t, note.Id+"_"+ref.Id, ref.BlobKey)
	assert.Equal(t, 4, ref.Width)
	assert.Equal(t, 3, ref.Height)
	assert.Equal(t, "red dot", ref.Alt)

	got, err := images.Get(ctx, ref.BlobKey)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	shown, err := notes.Show(ctx, note.Id)
	require.NoError(t, err)
	require.Len(t, shown.Images, 1)
	assert.Equal(t, ref.BlobKey, shown.Images[0].BlobKey)

	require.NoError(t, images.Delete(ctx, ref.BlobKey))
	_, err = images.Get(ctx, ref.BlobKey)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Contains(t, dispatcher.types(), events.ImageSaved)
	assert.Contains(t, dispatcher.types(), events.ImageDeleted)
}

func TestImageServiceUploadValidation(t *testing.T) {
	ctx := context.Background()
	backend := newLocalBackend(t)
	images := NewImageService(backend, &recordingDispatcher{}, nil)

	_, err := images.Upload(ctx, "n1", []byte("not an image"), nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = images.Upload(ctx, "n1", nil, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = images.Upload(ctx, "missing-note", pngBytes(t, 1, 1), &dto.UploadImageMetadata{Id: "i1", Width: 10, Height: 10})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSystemServiceStatsCacheAndClear(t *testing.T) {
	ctx := context.Background()
	backend := newLocalBackend(t)
	dispatcher := &recordingDispatcher{}
	notes := NewNoteService(backend, dispatcher, nil)
	system := NewSystemService(backend, dispatcher, time.Hour, nil)

	stats, err := system.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.NoteCount)

	_, err = notes.Create(ctx, &dto.CreateNoteRequest{Title: "One"})
	require.NoError(t, err)

	stats, err = system.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.NoteCount, "served from cache")

	system.InvalidateStats()
	stats, err = system.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NoteCount)

	res, err := system.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, res.Success)

	stats, err = system.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.NoteCount)
	assert.Contains(t, dispatcher.types(), events.DataCleared)
}

type failingPingBackend struct {
	contract.StorageBackend
}

func (failingPingBackend) Ping(ctx context.Context) error {
	return apperror.NewBackendUnavailableError("ping", errors.New("connection refused"))
}

func TestSystemServiceHealth(t *testing.T) {
	ctx := context.Background()
	backend := newLocalBackend(t)

	healthy := NewSystemService(backend, &recordingDispatcher{}, 0, nil).Health(ctx)
	assert.Equal(t, HealthStatusHealthy, healthy.Status)
	assert.True(t, healthy.Database.Connected)
	assert.Equal(t, contract.BackendLocal, healthy.Database.Backend)
	require.NotNil(t, healthy.Database.Stats)
	assert.Equal(t, dto.APIVersion, healthy.Version)

	unhealthy := NewSystemService(failingPingBackend{backend}, &recordingDispatcher{}, 0, nil).Health(ctx)
	assert.Equal(t, HealthStatusUnhealthy, unhealthy.Status)
	assert.False(t, unhealthy.Database.Connected)
	assert.NotEmpty(t, unhealthy.Database.Error)
}

type discardPublisher struct{}

func (discardPublisher) Publish(ctx context.Context, payload []byte) error { return nil }

func TestDispatcherHookRefreshesStatsBeforeReturning(t *testing.T) {
	ctx := context.Background()
	backend := newLocalBackend(t)

	var system ISystemService
	dispatcher := NewEventDispatcher(discardPublisher{}, nil, nil,
		func(context.Context, events.BaseEvent) { system.InvalidateStats() },
	)
	system = NewSystemService(backend, dispatcher, time.Hour, nil)
	notes := NewNoteService(backend, dispatcher, nil)

	stats, err := system.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.NoteCount)

	created, err := notes.Create(ctx, &dto.CreateNoteRequest{Title: "Fresh"})
	require.NoError(t, err)

	stats, err = system.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NoteCount)

	require.NoError(t, notes.Delete(ctx, created.Id))
	stats, err = system.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.NoteCount)
}

// slowStatsBackend holds every stats read after it has been computed until
// release is closed.
type slowStatsBackend struct {
	contract.StorageBackend
	computed chan struct{}
	release  chan struct{}
}

func (b *slowStatsBackend) GetStorageStats(ctx context.Context) (*entity.StorageStats, error) {
	stats, err := b.StorageBackend.GetStorageStats(ctx)
	b.computed <- struct{}{}
	<-b.release
	return stats, err
}

func TestSystemServiceDropsStatsReadOvertakenByInvalidation(t *testing.T) {
	ctx := context.Background()
	inner := newLocalBackend(t)
	backend := &slowStatsBackend{
		StorageBackend: inner,
		computed:       make(chan struct{}, 4),
		release:        make(chan struct{}),
	}
	system := NewSystemService(backend, &recordingDispatcher{}, time.Hour, nil)

	done := make(chan int64)
	go func() {
		stats, err := system.Stats(ctx)
		if err != nil {
			done <- -1
			return
		}
		done <- stats.NoteCount
	}()
	<-backend.computed

	require.NoError(t, inner.SaveNote(ctx, &entity.Note{Id: "n1", Title: "Written mid-read"}))
	system.InvalidateStats()
	close(backend.release)
	assert.Equal(t, int64(0), <-done, "the in-flight read saw the old state")

	stats, err := system.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NoteCount)
}

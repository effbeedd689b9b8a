package memory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/repository/backendtest"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestLocalBackendContract(t *testing.T) {
	suite.Run(t, &backendtest.BackendSuite{
		NewBackend: func(t *testing.T) contract.StorageBackend {
			engine, err := kvstore.NewCacheEngine("")
			require.NoError(t, err)
			return NewLocalBackend(engine, nil)
		},
	})
}

func TestLocalBackendPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes-local")

	engine, err := kvstore.NewCacheEngine(path)
	require.NoError(t, err)
	backend := NewLocalBackend(engine, nil)

	note := &entity.Note{Id: "n1", Title: "Persist me", CreatedAt: entity.Now(), UpdatedAt: entity.Now()}
	require.NoError(t, backend.SaveNote(ctx, note))
	require.NoError(t, backend.SaveImage(ctx, "n1", entity.ImageReference{Id: "i1"}, []byte("blob")))
	require.NoError(t, backend.Close())

	reopened, err := kvstore.NewCacheEngine(path)
	require.NoError(t, err)
	backend = NewLocalBackend(reopened, nil)

	got, err := backend.GetNoteById(ctx, "n1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Persist me", got.Title)
	assert.Len(t, got.Images, 1)

	blob, err := backend.GetImage(ctx, "n1_i1")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), blob)
}

func TestLocalBackendDocumentLayout(t *testing.T) {
	ctx := context.Background()
	engine, err := kvstore.NewCacheEngine("")
	require.NoError(t, err)
	backend := NewLocalBackend(engine, nil)

	require.NoError(t, backend.SaveNote(ctx, &entity.Note{Id: "n1", Title: "Doc"}))
	require.NoError(t, backend.SaveImage(ctx, "n1", entity.ImageReference{Id: "i1"}, []byte{9}))

	raw, found, err := engine.Get(ctx, "notes")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(raw), `"blobKey":"n1_i1"`)
	assert.Contains(t, string(raw), `"isPinned":false`)

	blob, found, err := engine.Get(ctx, "image_n1_i1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{9}, blob)
}

func TestLocalBackendDeleteKeepsBlobsOfPrefixedNoteIds(t *testing.T) {
	ctx := context.Background()
	engine, err := kvstore.NewCacheEngine("")
	require.NoError(t, err)
	backend := NewLocalBackend(engine, nil)

	require.NoError(t, backend.SaveNote(ctx, &entity.Note{Id: "n1", Title: "Short id"}))
	require.NoError(t, backend.SaveNote(ctx, &entity.Note{Id: "n1_x", Title: "Longer id"}))
	require.NoError(t, backend.SaveImage(ctx, "n1", entity.ImageReference{Id: "own"}, []byte{1}))
	require.NoError(t, backend.SaveImage(ctx, "n1_x", entity.ImageReference{Id: "img1"}, []byte{2}))

	require.NoError(t, backend.DeleteNote(ctx, "n1"))

	gone, err := backend.GetImage(ctx, "n1_own")
	require.NoError(t, err)
	assert.Nil(t, gone)

	survivor, err := backend.GetNoteById(ctx, "n1_x")
	require.NoError(t, err)
	require.NotNil(t, survivor)
	require.Len(t, survivor.Images, 1)

	blob, err := backend.GetImage(ctx, survivor.Images[0].BlobKey)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, blob)
}

// faultyEngine fails the operations its flags name.
type faultyEngine struct {
	kvstore.Engine
	failNotesRead bool
	failDelete    bool
}

func (e *faultyEngine) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if e.failNotesRead && key == notesKey {
		return nil, false, errors.New("read failed")
	}
	return e.Engine.Get(ctx, key)
}

func (e *faultyEngine) Delete(ctx context.Context, keys ...string) error {
	if e.failDelete {
		return errors.New("delete failed")
	}
	return e.Engine.Delete(ctx, keys...)
}

func TestLocalBackendDeleteImageNeverLeavesDanglingReference(t *testing.T) {
	ctx := context.Background()
	inner, err := kvstore.NewCacheEngine("")
	require.NoError(t, err)
	engine := &faultyEngine{Engine: inner}
	backend := NewLocalBackend(engine, nil)

	require.NoError(t, backend.SaveNote(ctx, &entity.Note{Id: "n1", Title: "Pictures"}))
	require.NoError(t, backend.SaveImage(ctx, "n1", entity.ImageReference{Id: "i1"}, []byte{7}))

	engine.failNotesRead = true
	assert.ErrorIs(t, backend.DeleteImage(ctx, "n1_i1"), apperror.ErrBackendUnavailable)
	engine.failNotesRead = false

	note, err := backend.GetNoteById(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, note.Images, 1)
	blob, err := backend.GetImage(ctx, "n1_i1")
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, blob, "blob stays while its reference does")

	engine.failDelete = true
	assert.ErrorIs(t, backend.DeleteImage(ctx, "n1_i1"), apperror.ErrBackendUnavailable)
	engine.failDelete = false

	note, err = backend.GetNoteById(ctx, "n1")
	require.NoError(t, err)
	assert.Empty(t, note.Images, "reference is dropped before the blob")
}

func TestLocalBackendSurfacesEngineFailure(t *testing.T) {
	ctx := context.Background()
	engine, err := kvstore.NewCacheEngine("")
	require.NoError(t, err)
	backend := NewLocalBackend(engine, nil)
	require.NoError(t, engine.Close())

	_, err = backend.GetAllNotes(ctx)
	assert.Error(t, err)
	assert.Error(t, backend.Ping(ctx))
}

package relational

import (
	"context"
	"os"
	"testing"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/repository/backendtest"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDB(database.GormConfig{
		Driver:   database.DriverSQLite,
		DSN:      "file:" + backendtest.UniqueName("notes") + "?mode=memory&cache=shared",
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestRelationalBackendContract(t *testing.T) {
	suite.Run(t, &backendtest.BackendSuite{
		NewBackend: func(t *testing.T) contract.StorageBackend {
			return NewBackend(newSQLiteDB(t), nil)
		},
		DeleteMissingFails: true,
	})
}

// Runs against a disposable Postgres database; every table is cleared
// before each test.
func TestPostgresBackendContract(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	suite.Run(t, &backendtest.BackendSuite{
		NewBackend: func(t *testing.T) contract.StorageBackend {
			db, err := database.NewGormDB(database.GormConfig{
				Driver:   database.DriverPostgres,
				DSN:      dsn,
				LogLevel: logger.Silent,
			})
			require.NoError(t, err)
			require.NoError(t, Migrate(db))

			backend := NewBackend(db, nil)
			require.NoError(t, backend.ClearAllData(context.Background()))
			return backend
		},
		DeleteMissingFails: true,
	})
}

func TestRelationalBackendCascadeOnRawDelete(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	backend := NewBackend(db, nil)
	defer backend.Close()

	require.NoError(t, backend.SaveNote(ctx, &entity.Note{Id: "n1", Title: "Cascade"}))
	require.NoError(t, backend.SaveImage(ctx, "n1", entity.ImageReference{Id: "i1"}, []byte{1}))

	require.NoError(t, db.Exec("DELETE FROM notes WHERE id = ?", "n1").Error)

	blob, err := backend.GetImage(ctx, "n1_i1")
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestRelationalBackendImageForeignKey(t *testing.T) {
	db := newSQLiteDB(t)
	defer NewBackend(db, nil).Close()

	err := db.Exec(
		"INSERT INTO images (id, note_id, blob_key, alt, width, height, data, created_at) VALUES (?, ?, ?, '', 0, 0, ?, CURRENT_TIMESTAMP)",
		"i1", "missing", "missing_i1", []byte{1},
	).Error
	require.Error(t, err)
	assert.ErrorIs(t, translateError("save image", err), apperror.ErrNotFound)
}

func TestRelationalBackendName(t *testing.T) {
	backend := NewBackend(newSQLiteDB(t), nil)
	defer backend.Close()
	assert.Equal(t, "relational:sqlite", backend.Name())
}

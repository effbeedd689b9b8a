package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"data/notes.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL",
		SQLiteDSN("data/notes.db"))
	assert.Equal(t,
		"file:test?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000",
		SQLiteDSN("file:test?mode=memory&cache=shared"))
}

func TestNewGormDBRejectsUnknownDriver(t *testing.T) {
	_, err := NewGormDB(GormConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)

	_, err = NewGormDB(GormConfig{Driver: DriverPostgres})
	assert.Error(t, err)
}

func TestNewGormDBSQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := NewGormDB(GormConfig{
		Driver:   DriverSQLite,
		DSN:      "file:gorm_fk_test?mode=memory&cache=shared",
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestNewGormDBSQLiteLowerFoldsUnicode(t *testing.T) {
	db, err := NewGormDB(GormConfig{
		Driver:   DriverSQLite,
		DSN:      "file:gorm_lower_test?mode=memory&cache=shared",
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)

	var folded string
	require.NoError(t, db.Raw("SELECT LOWER(?)", "École ÅNGSTRÖM").Scan(&folded).Error)
	assert.Equal(t, "école ångström", folded)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

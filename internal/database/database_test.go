package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookreviews/internal/config"
	"github.com/mrlokans/bookreviews/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewSilentDatabase(config.Database{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "books", "reviews", "settings", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "table %s should exist", table)
	}
	assert.NoError(t, db.Ping())
}

func TestNewDatabase_AppliesPoolDefaults(t *testing.T) {
	db := setupTestDB(t)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, defaultMaxOpenConns, sqlDB.Stats().MaxOpenConnections)
}

func TestDatabase_GetStats(t *testing.T) {
	db := setupTestDB(t)

	users, books, reviews, err := db.GetStats()
	require.NoError(t, err)
	assert.Zero(t, users)
	assert.Zero(t, books)
	assert.Zero(t, reviews)

	user := &entities.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.DB.Create(user).Error)
	require.NoError(t, db.DB.Create(&entities.Book{OwnerID: user.ID, Title: "Dune"}).Error)

	users, books, reviews, err = db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), books)
	assert.Zero(t, reviews)
}

func TestIsUniqueViolation(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.DB.Create(&entities.User{Username: "alice", PasswordHash: "x"}).Error)
	err := db.DB.Create(&entities.User{Username: "alice", PasswordHash: "y"}).Error

	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsBusy(gorm.ErrRecordNotFound))
}

func TestDSN(t *testing.T) {
	got := dsn(config.Database{Path: "/tmp/app.db", BusyTimeout: defaultBusyTimeout})
	assert.Equal(t, "/tmp/app.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", got)
}

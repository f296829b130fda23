package repository

import (
	"testing"

	"tidepool/internal/database"
	"tidepool/internal/seed"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.RegisteredModels()...))
	return db
}

func setupFactory(t *testing.T) (*gorm.DB, *seed.Factory) {
	t.Helper()
	db := setupTestDB(t)
	return db, seed.NewFactory(db)
}

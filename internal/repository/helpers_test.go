package repository

import (
	"testing"
	"time"

	"hackit/internal/database"
	"hackit/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupTestDB opens a private in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection would otherwise get its own empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func createTestPost(t *testing.T, db *gorm.DB, id string, authorID *string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:           id,
		UserID:       authorID,
		AuthorName:   "Author " + id,
		AuthorTitle:  "Founder",
		ProfileColor: "#9D4EDD",
		Content:      "content of post " + id,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func strPtr(s string) *string {
	return &s
}

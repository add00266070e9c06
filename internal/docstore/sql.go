package docstore

import (
	"context"
	"errors"
	"fmt"

	"hackit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps documents in the doc_users table.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore returns a Store over the shared GORM connection.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) SaveUser(ctx context.Context, uid string, doc models.DocUser) error {
	doc = stamp(uid, doc)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "role", "created_at"}),
		}).
		Create(&doc).Error
	if err != nil {
		return fmt.Errorf("upsert doc_users/%s: %w", uid, err)
	}
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, uid string) (*models.DocUser, error) {
	var doc models.DocUser
	if err := s.db.WithContext(ctx).First(&doc, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get doc_users/%s: %w", uid, err)
	}
	return &doc, nil
}

func (s *SQLStore) Close(context.Context) error { return nil }

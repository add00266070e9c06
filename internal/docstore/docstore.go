// Package docstore keeps the users/{uid} documents written at sign-up.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hackit/internal/config"
	"hackit/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned by GetUser when no document exists for the uid.
var ErrNotFound = errors.New("docstore: document not found")

// TimestampLayout is the ISO-8601 form of createdAt (UTC, milliseconds, Z).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Store sets and reads users/{uid} documents.
type Store interface {
	// SaveUser replaces the document wholesale and stamps createdAt.
	SaveUser(ctx context.Context, uid string, doc models.DocUser) error
	GetUser(ctx context.Context, uid string) (*models.DocUser, error)
	Close(ctx context.Context) error
}

// Timestamp formats t the way createdAt is stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var now = time.Now

// New builds the store selected by DOCSTORE_DRIVER. The sql backend shares db.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (Store, error) {
	switch cfg.DocstoreDriver {
	case config.DocstoreMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DocstoreSQL, "":
		if db == nil {
			return nil, errors.New("docstore: sql driver requires a database connection")
		}
		return NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("docstore: unknown driver %q", cfg.DocstoreDriver)
	}
}

func stamp(uid string, doc models.DocUser) models.DocUser {
	doc.UID = uid
	doc.CreatedAt = Timestamp(now())
	return doc
}

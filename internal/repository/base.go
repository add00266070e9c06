package repository

import (
	"errors"
	"strings"

	"hackit/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint failure.
const pgUniqueViolation = "23505"

// readDB prefers the read replica for queries that tolerate lag.
func readDB(primary *gorm.DB) *gorm.DB {
	if replica := database.GetReadDB(); replica != nil {
		return replica
	}
	return primary
}

// newID returns a UUIDv7 row id for posts, comments and notifications.
// Ids from one process sort in creation order, which breaks created_at ties.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isUniqueConstraintError reports a duplicate-key failure from Postgres or
// SQLite.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}

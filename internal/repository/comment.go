package repository

import (
	"context"

	"hackit/internal/cache"
	"hackit/internal/models"
	"hackit/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations.
// Comments are append-only, so there is no update or delete.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]*models.Comment, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

// Create appends the comment and bumps the post's comments_count in one transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()

	if comment.ID == "" {
		comment.ID = newID()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upd := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1"))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		if appErr, ok := models.AsAppError(err); ok {
			return appErr
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	r.log.LogCreate(ctx, "comment_id", comment.ID, "post_id", comment.PostID)
	return nil
}

// ListByPost returns comments oldest first, in insertion order within the same
// created_at. A non-positive limit returns all of them.
func (r *commentRepository) ListByPost(ctx context.Context, postID string, limit, offset int) ([]*models.Comment, error) {
	defer observability.TrackQuery("list", "comments")()

	var comments []*models.Comment
	q := readDB(r.db).WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

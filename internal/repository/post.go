// Package repository implements the data access layer for the application.
package repository

import (
	"context"

	"hackit/internal/cache"
	"hackit/internal/models"
	"hackit/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts and likes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Post, error)
	List(ctx context.Context, limit, offset int, viewerID string) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	// Like records the viewer's like. changed is false when the like already existed.
	Like(ctx context.Context, userID, postID string) (changed bool, err error)
	// Unlike removes the viewer's like. changed is false when there was nothing to remove.
	Unlike(ctx context.Context, userID, postID string) (changed bool, err error)
	IsLiked(ctx context.Context, userID, postID string) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID string, postIDs []string) ([]string, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	if post.ID == "" {
		post.ID = newID()
	}
	for i := range post.Images {
		post.Images[i].PostID = post.ID
		post.Images[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	cache.InvalidatePostsList(ctx)
	r.log.LogCreate(ctx, "post_id", post.ID, "images", len(post.Images))
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).
			Preload("Images", orderedImages).
			First(&post, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	post.Liked = false
	if viewerID != "" {
		liked, err := r.IsLiked(ctx, viewerID, id)
		if err != nil {
			return nil, err
		}
		post.Liked = liked
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID string) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	var posts []*models.Post
	key := cache.PostsListKey(ctx, limit, offset)
	err := cache.Aside(ctx, key, &posts, cache.ListTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).
			Preload("Images", orderedImages).
			Order("created_at DESC").
			Order("id DESC").
			Limit(limit).
			Offset(offset).
			Find(&posts).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		p.Liked = false
	}
	if viewerID == "" || len(posts) == 0 {
		return posts, nil
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	liked, err := r.GetLikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	likedSet := make(map[string]struct{}, len(liked))
	for _, id := range liked {
		likedSet[id] = struct{}{}
	}
	for _, p := range posts {
		_, p.Liked = likedSet[p.ID]
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) GetLikedPostIDs(ctx context.Context, userID string, postIDs []string) ([]string, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likedPostIDs []string
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &likedPostIDs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return likedPostIDs, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID string) (bool, error) {
	defer observability.TrackQuery("like", "likes")()

	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// ON CONFLICT DO NOTHING makes concurrent retries of the same like harmless.
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{UserID: userID, PostID: postID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		upd := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1"))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return models.NewNotFoundError("Post", postID)
		}
		changed = true
		return nil
	})
	if err != nil {
		if appErr, ok := models.AsAppError(err); ok {
			return false, appErr
		}
		r.log.LogError(ctx, err, "like")
		return false, models.NewInternalError(err)
	}
	if changed {
		cache.InvalidatePost(ctx, postID)
	}
	return changed, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID string) (bool, error) {
	defer observability.TrackQuery("unlike", "likes")()

	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).
			Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "unlike")
		return false, models.NewInternalError(err)
	}
	if changed {
		cache.InvalidatePost(ctx, postID)
	}
	return changed, nil
}

package repository

import (
	"context"

	"hackit/internal/models"
	"hackit/internal/observability"

	"gorm.io/gorm"
)

// NotificationRepository persists a user's notification overlay entries.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	// HasActivity reports whether actorID already raised action on postID for userID.
	HasActivity(ctx context.Context, userID, actorID, postID string, action models.NotificationAction) (bool, error)
}

type notificationRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, log: observability.NewRepoLogger("notifications")}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = newID()
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "notification_id", n.ID, "recipient_id", n.UserID, "action", string(n.Action))
	return nil
}

// ListByUser returns the newest notifications first.
func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	defer observability.TrackQuery("list", "notifications")()

	var out []*models.Notification
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkAllRead flips every unread record of the user and reports how many changed.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "mark_all_read")
		return 0, models.NewInternalError(res.Error)
	}
	r.log.LogUpdate(ctx, "recipient_id", userID, "updated", res.RowsAffected)
	return res.RowsAffected, nil
}

// MarkRead marks one of the user's notifications read. A record owned by
// someone else is reported as missing.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) HasActivity(ctx context.Context, userID, actorID, postID string, action models.NotificationAction) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND actor_id = ? AND post_id = ? AND action = ?", userID, actorID, postID, action).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

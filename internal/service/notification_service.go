package service

import (
	"context"
	"time"

	"hackit/internal/feed"
	"hackit/internal/models"
	"hackit/internal/observability"
	"hackit/internal/repository"
)

const (
	// NotificationTitleLength is how much of the post body a notification quotes.
	NotificationTitleLength  = 30
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

type NotificationService struct {
	repo     repository.NotificationRepository
	profiles repository.ProfileRepository
	events   EventPublisher
	now      func() time.Time
}

// NotificationView is a notification as printed in the overlay.
type NotificationView struct {
	*models.Notification
	ActionText string `json:"action_text"`
	TimeAgo    string `json:"time_ago"`
}

// NotificationList is the overlay payload.
type NotificationList struct {
	Notifications []*NotificationView `json:"notifications"`
	UnreadCount   int64               `json:"unread_count"`
}

func NewNotificationService(
	repo repository.NotificationRepository,
	profiles repository.ProfileRepository,
	events EventPublisher,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		profiles: profiles,
		events:   publisherOrNoop(events),
		now:      time.Now,
	}
}

func (s *NotificationService) view(n *models.Notification) *NotificationView {
	return &NotificationView{
		Notification: n,
		ActionText:   n.Action.ActionText(),
		TimeAgo:      feed.TimeAgo(n.CreatedAt, s.now()),
	}
}

// List returns the caller's notifications newest first with the unread count.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) (*NotificationList, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &NotificationList{Notifications: make([]*NotificationView, 0, len(items)), UnreadCount: unread}
	for _, n := range items {
		out.Notifications = append(out.Notifications, s.view(n))
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkAllRead marks every notification of the caller read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.events.PublishUserEvent(ctx, userID, EventNotificationsRead, map[string]interface{}{
			"all":          true,
			"unread_count": 0,
		})
	}
	return updated, nil
}

// MarkRead marks one of the caller's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (int64, error) {
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		return 0, err
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.events.PublishUserEvent(ctx, userID, EventNotificationsRead, map[string]interface{}{
		"id":           id,
		"unread_count": unread,
	})
	return unread, nil
}

// NotifyPostActivity tells a post's author that actorID liked or commented on it.
// Posts without an author and actions on one's own post raise nothing.
func (s *NotificationService) NotifyPostActivity(ctx context.Context, actorID string, post *models.Post, action models.NotificationAction) error {
	recipient := derefString(post.UserID)
	if recipient == "" || recipient == actorID {
		return nil
	}

	// A post is liked at most once per actor, so unlike then like again does
	// not notify twice.
	if action == models.NotificationLiked {
		seen, err := s.repo.HasActivity(ctx, recipient, actorID, post.ID, action)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	actorName, actorColor := AnonymousAuthorName, models.DefaultAvatarColor
	if s.profiles != nil {
		profile, err := s.profiles.Get(ctx, actorID)
		switch {
		case err == nil:
			actorName, actorColor = profile.Name, profile.AvatarColor
		case !isNotFound(err):
			return err
		}
	}

	n := &models.Notification{
		UserID:     recipient,
		ActorID:    strPtr(actorID),
		ActorName:  actorName,
		ActorColor: actorColor,
		Action:     action,
		PostID:     strPtr(post.ID),
		PostTitle:  feed.Title(post.Content, NotificationTitleLength),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	observability.NotificationsCreated.WithLabelValues(string(action)).Inc()

	s.events.PublishUserEvent(ctx, recipient, EventNotificationCreated, map[string]interface{}{
		"notification": s.view(n),
	})
	return nil
}

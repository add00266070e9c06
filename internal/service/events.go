package service

import (
	"context"

	"hackit/internal/media"
)

// Realtime event types pushed to connected clients.
const (
	EventPostCreated         = "post_created"
	EventPostReactionUpdated = "post_reaction_updated"
	EventCommentCreated      = "comment_created"
	EventNotificationCreated = "notification_created"
	EventNotificationsRead   = "notifications_read"
)

// EventPublisher delivers realtime events to a user's open sockets.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, userID, eventType string, payload map[string]interface{})
	PublishBroadcastEvent(ctx context.Context, eventType string, payload map[string]interface{})
}

// ImageStore processes and persists uploaded images.
type ImageStore interface {
	SaveAvatar(ctx context.Context, in media.Upload) (string, error)
	SavePostImage(ctx context.Context, in media.Upload) (string, error)
}

type noopPublisher struct{}

func (noopPublisher) PublishUserEvent(context.Context, string, string, map[string]interface{}) {}
func (noopPublisher) PublishBroadcastEvent(context.Context, string, map[string]interface{})    {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func strPtr(s string) *string {
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

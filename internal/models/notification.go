package models

import "time"

// NotificationAction is what the actor did to the recipient's post.
type NotificationAction string

const (
	// NotificationCommented is raised when someone comments on a post.
	NotificationCommented NotificationAction = "commented"
	// NotificationLiked is raised when someone likes a post.
	NotificationLiked NotificationAction = "liked"
)

// Notification is an entry in a user's notification overlay.
type Notification struct {
	ID         string             `gorm:"primaryKey;size:64" json:"id"`
	UserID     string             `gorm:"size:128;not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	ActorID    *string            `gorm:"size:128" json:"actor_id,omitempty"`
	ActorName  string             `gorm:"not null" json:"actor_name"`
	ActorColor string             `gorm:"size:7" json:"actor_color"`
	Action     NotificationAction `gorm:"type:varchar(16);not null" json:"action"`
	PostID     *string            `gorm:"size:64" json:"post_id,omitempty"`
	PostTitle  string             `json:"post_title"`
	Read       bool               `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"read"`
	CreatedAt  time.Time          `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// ActionText renders the action the way the overlay prints it.
func (a NotificationAction) ActionText() string {
	switch a {
	case NotificationCommented:
		return "commented on your post"
	case NotificationLiked:
		return "liked your post"
	default:
		return string(a)
	}
}

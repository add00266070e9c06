package models

import "time"

// Like is one user liking one post. idx_like_pair makes a second like by the
// same user a unique-constraint violation.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:128;not null;uniqueIndex:idx_like_pair" json:"user_id"`
	PostID    string    `gorm:"size:64;not null;uniqueIndex:idx_like_pair;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string { return "likes" }

package models

import "time"

// Comment is an append-only reply on a post. Comments are ordered by CreatedAt.
type Comment struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	PostID       string    `gorm:"size:64;not null;index" json:"post_id"`
	UserID       *string   `gorm:"size:128;index" json:"user_id,omitempty"`
	AuthorName   string    `gorm:"not null" json:"author_name"`
	ProfileColor string    `gorm:"size:7" json:"profile_color"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	LikesCount   int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

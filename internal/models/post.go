package models

import (
	"time"
)

// Post represents a post in the feed. Author fields are a snapshot of the
// author's profile taken at creation time.
type Post struct {
	ID            string      `gorm:"primaryKey;size:64" json:"id"`
	UserID        *string     `gorm:"size:128;index" json:"user_id,omitempty"`
	AuthorName    string      `gorm:"not null" json:"author_name"`
	AuthorTitle   string      `json:"author_title"`
	ProfileColor  string      `gorm:"size:7" json:"profile_color"`
	Content       string      `gorm:"type:text;not null" json:"content"`
	LikesCount    int         `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int         `gorm:"not null;default:0" json:"comments_count"`
	Images        []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// ImageURLs returns the post image references in display order.
func (p *Post) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// PostImage is one ordered image reference attached to a post.
type PostImage struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PostID   string `gorm:"size:64;not null;index:idx_post_images_order,priority:1" json:"-"`
	Position int    `gorm:"not null;index:idx_post_images_order,priority:2" json:"position"`
	URL      string `gorm:"not null" json:"url"`
}

// TableName specifies the table name for GORM.
func (PostImage) TableName() string {
	return "post_images"
}

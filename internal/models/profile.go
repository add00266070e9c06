package models

import "time"

// Default profile values shown until the user saves their own.
const (
	DefaultProfileName             = "Placeholder Name"
	DefaultProfileBusinessPosition = "C.E.O of TechCorp Solutions"
	DefaultProfileLocation         = "Mandaue City, Cebu, Central Visayas, Philippines"
	DefaultAvatarColor             = "#F7C5C5"
	DefaultProfileWebsite          = "https://portfolio.example.com"
)

// Profile is the editable public card of a user.
type Profile struct {
	UserID           string    `gorm:"primaryKey;size:128" json:"user_id"`
	Name             string    `gorm:"not null" json:"name"`
	BusinessPosition string    `gorm:"not null" json:"business_position"`
	Location         string    `gorm:"not null" json:"location"`
	AvatarColor      string    `gorm:"size:7;not null;default:'#F7C5C5'" json:"avatar_color"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Website          string    `json:"website,omitempty"`
	FirstVisit       bool      `gorm:"not null" json:"first_visit"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// DefaultProfile returns the placeholder profile for a user that has never saved one.
func DefaultProfile(userID string) *Profile {
	return &Profile{
		UserID:           userID,
		Name:             DefaultProfileName,
		BusinessPosition: DefaultProfileBusinessPosition,
		Location:         DefaultProfileLocation,
		AvatarColor:      DefaultAvatarColor,
		Website:          DefaultProfileWebsite,
		FirstVisit:       true,
	}
}

package models

// DocUser is the users/{uid} document written on sign-up.
type DocUser struct {
	UID       string `gorm:"primaryKey;size:128;column:uid" bson:"_id" json:"uid"`
	Email     string `bson:"email" json:"email"`
	Name      string `bson:"name" json:"name"`
	Role      string `bson:"role" json:"role"`
	CreatedAt string `gorm:"column:created_at" bson:"createdAt" json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (DocUser) TableName() string {
	return "doc_users"
}

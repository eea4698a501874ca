package model

import "time"

// User represents an admin account of the storefront.
type User struct {
	ID        string   `json:"id" gorm:"primaryKey"`
	Email     string   `json:"email" gorm:"index;not null"`
	FirstName string   `json:"first_name,omitempty" gorm:"column:first_name"`
	LastName  string   `json:"last_name,omitempty" gorm:"column:last_name"`
	AvatarURL string   `json:"avatar_url,omitempty" gorm:"column:avatar_url"`
	Metadata  Metadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	// Timestamps
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt *time.Time `json:"-" gorm:"column:deleted_at;index"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// IsDeleted reports whether the user has been soft deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

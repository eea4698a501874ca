package model

import "time"

// Invite represents an invitation to join the admin as a user.
// Accepting an invite soft-deletes the row; it stays readable with
// an explicit include-deleted lookup.
type Invite struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index;not null"`
	Accepted  bool      `json:"accepted" gorm:"default:false"`
	Token     string    `json:"-" gorm:"column:token"`
	ExpiresAt time.Time `json:"expires_at" gorm:"column:expires_at"`
	Metadata  Metadata  `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	// Timestamps
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

// TableName returns the database table name.
func (Invite) TableName() string {
	return "invites"
}

// IsDeleted reports whether the invite has been soft deleted.
func (i *Invite) IsDeleted() bool {
	return i.DeletedAt != nil
}

// IsExpired returns true if the invite has expired.
func (i *Invite) IsExpired() bool {
	return !i.ExpiresAt.IsZero() && time.Now().After(i.ExpiresAt)
}

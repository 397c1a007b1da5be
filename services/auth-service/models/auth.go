package models

import "github.com/google/uuid"

// Auth holds only the credential; profile data lives on the user record.
type Auth struct {
	Base
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Password string    `gorm:"not null"`
}

func (Auth) TableName() string {
	return "auths"
}

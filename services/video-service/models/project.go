package models

import "github.com/google/uuid"

// Project groups videos of one creator, e.g. the seasons of a series.
type Project struct {
	Base
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name    string    `gorm:"not null" json:"name"`
}

func (Project) TableName() string {
	return "projects"
}

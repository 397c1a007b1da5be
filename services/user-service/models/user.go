package models

const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// User is the public profile; credentials live in the auth service.
type User struct {
	Base
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `gorm:"type:varchar(16);not null;default:'creator'" json:"role"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

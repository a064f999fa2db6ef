package models

import (
	"time"
)

type User struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	DisplayName    string    `gorm:"size:100" json:"display_name"`
	RoleID         Role      `gorm:"not null;default:3" json:"role_id"`
	OrganizationID int       `gorm:"not null;default:0;index" json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

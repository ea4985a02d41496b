package models

import (
	"time"
)

// Role values stored on profiles. The role column is a closed two-value
// enum; changing it is reserved to admin actors.
const (
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)

type Profile struct {
	ProfileID   int        `gorm:"primaryKey;column:profile_id" json:"profile_id"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"`
	DisplayName string     `gorm:"column:display_name" json:"display_name"`
	Role        string     `gorm:"column:role" json:"role"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

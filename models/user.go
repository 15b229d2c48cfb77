package models

import (
	"time"
)

const (
	RoleMember = "member"
	RoleStaff  = "staff"
)

// User represents a basket member or a staff member
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Auth0ID   string    `gorm:"size:191;uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150;not null" json:"last_name"`
	Email     string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"size:18" json:"phone"`
	Address   string    `gorm:"size:128" json:"address"`
	Role      string    `gorm:"size:16;not null;default:'member'" json:"role"` // "member" or "staff"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsStaff reports whether the user can manage the catalog and deliveries
func (u *User) IsStaff() bool {
	return u != nil && u.Role == RoleStaff
}

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enumerates the access levels of a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User represents an identity record. Users are never hard-deleted; the
// active flag is the only lifecycle state.
type User struct {
	ID               string     `json:"id" gorm:"type:char(36);primaryKey"`
	Email            string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Username         string     `json:"username" gorm:"uniqueIndex;size:64;not null"`
	PasswordHash     string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role             Role       `json:"role" gorm:"size:16;not null;default:'USER'"`
	IsActive         bool       `json:"is_active" gorm:"not null;default:true;index"`
	FirstName        *string    `json:"first_name,omitempty" gorm:"size:64"`
	LastName         *string    `json:"last_name,omitempty" gorm:"size:64"`
	ResetToken       *string    `json:"-" gorm:"size:64;index"`
	ResetTokenExpiry *time.Time `json:"-"`
	IsEmailVerified  bool       `json:"is_email_verified" gorm:"not null;default:false"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// BeforeCreate assigns an ID and normalizes the email before insert.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

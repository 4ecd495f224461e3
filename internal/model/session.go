package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session binds a signed token to a user and an expiry, representing one
// authenticated login. The token string doubles as the lookup key; expiry is
// enforced both inside the token and on this row, whichever is stricter.
type Session struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:char(36);not null;index"`
	Token     string    `json:"-" gorm:"uniqueIndex;size:768;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an ID before insert.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the persisted expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

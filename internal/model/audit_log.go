package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit event names.
const (
	AuditLoginSuccess   = "login_success"
	AuditLoginFailure   = "login_failure"
	AuditLockout        = "login_lockout"
	AuditLogout         = "logout"
	AuditPasswordReset  = "password_reset"
	AuditPasswordChange = "password_change"
	AuditDeactivated    = "account_deactivated"
)

// AuthAuditLog records authentication events. Writes are best-effort and
// never fail the request that produced them.
type AuthAuditLog struct {
	ID        string         `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id" gorm:"type:char(36);index"`
	Event     string         `json:"event" gorm:"size:64;not null"`
	Data      datatypes.JSON `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// BeforeCreate assigns an ID before insert.
func (l *AuthAuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

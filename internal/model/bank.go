package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bank represents one bank's loan eligibility record. Deletion is soft: the
// row stays and history keeps accumulating until a restore.
type Bank struct {
	ID              string         `json:"id" gorm:"type:char(36);primaryKey"`
	BankName        string         `json:"bank_name" gorm:"size:255;not null;index"`
	Classification  string         `json:"classification" gorm:"size:64;not null"`
	LogoURL         *string        `json:"logo_url,omitempty" gorm:"size:512"`
	EligibilityData datatypes.JSON `json:"eligibility_data" gorm:"not null"`
	MaximumPLAmount *float64       `json:"maximum_pl_amount,omitempty"`
	MaximumBLAmount *float64       `json:"maximum_bl_amount,omitempty"`
	ProcessingFees  datatypes.JSON `json:"processing_fees,omitempty"`
	IsDeleted       bool           `json:"is_deleted" gorm:"not null;default:false;index"`
	DeletedAt       *time.Time     `json:"deleted_at,omitempty"`
	DeletedBy       *string        `json:"deleted_by,omitempty" gorm:"type:char(36)"`
	CreatedBy       *string        `json:"created_by,omitempty" gorm:"type:char(36)"`
	UpdatedBy       *string        `json:"updated_by,omitempty" gorm:"type:char(36)"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// Relations
	History []BankHistory `json:"history,omitempty" gorm:"foreignKey:BankID"`
}

// BeforeCreate assigns an ID before insert.
func (b *Bank) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

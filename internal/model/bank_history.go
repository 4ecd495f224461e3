package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChangeType enumerates the kinds of bank record changes.
type ChangeType string

const (
	ChangeCreate  ChangeType = "CREATE"
	ChangeUpdate  ChangeType = "UPDATE"
	ChangeDelete  ChangeType = "DELETE"
	ChangeRestore ChangeType = "RESTORE"
)

// BankHistory is an immutable snapshot of a bank record taken at every
// change, with the list of field names that changed. Creates carry ["ALL"],
// delete/restore carry ["isDeleted"].
type BankHistory struct {
	ID              string         `json:"id" gorm:"type:char(36);primaryKey"`
	BankID          string         `json:"bank_id" gorm:"type:char(36);not null;index"`
	BankName        string         `json:"bank_name" gorm:"size:255;not null"`
	EligibilityData datatypes.JSON `json:"eligibility_data"`
	MaximumPLAmount *float64       `json:"maximum_pl_amount,omitempty"`
	MaximumBLAmount *float64       `json:"maximum_bl_amount,omitempty"`
	ProcessingFees  datatypes.JSON `json:"processing_fees,omitempty"`
	ChangeType      ChangeType     `json:"change_type" gorm:"size:16;not null"`
	ChangedFields   []string       `json:"changed_fields" gorm:"serializer:json;not null"`
	CreatedBy       *string        `json:"created_by,omitempty" gorm:"type:char(36)"`
	CreatedAt       time.Time      `json:"created_at"`
}

// BeforeCreate assigns an ID before insert.
func (h *BankHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

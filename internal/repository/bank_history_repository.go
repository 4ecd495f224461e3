package repository

import (
	"context"

	"gorm.io/gorm"

	"bankelig/internal/model"
)

// BankHistoryRepository defines persistence operations for bank change
// history.
type BankHistoryRepository interface {
	Create(ctx context.Context, entry *model.BankHistory) error
	ListByBankID(ctx context.Context, bankID string) ([]model.BankHistory, error)
}

type bankHistoryRepository struct {
	db *gorm.DB
}

// NewBankHistoryRepository builds a GORM-backed repository.
func NewBankHistoryRepository(db *gorm.DB) BankHistoryRepository {
	return &bankHistoryRepository{db: db}
}

func (r *bankHistoryRepository) Create(ctx context.Context, entry *model.BankHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *bankHistoryRepository) ListByBankID(ctx context.Context, bankID string) ([]model.BankHistory, error) {
	var entries []model.BankHistory
	err := r.db.WithContext(ctx).
		Where("bank_id = ?", bankID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

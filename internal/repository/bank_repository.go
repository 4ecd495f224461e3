package repository

import (
	"context"

	"gorm.io/gorm"

	"bankelig/internal/model"
)

// BankRepository defines persistence operations for bank records.
type BankRepository interface {
	Create(ctx context.Context, bank *model.Bank) error
	Update(ctx context.Context, bank *model.Bank) error
	FindByID(ctx context.Context, id string) (*model.Bank, error)
	// List returns banks ordered by name; deleted rows are included only
	// when includeDeleted is set.
	List(ctx context.Context, includeDeleted bool) ([]model.Bank, error)
}

type bankRepository struct {
	db *gorm.DB
}

// NewBankRepository builds a GORM-backed repository.
func NewBankRepository(db *gorm.DB) BankRepository {
	return &bankRepository{db: db}
}

func (r *bankRepository) Create(ctx context.Context, bank *model.Bank) error {
	return r.db.WithContext(ctx).Create(bank).Error
}

func (r *bankRepository) Update(ctx context.Context, bank *model.Bank) error {
	return r.db.WithContext(ctx).Save(bank).Error
}

func (r *bankRepository) FindByID(ctx context.Context, id string) (*model.Bank, error) {
	var bank model.Bank
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bank).Error; err != nil {
		return nil, err
	}
	return &bank, nil
}

func (r *bankRepository) List(ctx context.Context, includeDeleted bool) ([]model.Bank, error) {
	query := r.db.WithContext(ctx).Order("bank_name")
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	var banks []model.Bank
	if err := query.Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

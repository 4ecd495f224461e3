package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bankelig/internal/model"
)

// EmailVerificationRepository defines persistence operations for pending
// email verifications.
type EmailVerificationRepository interface {
	// Upsert replaces any existing verification for the user.
	Upsert(ctx context.Context, verification *model.EmailVerification) error
	FindByToken(ctx context.Context, token string) (*model.EmailVerification, error)
	DeleteByToken(ctx context.Context, token string) error
}

type emailVerificationRepository struct {
	db *gorm.DB
}

// NewEmailVerificationRepository builds a GORM-backed repository.
func NewEmailVerificationRepository(db *gorm.DB) EmailVerificationRepository {
	return &emailVerificationRepository{db: db}
}

func (r *emailVerificationRepository) Upsert(ctx context.Context, verification *model.EmailVerification) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "updated_at"}),
		}).
		Create(verification).Error
}

func (r *emailVerificationRepository) FindByToken(ctx context.Context, token string) (*model.EmailVerification, error) {
	var verification model.EmailVerification
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&verification).Error; err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *emailVerificationRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.EmailVerification{}).Error
}

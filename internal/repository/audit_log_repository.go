package repository

import (
	"context"

	"gorm.io/gorm"

	"bankelig/internal/model"
)

// AuditLogRepository defines persistence operations for auth audit events.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuthAuditLog) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]model.AuthAuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository builds a GORM-backed repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *model.AuthAuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]model.AuthAuditLog, error) {
	var entries []model.AuthAuditLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

package repository

import (
	"context"

	"nfc-card-admin/internal/models"

	"gorm.io/gorm"
)

type GormAuditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *GormAuditRepo {
	return &GormAuditRepo{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *GormAuditRepo) CreateAuditLog(ctx context.Context, userID *uint, action, subject, details string) error {
	log := &models.AuditLog{
		UserID:  userID,
		Action:  action,
		Subject: subject,
		Details: details,
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// Recent returns the newest entries for the dashboard activity feed
func (r *GormAuditRepo) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// NewGormRegistries wires every registry to db.
func NewGormRegistries(db *gorm.DB) *Registries {
	return &Registries{
		Citizens:     NewCitizenRepo(db),
		Cards:        NewCardRepo(db),
		Institutions: NewInstitutionRepo(db),
		Users:        NewUserRepo(db),
		Terminals:    NewTerminalKeyRepo(db),
		Audit:        NewAuditRepo(db),
	}
}

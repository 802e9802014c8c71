package repository

import (
	"context"

	"nfc-card-admin/internal/models"

	"gorm.io/gorm"
)

type GormTerminalKeyRepo struct {
	db *gorm.DB
}

func NewTerminalKeyRepo(db *gorm.DB) *GormTerminalKeyRepo {
	return &GormTerminalKeyRepo{db: db}
}

// Create stores a new terminal key
func (r *GormTerminalKeyRepo) Create(ctx context.Context, key *models.TerminalKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *GormTerminalKeyRepo) Get(ctx context.Context, id uint) (*models.TerminalKey, error) {
	var key models.TerminalKey
	if err := r.db.WithContext(ctx).First(&key, id).Error; err != nil {
		return nil, translate(err, ErrTerminalKeyNotFound)
	}
	return &key, nil
}

// ListByInstitution retrieves an institution's keys, newest first
func (r *GormTerminalKeyRepo) ListByInstitution(ctx context.Context, institutionID uint) ([]models.TerminalKey, error) {
	var keys []models.TerminalKey
	err := r.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("created_at DESC, id DESC").
		Find(&keys).Error
	return keys, err
}

// Revoke deactivates a key
func (r *GormTerminalKeyRepo) Revoke(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.TerminalKey{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTerminalKeyNotFound
	}
	return nil
}

// Delete permanently removes a key
func (r *GormTerminalKeyRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.TerminalKey{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTerminalKeyNotFound
	}
	return nil
}

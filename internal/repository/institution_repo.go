package repository

import (
	"context"

	"nfc-card-admin/internal/models"

	"gorm.io/gorm"
)

type GormInstitutionRepo struct {
	db *gorm.DB
}

func NewInstitutionRepo(db *gorm.DB) *GormInstitutionRepo {
	return &GormInstitutionRepo{db: db}
}

// List retrieves all active institutions
func (r *GormInstitutionRepo) List(ctx context.Context) ([]models.Institution, error) {
	var institutions []models.Institution
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&institutions).Error
	return institutions, err
}

// Get retrieves an institution by ID with its card usage history
func (r *GormInstitutionRepo) Get(ctx context.Context, id uint) (*models.Institution, error) {
	var institution models.Institution
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		Preload("CardUsageHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&institution).Error
	if err != nil {
		return nil, translate(err, ErrInstitutionNotFound)
	}
	return &institution, nil
}

// FindByLicense retrieves an institution by its unique license number
func (r *GormInstitutionRepo) FindByLicense(ctx context.Context, licenseNumber string) (*models.Institution, error) {
	var institution models.Institution
	err := r.db.WithContext(ctx).
		Where("license_number = ? AND is_active = ?", licenseNumber, true).
		First(&institution).Error
	if err != nil {
		return nil, translate(err, ErrInstitutionNotFound)
	}
	return &institution, nil
}

func (r *GormInstitutionRepo) Create(ctx context.Context, institution *models.Institution) error {
	institution.IsActive = true
	err := r.db.WithContext(ctx).Omit("CardUsageHistory").Create(institution).Error
	return translate(err, ErrInstitutionNotFound)
}

func (r *GormInstitutionRepo) Update(ctx context.Context, institution *models.Institution) error {
	institution.IsActive = true
	result := r.db.WithContext(ctx).Model(&models.Institution{}).
		Where("id = ? AND is_active = ?", institution.ID, true).
		Select("*").Omit("id", "created_at", "CardUsageHistory").
		Updates(institution)
	if result.Error != nil {
		return translate(result.Error, ErrInstitutionNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrInstitutionNotFound
	}
	return nil
}

// Delete soft deletes an institution by setting is_active to false
func (r *GormInstitutionRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Institution{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInstitutionNotFound
	}
	return nil
}

func (r *GormInstitutionRepo) AppendUsage(ctx context.Context, institutionID uint, event models.InstitutionUsageEvent) error {
	event.ID = 0
	event.InstitutionID = institutionID
	return translate(r.db.WithContext(ctx).Create(&event).Error, ErrInstitutionNotFound)
}

package repository

import (
	"context"
	"errors"

	"nfc-card-admin/internal/models"

	"gorm.io/gorm"
)

// translate maps gorm errors onto the package sentinels.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

type GormCitizenRepo struct {
	db *gorm.DB
}

func NewCitizenRepo(db *gorm.DB) *GormCitizenRepo {
	return &GormCitizenRepo{db: db}
}

// List retrieves all citizens in insertion order
func (r *GormCitizenRepo) List(ctx context.Context) ([]models.Citizen, error) {
	var citizens []models.Citizen
	err := r.db.WithContext(ctx).Order("id ASC").Find(&citizens).Error
	return citizens, err
}

// Get retrieves a citizen with card history preloaded
func (r *GormCitizenRepo) Get(ctx context.Context, id uint) (*models.Citizen, error) {
	var citizen models.Citizen
	err := r.db.WithContext(ctx).
		Preload("CardHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&citizen, id).Error
	if err != nil {
		return nil, translate(err, ErrCitizenNotFound)
	}
	return &citizen, nil
}

// FindByNationalID retrieves a citizen by the 14 digit national ID
func (r *GormCitizenRepo) FindByNationalID(ctx context.Context, nationalID string) (*models.Citizen, error) {
	var citizen models.Citizen
	err := r.db.WithContext(ctx).Where("national_id = ?", nationalID).First(&citizen).Error
	if err != nil {
		return nil, translate(err, ErrCitizenNotFound)
	}
	return &citizen, nil
}

func (r *GormCitizenRepo) Create(ctx context.Context, citizen *models.Citizen) error {
	return translate(r.db.WithContext(ctx).Create(citizen).Error, ErrCitizenNotFound)
}

// Update saves the citizen's own columns; card history is left untouched
func (r *GormCitizenRepo) Update(ctx context.Context, citizen *models.Citizen) error {
	result := r.db.WithContext(ctx).Model(&models.Citizen{ID: citizen.ID}).
		Select("*").Omit("id", "created_at", "CardHistory").
		Updates(citizen)
	if result.Error != nil {
		return translate(result.Error, ErrCitizenNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrCitizenNotFound
	}
	return nil
}

func (r *GormCitizenRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("citizen_id = ?", id).Delete(&models.CitizenCardEvent{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Citizen{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCitizenNotFound
		}
		return nil
	})
}

func (r *GormCitizenRepo) AppendHistory(ctx context.Context, citizenID uint, event models.CitizenCardEvent) error {
	event.ID = 0
	event.CitizenID = citizenID
	err := r.db.WithContext(ctx).Create(&event).Error
	return translate(err, ErrCitizenNotFound)
}

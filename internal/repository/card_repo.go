package repository

import (
	"context"

	"nfc-card-admin/internal/models"

	"gorm.io/gorm"
)

type GormCardRepo struct {
	db *gorm.DB
}

func NewCardRepo(db *gorm.DB) *GormCardRepo {
	return &GormCardRepo{db: db}
}

// List retrieves all cards in insertion order
func (r *GormCardRepo) List(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).Order("id ASC").Find(&cards).Error
	return cards, err
}

// Get retrieves a card with its usage history preloaded
func (r *GormCardRepo) Get(ctx context.Context, id uint) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).
		Preload("UsageHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&card, id).Error
	if err != nil {
		return nil, translate(err, ErrCardNotFound)
	}
	return &card, nil
}

// FindByNumber retrieves a card by its printed number
func (r *GormCardRepo) FindByNumber(ctx context.Context, cardNumber string) (*models.Card, error) {
	var card models.Card
	if err := r.db.WithContext(ctx).Where("card_number = ?", cardNumber).First(&card).Error; err != nil {
		return nil, translate(err, ErrCardNotFound)
	}
	return &card, nil
}

// ListByCitizen retrieves a citizen's cards, most recently issued first
func (r *GormCardRepo) ListByCitizen(ctx context.Context, citizenID uint) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).
		Where("citizen_id = ?", citizenID).
		Order("issue_date DESC, id DESC").
		Find(&cards).Error
	return cards, err
}

func (r *GormCardRepo) Create(ctx context.Context, card *models.Card) error {
	return translate(r.db.WithContext(ctx).Omit("UsageHistory").Create(card).Error, ErrCardNotFound)
}

func (r *GormCardRepo) Update(ctx context.Context, card *models.Card) error {
	result := r.db.WithContext(ctx).Model(&models.Card{ID: card.ID}).
		Select("*").Omit("id", "created_at", "UsageHistory").
		Updates(card)
	if result.Error != nil {
		return translate(result.Error, ErrCardNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *GormCardRepo) AppendUsage(ctx context.Context, cardID uint, event models.CardUsageEvent) error {
	event.ID = 0
	event.CardID = cardID
	return translate(r.db.WithContext(ctx).Create(&event).Error, ErrCardNotFound)
}

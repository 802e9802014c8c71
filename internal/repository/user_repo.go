package repository

import (
	"context"

	"nfc-card-admin/internal/models"

	"gorm.io/gorm"
)

type GormUserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *GormUserRepo {
	return &GormUserRepo{db: db}
}

// FindByEmail finds a user by login email
func (r *GormUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &user, nil
}

// Create creates a new user
func (r *GormUserRepo) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, ErrUserNotFound)
}

// CreateRefreshToken creates a new refresh token
func (r *GormUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

// FindRefreshTokenByHash finds a live refresh token by its hash
func (r *GormUserRepo) FindRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ? AND revoked = ?", hash, false).
		Preload("User").
		First(&token).Error
	if err != nil {
		return nil, translate(err, ErrRefreshTokenNotFound)
	}
	return &token, nil
}

// RevokeRefreshTokenByHash marks a refresh token as revoked by its hash
func (r *GormUserRepo) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	return r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hash).
		Update("revoked", true).Error
}

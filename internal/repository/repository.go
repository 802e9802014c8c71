// Package repository holds the entity registries. Every registry has a gorm
// implementation for MySQL and an in-memory one used when no database is
// configured and in tests.
package repository

import (
	"context"
	"errors"

	"nfc-card-admin/internal/models"
)

var (
	ErrCitizenNotFound      = errors.New("citizen not found")
	ErrCardNotFound         = errors.New("card not found")
	ErrInstitutionNotFound  = errors.New("institution not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found or revoked")
	ErrTerminalKeyNotFound  = errors.New("terminal key not found")
	ErrDuplicate            = errors.New("duplicate record")
)

// CitizenRepository lists records in insertion order. History is only loaded
// by Get.
type CitizenRepository interface {
	List(ctx context.Context) ([]models.Citizen, error)
	Get(ctx context.Context, id uint) (*models.Citizen, error)
	FindByNationalID(ctx context.Context, nationalID string) (*models.Citizen, error)
	Create(ctx context.Context, citizen *models.Citizen) error
	Update(ctx context.Context, citizen *models.Citizen) error
	Delete(ctx context.Context, id uint) error
	AppendHistory(ctx context.Context, citizenID uint, event models.CitizenCardEvent) error
}

type CardRepository interface {
	List(ctx context.Context) ([]models.Card, error)
	Get(ctx context.Context, id uint) (*models.Card, error)
	FindByNumber(ctx context.Context, cardNumber string) (*models.Card, error)
	ListByCitizen(ctx context.Context, citizenID uint) ([]models.Card, error)
	Create(ctx context.Context, card *models.Card) error
	Update(ctx context.Context, card *models.Card) error
	AppendUsage(ctx context.Context, cardID uint, event models.CardUsageEvent) error
}

// InstitutionRepository hides deleted institutions from every read.
type InstitutionRepository interface {
	List(ctx context.Context) ([]models.Institution, error)
	Get(ctx context.Context, id uint) (*models.Institution, error)
	FindByLicense(ctx context.Context, licenseNumber string) (*models.Institution, error)
	Create(ctx context.Context, institution *models.Institution) error
	Update(ctx context.Context, institution *models.Institution) error
	Delete(ctx context.Context, id uint) error
	AppendUsage(ctx context.Context, institutionID uint, event models.InstitutionUsageEvent) error
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
}

// TerminalKeyRepository stores the hashed API keys of institution NFC readers.
type TerminalKeyRepository interface {
	Create(ctx context.Context, key *models.TerminalKey) error
	Get(ctx context.Context, id uint) (*models.TerminalKey, error)
	ListByInstitution(ctx context.Context, institutionID uint) ([]models.TerminalKey, error)
	Revoke(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type AuditRepository interface {
	CreateAuditLog(ctx context.Context, userID *uint, action, subject, details string) error
	Recent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// Registries bundles the repositories the services need.
type Registries struct {
	Citizens     CitizenRepository
	Cards        CardRepository
	Institutions InstitutionRepository
	Users        UserRepository
	Terminals    TerminalKeyRepository
	Audit        AuditRepository
}

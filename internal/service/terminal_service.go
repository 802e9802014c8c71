package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

var ErrInvalidTerminalKey = errors.New("invalid or expired terminal key")

// TapInput is one card read reported by an institution's NFC terminal.
type TapInput struct {
	CardNumber string `json:"cardNumber" binding:"required"`
	Service    string `json:"service" binding:"required"`
	Details    string `json:"details"`
}

// TerminalService issues API keys to institution NFC readers and turns
// their card taps into usage records.
type TerminalService struct {
	keys         repository.TerminalKeyRepository
	institutions repository.InstitutionRepository
	cardRepo     repository.CardRepository
	cards        *CardService
	audit        repository.AuditRepository
	now          func() time.Time
}

func NewTerminalService(reg *repository.Registries, cards *CardService) *TerminalService {
	return &TerminalService{
		keys:         reg.Terminals,
		institutions: reg.Institutions,
		cardRepo:     reg.Cards,
		cards:        cards,
		audit:        reg.Audit,
		now:          time.Now,
	}
}

// GenerateKey creates a key for an institution's terminal. The plain key is
// only returned here; a zero validFor never expires.
func (s *TerminalService) GenerateKey(ctx context.Context, institutionID uint, description string, validFor time.Duration) (*models.TerminalKeyResponse, error) {
	inst, err := s.institutions.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}
	plainKey := base64.URLEncoding.EncodeToString(keyBytes)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plainKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash terminal key: %w", err)
	}

	key := &models.TerminalKey{
		InstitutionID: inst.ID,
		KeyHash:       string(hashed),
		Description:   strings.TrimSpace(description),
		IsActive:      true,
	}
	if validFor > 0 {
		expires := s.now().Add(validFor)
		key.ExpiresAt = &expires
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to store terminal key: %w", err)
	}

	audit(ctx, s.audit, "terminal_key_generate", inst.Name,
		fmt.Sprintf("Generated terminal key %d for %s", key.ID, inst.Name))
	return &models.TerminalKeyResponse{TerminalKey: *key, Key: plainKey}, nil
}

// ListKeys returns an institution's keys without their secrets
func (s *TerminalService) ListKeys(ctx context.Context, institutionID uint) ([]models.TerminalKeyResponse, error) {
	if _, err := s.institutions.Get(ctx, institutionID); err != nil {
		return nil, err
	}
	keys, err := s.keys.ListByInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.TerminalKeyResponse, len(keys))
	for i, k := range keys {
		out[i] = models.TerminalKeyResponse{TerminalKey: k}
	}
	return out, nil
}

// RevokeKey deactivates a key; the row is kept for the audit trail.
func (s *TerminalService) RevokeKey(ctx context.Context, id uint) error {
	key, err := s.keys.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.keys.Revoke(ctx, id); err != nil {
		return err
	}
	audit(ctx, s.audit, "terminal_key_revoke", fmt.Sprintf("terminal key %d", id),
		fmt.Sprintf("Revoked terminal key %d of institution %d", id, key.InstitutionID))
	return nil
}

func (s *TerminalService) DeleteKey(ctx context.Context, id uint) error {
	key, err := s.keys.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.keys.Delete(ctx, id); err != nil {
		return err
	}
	audit(ctx, s.audit, "terminal_key_delete", fmt.Sprintf("terminal key %d", id),
		fmt.Sprintf("Deleted terminal key %d of institution %d", id, key.InstitutionID))
	return nil
}

// Authenticate checks plainKey against the institution's active, unexpired
// keys.
func (s *TerminalService) Authenticate(ctx context.Context, institutionID uint, plainKey string) error {
	plainKey = strings.TrimSpace(plainKey)
	if plainKey == "" {
		return ErrInvalidTerminalKey
	}
	keys, err := s.keys.ListByInstitution(ctx, institutionID)
	if err != nil {
		return err
	}
	now := s.now()
	for _, key := range keys {
		if !key.IsActive || (key.ExpiresAt != nil && !now.Before(*key.ExpiresAt)) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(plainKey)) == nil {
			return nil
		}
	}
	return ErrInvalidTerminalKey
}

// RecordTap records a card read at the terminal's institution.
func (s *TerminalService) RecordTap(ctx context.Context, institutionID uint, in TapInput) (*CardDetail, error) {
	card, err := s.cardRepo.FindByNumber(ctx, strings.TrimSpace(in.CardNumber))
	if err != nil {
		return nil, err
	}
	return s.cards.RecordUsage(ctx, card.ID, UsageInput{
		InstitutionID: institutionID,
		Service:       in.Service,
		Details:       in.Details,
	})
}

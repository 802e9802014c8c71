package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
	"nfc-card-admin/pkg/utils"
)

var ErrInvalidRefreshToken = errors.New("invalid or revoked refresh token")

type AuthService struct {
	users  repository.UserRepository
	audit  repository.AuditRepository
	tokens *utils.TokenIssuer
	now    func() time.Time
}

func NewAuthService(reg *repository.Registries, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{
		users:  reg.Users,
		audit:  reg.Audit,
		tokens: tokens,
		now:    time.Now,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login authenticates an operator and returns tokens
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken := s.tokens.GenerateRefreshToken()
	if err := s.users.CreateRefreshToken(ctx, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.tokens.HashRefreshToken(refreshToken),
		ExpiresAt: s.now().Add(s.tokens.RefreshTokenExpiry()),
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	_ = s.audit.CreateAuditLog(ctx, &user.ID, "user_login", user.Email, fmt.Sprintf("User %s logged in", user.Email))

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         UserResponse{ID: user.ID, Email: user.Email, Role: user.Role},
	}, nil
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	token, err := s.users.FindRefreshTokenByHash(ctx, s.tokens.HashRefreshToken(refreshToken))
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	if s.now().After(token.ExpiresAt) {
		return "", ErrRefreshTokenExpired
	}

	accessToken, err := s.tokens.GenerateAccessToken(token.User.ID, token.User.Email, token.User.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.users.RevokeRefreshTokenByHash(ctx, s.tokens.HashRefreshToken(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap administrator when no account with that
// email exists yet. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	_ = s.audit.CreateAuditLog(ctx, nil, "user_bootstrap", email, fmt.Sprintf("Administrator %s created", email))
	return true, nil
}

// CreateOperator registers an additional operator account
func (s *AuthService) CreateOperator(ctx context.Context, email, password, role string) (*UserResponse, error) {
	if role != models.RoleAdmin && role != models.RoleOperator {
		role = models.RoleOperator
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{Email: strings.TrimSpace(email), PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("email", "auth.emailTaken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	audit(ctx, s.audit, "user_create", user.Email, fmt.Sprintf("Created %s account %s", role, user.Email))
	return &UserResponse{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

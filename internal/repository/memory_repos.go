package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"nfc-card-admin/internal/models"
)

// MemoryCitizenRepo keeps citizens in process memory.
type MemoryCitizenRepo struct {
	rows *table[models.Citizen]
}

func NewMemoryCitizenRepo() *MemoryCitizenRepo {
	return &MemoryCitizenRepo{rows: newTable(
		func(c models.Citizen) models.Citizen {
			c.CardHistory = slices.Clone(c.CardHistory)
			return c
		},
		func(c *models.Citizen, id uint, now time.Time) {
			c.ID = id
			c.CreatedAt = now
			if c.UpdatedAt.IsZero() {
				c.UpdatedAt = now
			}
		},
	)}
}

func (r *MemoryCitizenRepo) List(_ context.Context) ([]models.Citizen, error) {
	out := r.rows.list(nil)
	for i := range out {
		out[i].CardHistory = nil
	}
	return out, nil
}

func (r *MemoryCitizenRepo) Get(_ context.Context, id uint) (*models.Citizen, error) {
	c, ok := r.rows.get(id)
	if !ok {
		return nil, ErrCitizenNotFound
	}
	return &c, nil
}

func (r *MemoryCitizenRepo) FindByNationalID(_ context.Context, nationalID string) (*models.Citizen, error) {
	c, ok := r.rows.find(func(c models.Citizen) bool { return c.NationalID == nationalID })
	if !ok {
		return nil, ErrCitizenNotFound
	}
	return &c, nil
}

func (r *MemoryCitizenRepo) Create(_ context.Context, citizen *models.Citizen) error {
	return r.rows.insert(citizen, func(existing models.Citizen) bool {
		return existing.NationalID == citizen.NationalID
	})
}

func (r *MemoryCitizenRepo) Update(_ context.Context, citizen *models.Citizen) error {
	found, err := r.rows.update(citizen.ID,
		func(existing models.Citizen) bool { return existing.NationalID == citizen.NationalID },
		func(row *models.Citizen) {
			history, created := row.CardHistory, row.CreatedAt
			*row = *citizen
			row.CardHistory, row.CreatedAt = history, created
			row.UpdatedAt = time.Now()
		})
	if !found {
		return ErrCitizenNotFound
	}
	return err
}

func (r *MemoryCitizenRepo) Delete(_ context.Context, id uint) error {
	if !r.rows.remove(id) {
		return ErrCitizenNotFound
	}
	return nil
}

func (r *MemoryCitizenRepo) AppendHistory(_ context.Context, citizenID uint, event models.CitizenCardEvent) error {
	found, _ := r.rows.mutate(citizenID, func(c *models.Citizen) error {
		event.CitizenID = citizenID
		event.ID = uint(len(c.CardHistory) + 1)
		c.CardHistory = append(c.CardHistory, event)
		return nil
	})
	if !found {
		return ErrCitizenNotFound
	}
	return nil
}

// MemoryCardRepo keeps cards in process memory.
type MemoryCardRepo struct {
	rows *table[models.Card]
}

func NewMemoryCardRepo() *MemoryCardRepo {
	return &MemoryCardRepo{rows: newTable(
		func(c models.Card) models.Card {
			c.UsageHistory = slices.Clone(c.UsageHistory)
			if c.LastUsed != nil {
				t := *c.LastUsed
				c.LastUsed = &t
			}
			return c
		},
		func(c *models.Card, id uint, now time.Time) {
			c.ID = id
			c.CreatedAt = now
			c.UpdatedAt = now
		},
	)}
}

func (r *MemoryCardRepo) List(_ context.Context) ([]models.Card, error) {
	out := r.rows.list(nil)
	for i := range out {
		out[i].UsageHistory = nil
	}
	return out, nil
}

func (r *MemoryCardRepo) Get(_ context.Context, id uint) (*models.Card, error) {
	c, ok := r.rows.get(id)
	if !ok {
		return nil, ErrCardNotFound
	}
	return &c, nil
}

func (r *MemoryCardRepo) FindByNumber(_ context.Context, cardNumber string) (*models.Card, error) {
	c, ok := r.rows.find(func(c models.Card) bool { return strings.EqualFold(c.CardNumber, cardNumber) })
	if !ok {
		return nil, ErrCardNotFound
	}
	return &c, nil
}

// ListByCitizen returns the citizen's cards, most recently issued first.
func (r *MemoryCardRepo) ListByCitizen(_ context.Context, citizenID uint) ([]models.Card, error) {
	out := r.rows.list(func(c models.Card) bool { return c.CitizenID == citizenID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return out, nil
}

func (r *MemoryCardRepo) Create(_ context.Context, card *models.Card) error {
	return r.rows.insert(card, func(existing models.Card) bool {
		return existing.CardNumber == card.CardNumber
	})
}

func (r *MemoryCardRepo) Update(_ context.Context, card *models.Card) error {
	found, err := r.rows.update(card.ID,
		func(existing models.Card) bool { return existing.CardNumber == card.CardNumber },
		func(row *models.Card) {
			history, created := row.UsageHistory, row.CreatedAt
			*row = *card
			row.UsageHistory, row.CreatedAt = history, created
			row.UpdatedAt = time.Now()
		})
	if !found {
		return ErrCardNotFound
	}
	return err
}

func (r *MemoryCardRepo) AppendUsage(_ context.Context, cardID uint, event models.CardUsageEvent) error {
	found, _ := r.rows.mutate(cardID, func(c *models.Card) error {
		event.CardID = cardID
		event.ID = uint(len(c.UsageHistory) + 1)
		c.UsageHistory = append(c.UsageHistory, event)
		return nil
	})
	if !found {
		return ErrCardNotFound
	}
	return nil
}

// MemoryInstitutionRepo keeps institutions in process memory. Deleted rows
// stay in the table with IsActive false.
type MemoryInstitutionRepo struct {
	rows *table[models.Institution]
}

func NewMemoryInstitutionRepo() *MemoryInstitutionRepo {
	return &MemoryInstitutionRepo{rows: newTable(
		func(i models.Institution) models.Institution {
			i.Services = slices.Clone(i.Services)
			i.CardUsageHistory = slices.Clone(i.CardUsageHistory)
			return i
		},
		func(i *models.Institution, id uint, now time.Time) {
			i.ID = id
			i.IsActive = true
			i.CreatedAt = now
			i.UpdatedAt = now
		},
	)}
}

func active(i models.Institution) bool { return i.IsActive }

func (r *MemoryInstitutionRepo) List(_ context.Context) ([]models.Institution, error) {
	out := r.rows.list(active)
	for i := range out {
		out[i].CardUsageHistory = nil
	}
	return out, nil
}

func (r *MemoryInstitutionRepo) Get(_ context.Context, id uint) (*models.Institution, error) {
	i, ok := r.rows.get(id)
	if !ok || !i.IsActive {
		return nil, ErrInstitutionNotFound
	}
	return &i, nil
}

func (r *MemoryInstitutionRepo) FindByLicense(_ context.Context, licenseNumber string) (*models.Institution, error) {
	i, ok := r.rows.find(func(i models.Institution) bool {
		return i.IsActive && strings.EqualFold(i.LicenseNumber, licenseNumber)
	})
	if !ok {
		return nil, ErrInstitutionNotFound
	}
	return &i, nil
}

func (r *MemoryInstitutionRepo) Create(_ context.Context, institution *models.Institution) error {
	return r.rows.insert(institution, func(existing models.Institution) bool {
		return existing.LicenseNumber == institution.LicenseNumber
	})
}

func (r *MemoryInstitutionRepo) Update(_ context.Context, institution *models.Institution) error {
	var gone bool
	found, err := r.rows.update(institution.ID,
		func(existing models.Institution) bool { return existing.LicenseNumber == institution.LicenseNumber },
		func(row *models.Institution) {
			if !row.IsActive {
				gone = true
				return
			}
			history, created := row.CardUsageHistory, row.CreatedAt
			*row = *institution
			row.CardUsageHistory, row.CreatedAt = history, created
			row.IsActive = true
			row.UpdatedAt = time.Now()
		})
	if !found || gone {
		return ErrInstitutionNotFound
	}
	return err
}

// Delete soft deletes the institution.
func (r *MemoryInstitutionRepo) Delete(_ context.Context, id uint) error {
	found, err := r.rows.mutate(id, func(i *models.Institution) error {
		if !i.IsActive {
			return ErrInstitutionNotFound
		}
		i.IsActive = false
		return nil
	})
	if !found {
		return ErrInstitutionNotFound
	}
	return err
}

func (r *MemoryInstitutionRepo) AppendUsage(_ context.Context, institutionID uint, event models.InstitutionUsageEvent) error {
	found, err := r.rows.mutate(institutionID, func(i *models.Institution) error {
		if !i.IsActive {
			return ErrInstitutionNotFound
		}
		event.InstitutionID = institutionID
		event.ID = uint(len(i.CardUsageHistory) + 1)
		i.CardUsageHistory = append(i.CardUsageHistory, event)
		return nil
	})
	if !found {
		return ErrInstitutionNotFound
	}
	return err
}

// MemoryUserRepo holds operators and their refresh tokens.
type MemoryUserRepo struct {
	users  *table[models.User]
	tokens *table[models.RefreshToken]
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: newTable(
			func(u models.User) models.User { return u },
			func(u *models.User, id uint, now time.Time) { u.ID, u.CreatedAt = id, now },
		),
		tokens: newTable(
			func(t models.RefreshToken) models.RefreshToken { return t },
			func(t *models.RefreshToken, id uint, now time.Time) { t.ID, t.CreatedAt = id, now },
		),
	}
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.users.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepo) Create(_ context.Context, user *models.User) error {
	return r.users.insert(user, func(existing models.User) bool {
		return strings.EqualFold(existing.Email, user.Email)
	})
}

func (r *MemoryUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	return r.tokens.insert(token, nil)
}

func (r *MemoryUserRepo) FindRefreshTokenByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	t, ok := r.tokens.find(func(t models.RefreshToken) bool { return t.TokenHash == hash && !t.Revoked })
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	u, ok := r.users.get(t.UserID)
	if !ok {
		return nil, ErrUserNotFound
	}
	t.User = u
	return &t, nil
}

func (r *MemoryUserRepo) RevokeRefreshTokenByHash(_ context.Context, hash string) error {
	t, ok := r.tokens.find(func(t models.RefreshToken) bool { return t.TokenHash == hash })
	if !ok {
		return nil
	}
	_, err := r.tokens.mutate(t.ID, func(t *models.RefreshToken) error {
		t.Revoked = true
		return nil
	})
	return err
}

// MemoryTerminalKeyRepo holds terminal keys in process memory.
type MemoryTerminalKeyRepo struct {
	rows *table[models.TerminalKey]
}

func NewMemoryTerminalKeyRepo() *MemoryTerminalKeyRepo {
	return &MemoryTerminalKeyRepo{rows: newTable(
		func(k models.TerminalKey) models.TerminalKey {
			if k.ExpiresAt != nil {
				t := *k.ExpiresAt
				k.ExpiresAt = &t
			}
			return k
		},
		func(k *models.TerminalKey, id uint, now time.Time) { k.ID, k.CreatedAt = id, now },
	)}
}

func (r *MemoryTerminalKeyRepo) Create(_ context.Context, key *models.TerminalKey) error {
	return r.rows.insert(key, nil)
}

func (r *MemoryTerminalKeyRepo) Get(_ context.Context, id uint) (*models.TerminalKey, error) {
	k, ok := r.rows.get(id)
	if !ok {
		return nil, ErrTerminalKeyNotFound
	}
	return &k, nil
}

// ListByInstitution returns the institution's keys, newest first.
func (r *MemoryTerminalKeyRepo) ListByInstitution(_ context.Context, institutionID uint) ([]models.TerminalKey, error) {
	out := r.rows.list(func(k models.TerminalKey) bool { return k.InstitutionID == institutionID })
	slices.Reverse(out)
	return out, nil
}

func (r *MemoryTerminalKeyRepo) Revoke(_ context.Context, id uint) error {
	found, _ := r.rows.mutate(id, func(k *models.TerminalKey) error {
		k.IsActive = false
		return nil
	})
	if !found {
		return ErrTerminalKeyNotFound
	}
	return nil
}

func (r *MemoryTerminalKeyRepo) Delete(_ context.Context, id uint) error {
	if !r.rows.remove(id) {
		return ErrTerminalKeyNotFound
	}
	return nil
}

// MemoryAuditRepo is an append-only audit log.
type MemoryAuditRepo struct {
	rows *table[models.AuditLog]
}

func NewMemoryAuditRepo() *MemoryAuditRepo {
	return &MemoryAuditRepo{rows: newTable(
		func(l models.AuditLog) models.AuditLog { return l },
		func(l *models.AuditLog, id uint, now time.Time) {
			l.ID = id
			if l.CreatedAt.IsZero() {
				l.CreatedAt = now
			}
		},
	)}
}

func (r *MemoryAuditRepo) CreateAuditLog(_ context.Context, userID *uint, action, subject, details string) error {
	return r.rows.insert(&models.AuditLog{UserID: userID, Action: action, Subject: subject, Details: details}, nil)
}

// Recent returns up to limit entries, newest first.
func (r *MemoryAuditRepo) Recent(_ context.Context, limit int) ([]models.AuditLog, error) {
	all := r.rows.list(nil)
	slices.Reverse(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// NewMemoryRegistries wires a complete in-memory registry set.
func NewMemoryRegistries() *Registries {
	return &Registries{
		Citizens:     NewMemoryCitizenRepo(),
		Cards:        NewMemoryCardRepo(),
		Institutions: NewMemoryInstitutionRepo(),
		Users:        NewMemoryUserRepo(),
		Terminals:    NewMemoryTerminalKeyRepo(),
		Audit:        NewMemoryAuditRepo(),
	}
}

package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/repository"
	"nfc-card-admin/internal/session"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrCardNotActive        = errors.New("card is not active")
	ErrInstitutionNotActive = errors.New("institution is not active")
)

// Entity kinds, used for audit subjects and metric labels.
const (
	KindCitizen     = "citizen"
	KindCard        = "card"
	KindInstitution = "institution"
)

// renewalYears is the validity granted by a card renewal.
const renewalYears = 5

// licenseRenewalYears is the extension granted by a license renewal.
const licenseRenewalYears = 2

// today truncates t to a calendar day in UTC.
func today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// expiryAfter is the last valid day of a card issued on day for years.
func expiryAfter(day time.Time, years int) time.Time {
	return day.AddDate(years, 0, -1)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(form.DateLayout, strings.TrimSpace(s))
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(form.DateLayout)
}

func parseUint(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	return uint(n), err
}

// invalid wraps a single field violation.
func invalid(field, key string, params ...string) error {
	return &form.ValidationError{Fields: map[string]form.Violation{
		field: {Key: key, Params: params},
	}}
}

// validate runs the schema over data and reports every failing field.
func validate(schema *form.Schema, data form.Data, now time.Time) error {
	return form.NewValidationError(schema.Validate(data.Values, now))
}

func audit(ctx context.Context, repo repository.AuditRepository, action, subject, details string) {
	_ = repo.CreateAuditLog(ctx, session.ActorID(ctx), action, subject, details)
}

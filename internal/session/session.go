// Package session carries the authenticated operator through request
// contexts so services never read ambient globals.
package session

import (
	"context"

	"nfc-card-admin/internal/models"
)

// Session is the identity and preferences of the operator behind a request.
type Session struct {
	UserID uint
	Email  string
	Role   string
	Locale string
}

func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// ActorID returns the user id for audit entries, or nil for system actions.
func ActorID(ctx context.Context) *uint {
	s, ok := FromContext(ctx)
	if !ok || s.UserID == 0 {
		return nil
	}
	id := s.UserID
	return &id
}

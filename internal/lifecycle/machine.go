// Package lifecycle holds the status machines of cards and institutions: which
// action is offered in which status, and the status each action leads to.
package lifecycle

import (
	"errors"
	"fmt"

	"nfc-card-admin/internal/models"
)

type Action string

const (
	Suspend      Action = "suspend"
	Renew        Action = "renew"
	Print        Action = "print"
	Delete       Action = "delete"
	RenewLicense Action = "renew-license"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownAction     = errors.New("unknown action")
)

// Transition is one row of a machine's table.
type Transition[S ~string] struct {
	Action Action
	// Guard reports whether the action is enabled in status s. Nil means always.
	Guard func(s S) bool
	// Next returns the status after the action. Nil keeps the status.
	Next func(s S) S
	// Removes marks actions that take the record out of the registry.
	Removes bool
	// Exclusive actions are only offered while enabled.
	Exclusive bool
}

func (t Transition[S]) allowed(s S) bool {
	return t.Guard == nil || t.Guard(s)
}

// Machine is an ordered transition table.
type Machine[S ~string] struct {
	transitions []Transition[S]
}

func NewMachine[S ~string](transitions ...Transition[S]) *Machine[S] {
	return &Machine[S]{transitions: transitions}
}

func (m *Machine[S]) lookup(a Action) (Transition[S], error) {
	for _, t := range m.transitions {
		if t.Action == a {
			return t, nil
		}
	}
	return Transition[S]{}, fmt.Errorf("%w: %s", ErrUnknownAction, a)
}

// Allowed reports whether a may be applied in status s.
func (m *Machine[S]) Allowed(a Action, s S) bool {
	t, err := m.lookup(a)
	return err == nil && t.allowed(s)
}

// Result of applying an action.
type Result[S ~string] struct {
	Status  S
	Removed bool
}

// Apply runs the guard and returns the status the record moves to.
func (m *Machine[S]) Apply(a Action, s S) (Result[S], error) {
	t, err := m.lookup(a)
	if err != nil {
		return Result[S]{}, err
	}
	if !t.allowed(s) {
		return Result[S]{}, fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, a, s)
	}
	next := s
	if t.Next != nil {
		next = t.Next(s)
	}
	return Result[S]{Status: next, Removed: t.Removes}, nil
}

// Availability is an action as shown on a detail view.
type Availability struct {
	Action  Action `json:"action"`
	Enabled bool   `json:"enabled"`
}

// Available lists the actions offered in status s, in table order.
func (m *Machine[S]) Available(s S) []Availability {
	out := make([]Availability, 0, len(m.transitions))
	for _, t := range m.transitions {
		enabled := t.allowed(s)
		if t.Exclusive && !enabled {
			continue
		}
		out = append(out, Availability{Action: t.Action, Enabled: enabled})
	}
	return out
}

func is[S comparable](want S) func(S) bool {
	return func(s S) bool { return s == want }
}

func to[S any](next S) func(S) S {
	return func(S) S { return next }
}

// Cards: print is always offered, renew only for expired cards and suspend only
// for active ones.
var Cards = NewMachine(
	Transition[models.CardStatus]{Action: Print},
	Transition[models.CardStatus]{Action: Renew, Guard: is(models.CardStatusExpired), Next: to(models.CardStatusActive)},
	Transition[models.CardStatus]{Action: Suspend, Guard: is(models.CardStatusActive), Next: to(models.CardStatusSuspended)},
)

// Institutions: an active institution can be suspended, any other can be
// deleted; only one of the two is ever offered.
var Institutions = NewMachine(
	Transition[models.InstitutionStatus]{
		Action: RenewLicense,
		Next: func(s models.InstitutionStatus) models.InstitutionStatus {
			if s == models.InstitutionExpired {
				return models.InstitutionActive
			}
			return s
		},
	},
	Transition[models.InstitutionStatus]{
		Action:    Suspend,
		Guard:     is(models.InstitutionActive),
		Next:      to(models.InstitutionSuspended),
		Exclusive: true,
	},
	Transition[models.InstitutionStatus]{
		Action:    Delete,
		Guard:     func(s models.InstitutionStatus) bool { return s != models.InstitutionActive },
		Removes:   true,
		Exclusive: true,
	},
)

// DestructiveAction is the single destructive action offered for an institution.
func DestructiveAction(s models.InstitutionStatus) Action {
	if s == models.InstitutionActive {
		return Suspend
	}
	return Delete
}

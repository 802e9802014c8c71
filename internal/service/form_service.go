package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/metrics"
	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/picker"
	"nfc-card-admin/internal/session"
)

var (
	ErrFormNotFound = errors.New("form session not found")
	ErrUnknownForm  = errors.New("unknown form")
	ErrNoPicker     = errors.New("form has no citizen picker")
)

// Navigation is the last navigation request a form made.
type Navigation struct {
	Path string `json:"path,omitempty"`
	Back bool   `json:"back,omitempty"`
}

// recorder keeps navigation requests until the client polls the session.
type recorder struct {
	mu   sync.Mutex
	last *Navigation
}

func (r *recorder) Go(path string) {
	r.mu.Lock()
	r.last = &Navigation{Path: path}
	r.mu.Unlock()
}

func (r *recorder) Back() {
	r.mu.Lock()
	r.last = &Navigation{Back: true}
	r.mu.Unlock()
}

func (r *recorder) get() *Navigation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	n := *r.last
	return &n
}

type formSession struct {
	id         string
	kind       string
	recordID   uint
	owner      uint
	controller *form.Controller
	citizens   *picker.Picker[models.Citizen]
	nav        *recorder
	lastSeen   time.Time
}

// FormState is a form session as returned to the client.
type FormState struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	RecordID uint   `json:"recordId,omitempty"`
	form.State
	Picker     *picker.Result[models.Citizen] `json:"picker,omitempty"`
	NavigateTo *Navigation                    `json:"navigateTo,omitempty"`
}

// FormService owns the open form sessions. Each session wraps one form
// controller; card sessions also carry a citizen picker.
type FormService struct {
	mu       sync.Mutex
	sessions map[string]*formSession

	citizens      *CitizenService
	cards         *CardService
	institutions  *InstitutionService
	metrics       *metrics.Metrics
	logger        *zap.Logger
	ttl           time.Duration
	redirectDelay time.Duration
	now           func() time.Time
}

func NewFormService(citizens *CitizenService, cards *CardService, institutions *InstitutionService,
	m *metrics.Metrics, logger *zap.Logger, ttl, redirectDelay time.Duration) *FormService {
	return &FormService{
		sessions:      map[string]*formSession{},
		citizens:      citizens,
		cards:         cards,
		institutions:  institutions,
		metrics:       m,
		logger:        logger,
		ttl:           ttl,
		redirectDelay: redirectDelay,
		now:           time.Now,
	}
}

// Open starts a form session. A non-zero id opens a citizen or institution
// in edit mode; for the card form it pre-selects that citizen.
func (s *FormService) Open(ctx context.Context, kind string, id uint) (*FormState, error) {
	schema, ok := form.SchemaFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, kind)
	}

	var initial form.Data
	var preselect *models.Citizen
	switch kind {
	case form.CitizenForm:
		if id != 0 {
			c, err := s.citizens.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			initial = CitizenFormData(c)
		}
	case form.InstitutionForm:
		if id != 0 {
			i, err := s.institutions.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			initial = InstitutionFormData(&i.Institution)
		}
	case form.CardIssueForm:
		if id != 0 {
			c, err := s.citizens.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			preselect = c
		}
	}

	fs := &formSession{
		id:       uuid.New().String(),
		kind:     kind,
		recordID: id,
		nav:      &recorder{},
		lastSeen: s.now(),
	}
	if kind == form.CardIssueForm {
		fs.recordID = 0
	}

	actor, _ := session.FromContext(ctx)
	fs.owner = actor.UserID
	submitter := s.submitter(kind, fs.recordID, actor)
	fs.controller = form.New(schema, submitter, initial,
		form.WithNavigator(fs.nav),
		form.WithRedirectDelay(s.redirectDelay),
		form.WithClock(s.now),
	)

	if kind == form.CardIssueForm {
		ctrl := fs.controller
		fs.citizens = picker.New(s.citizens.Search,
			func(c models.Citizen) uint { return c.ID },
			func(c models.Citizen) error {
				for name, value := range IssueFormData(c) {
					if err := ctrl.SetField(name, value); err != nil {
						return err
					}
				}
				return nil
			},
		)
		if preselect != nil {
			_, err := fs.citizens.Search(ctx, preselect.NationalID)
			if err == nil {
				_, err = fs.citizens.Select(preselect.ID)
			}
			if err != nil {
				fs.controller.Close()
				return nil, err
			}
		}
	}

	s.mu.Lock()
	s.sessions[fs.id] = fs
	s.mu.Unlock()
	s.metrics.FormOpened()

	s.logger.Debug("form session opened", zap.String("session", fs.id), zap.String("form", kind), zap.Uint("record", id))
	return s.state(fs), nil
}

// submitter routes a finished form to the service that persists it. The
// opener's session is carried over so the audit entry names the operator.
func (s *FormService) submitter(kind string, recordID uint, actor session.Session) form.Submitter {
	var persist form.SubmitterFunc
	switch kind {
	case form.CitizenForm:
		persist = func(ctx context.Context, data form.Data) (form.Outcome, error) {
			if recordID != 0 {
				c, err := s.citizens.Update(ctx, recordID, data)
				if err != nil {
					return form.Outcome{}, err
				}
				return form.Outcome{ID: c.ID, Redirect: fmt.Sprintf("/citizens/%d", c.ID)}, nil
			}
			c, err := s.citizens.Create(ctx, data)
			if err != nil {
				return form.Outcome{}, err
			}
			return form.Outcome{ID: c.ID}, nil
		}
	case form.InstitutionForm:
		persist = func(ctx context.Context, data form.Data) (form.Outcome, error) {
			if recordID != 0 {
				i, err := s.institutions.Update(ctx, recordID, data)
				if err != nil {
					return form.Outcome{}, err
				}
				return form.Outcome{ID: i.ID, Redirect: fmt.Sprintf("/institutions/%d", i.ID)}, nil
			}
			i, err := s.institutions.Create(ctx, data)
			if err != nil {
				return form.Outcome{}, err
			}
			return form.Outcome{ID: i.ID}, nil
		}
	case form.CardIssueForm:
		persist = func(ctx context.Context, data form.Data) (form.Outcome, error) {
			c, err := s.cards.Issue(ctx, data)
			if err != nil {
				return form.Outcome{}, err
			}
			return form.Outcome{ID: c.ID}, nil
		}
	}

	return form.SubmitterFunc(func(ctx context.Context, data form.Data) (form.Outcome, error) {
		if actor.UserID != 0 {
			ctx = session.WithSession(ctx, actor)
		}
		outcome, err := persist(ctx, data)
		s.metrics.FormSubmitted(kind, submitOutcome(err))
		return outcome, err
	})
}

func submitOutcome(err error) string {
	var verr *form.ValidationError
	switch {
	case err == nil:
		return "succeeded"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "failed"
	}
}

func (s *FormService) lookup(id string) (*formSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs, ok := s.sessions[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	fs.lastSeen = s.now()
	return fs, nil
}

func (s *FormService) state(fs *formSession) *FormState {
	st := &FormState{
		ID:         fs.id,
		Kind:       fs.kind,
		RecordID:   fs.recordID,
		State:      fs.controller.State(),
		NavigateTo: fs.nav.get(),
	}
	if fs.citizens != nil {
		r := fs.citizens.Result()
		st.Picker = &r
	}
	return st
}

// Owner returns the id of the operator who opened the session.
func (s *FormService) Owner(id string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs, ok := s.sessions[id]
	if !ok {
		return 0, ErrFormNotFound
	}
	return fs.owner, nil
}

func (s *FormService) State(id string) (*FormState, error) {
	fs, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.state(fs), nil
}

// edit applies fn to the session's controller and returns the new state.
func (s *FormService) edit(id string, fn func(*form.Controller) error) (*FormState, error) {
	fs, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := fn(fs.controller); err != nil {
		return nil, err
	}
	return s.state(fs), nil
}

func (s *FormService) SetField(id, name, value string) (*FormState, error) {
	return s.edit(id, func(c *form.Controller) error { return c.SetField(name, value) })
}

func (s *FormService) BlurField(id, name string) (*FormState, error) {
	return s.edit(id, func(c *form.Controller) error { return c.BlurField(name) })
}

func (s *FormService) AddItem(id, name, value string) (*FormState, error) {
	return s.edit(id, func(c *form.Controller) error {
		_, err := c.AddItem(name, value)
		return err
	})
}

func (s *FormService) RemoveItem(id, name string, index int) (*FormState, error) {
	return s.edit(id, func(c *form.Controller) error { return c.RemoveItem(name, index) })
}

func (s *FormService) Advance(id string) (*FormState, error) {
	return s.edit(id, func(c *form.Controller) error {
		c.Advance()
		return nil
	})
}

func (s *FormService) Retreat(id string) (*FormState, error) {
	return s.edit(id, func(c *form.Controller) error {
		c.Retreat()
		return nil
	})
}

// Submit starts the session's submission and waits for it to settle or for
// ctx to end. A request that gives up waiting leaves the submission running.
// The returned state is valid even when err is a submission failure.
func (s *FormService) Submit(ctx context.Context, id string) (*FormState, error) {
	fs, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sub, err := fs.controller.Submit()
	if err != nil {
		return s.state(fs), err
	}
	if _, err = sub.Wait(ctx); err != nil && ctx.Err() != nil {
		err = nil
	}
	return s.state(fs), err
}

// Cancel aborts the session's pending submission.
func (s *FormService) Cancel(id string) (*FormState, error) {
	return s.edit(id, func(c *form.Controller) error {
		c.Cancel()
		return nil
	})
}

// SearchCitizens runs the card form's citizen search.
func (s *FormService) SearchCitizens(ctx context.Context, id, term string) (*FormState, error) {
	fs, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if fs.citizens == nil {
		return nil, ErrNoPicker
	}
	if _, err := fs.citizens.Search(ctx, term); err != nil {
		return nil, err
	}
	return s.state(fs), nil
}

// SelectCitizen commits one search result into the card form.
func (s *FormService) SelectCitizen(id string, citizenID uint) (*FormState, error) {
	fs, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if fs.citizens == nil {
		return nil, ErrNoPicker
	}
	if _, err := fs.citizens.Select(citizenID); err != nil {
		return nil, err
	}
	return s.state(fs), nil
}

// Close tears a session down and asks the client to navigate back. The
// final state is returned.
func (s *FormService) Close(id string) (*FormState, error) {
	s.mu.Lock()
	fs, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return nil, ErrFormNotFound
	}

	fs.controller.Close()
	fs.nav.Back()
	s.metrics.FormClosed()
	return s.state(fs), nil
}

// Sweep closes sessions idle for longer than the TTL and reports how many
// were closed.
func (s *FormService) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var stale []*formSession
	for id, fs := range s.sessions {
		if fs.lastSeen.Before(cutoff) {
			stale = append(stale, fs)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, fs := range stale {
		fs.controller.Close()
		s.metrics.FormClosed()
		s.logger.Debug("form session expired", zap.String("session", fs.id), zap.String("form", fs.kind))
	}
	return len(stale)
}

// CloseAll tears down every session, used on shutdown.
func (s *FormService) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = map[string]*formSession{}
	s.mu.Unlock()
	for _, fs := range all {
		fs.controller.Close()
		s.metrics.FormClosed()
	}
}

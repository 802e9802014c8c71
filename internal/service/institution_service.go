package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/lifecycle"
	"nfc-card-admin/internal/listing"
	"nfc-card-admin/internal/metrics"
	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

// InstitutionListSpec searches name, license number and contact person.
var InstitutionListSpec = listing.Spec[models.Institution]{
	SearchFields: []func(models.Institution) string{
		func(i models.Institution) string { return i.Name },
		func(i models.Institution) string { return i.LicenseNumber },
		func(i models.Institution) string { return i.ContactPerson },
	},
	Filters: map[string]func(models.Institution) string{
		"status": func(i models.Institution) string { return string(i.Status) },
		"type":   func(i models.Institution) string { return string(i.Type) },
	},
}

// InstitutionDetail is an institution with the actions its status allows.
type InstitutionDetail struct {
	models.Institution
	Actions []lifecycle.Availability `json:"actions"`
}

// TransitionResult reports the outcome of an institution action. Removed is
// set when the institution left the registry.
type TransitionResult struct {
	Institution *InstitutionDetail `json:"institution,omitempty"`
	Removed     bool               `json:"removed"`
}

type InstitutionService struct {
	institutions repository.InstitutionRepository
	audit        repository.AuditRepository
	metrics      *metrics.Metrics
	pageSize     int
	now          func() time.Time
}

func NewInstitutionService(reg *repository.Registries, m *metrics.Metrics, pageSize int) *InstitutionService {
	return &InstitutionService{
		institutions: reg.Institutions,
		audit:        reg.Audit,
		metrics:      m,
		pageSize:     pageSize,
		now:          time.Now,
	}
}

// List returns one page of institutions matching q
func (s *InstitutionService) List(ctx context.Context, q listing.Query) (listing.Page[models.Institution], error) {
	all, err := s.institutions.List(ctx)
	if err != nil {
		return listing.Page[models.Institution]{}, err
	}
	return listing.Apply(all, InstitutionListSpec, q, s.pageSize)
}

func (s *InstitutionService) Get(ctx context.Context, id uint) (*InstitutionDetail, error) {
	inst, err := s.institutions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InstitutionDetail{Institution: *inst, Actions: lifecycle.Institutions.Available(inst.Status)}, nil
}

// Create registers an active institution from submitted form data
func (s *InstitutionService) Create(ctx context.Context, data form.Data) (*models.Institution, error) {
	now := s.now()
	if err := validate(form.InstitutionSchema(), data, now); err != nil {
		return nil, err
	}
	inst := &models.Institution{Status: models.InstitutionActive, RegistrationDate: today(now)}
	if err := applyInstitutionValues(inst, data); err != nil {
		return nil, err
	}

	if err := s.institutions.Create(ctx, inst); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("licenseNumber", "institutions.licenseTaken")
		}
		return nil, fmt.Errorf("failed to create institution: %w", err)
	}

	audit(ctx, s.audit, "institution_create", inst.Name,
		fmt.Sprintf("Created institution %s (license: %s)", inst.Name, inst.LicenseNumber))
	return inst, nil
}

// Update replaces an institution's details; status and usage history are kept
func (s *InstitutionService) Update(ctx context.Context, id uint, data form.Data) (*models.Institution, error) {
	existing, err := s.institutions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validate(form.InstitutionSchema(), data, s.now()); err != nil {
		return nil, err
	}
	if err := applyInstitutionValues(existing, data); err != nil {
		return nil, err
	}

	if err := s.institutions.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("licenseNumber", "institutions.licenseTaken")
		}
		return nil, fmt.Errorf("failed to update institution: %w", err)
	}

	audit(ctx, s.audit, "institution_update", existing.Name,
		fmt.Sprintf("Updated institution %s (ID: %d)", existing.Name, id))
	return s.institutions.Get(ctx, id)
}

// Transition applies suspend, delete or renew-license
func (s *InstitutionService) Transition(ctx context.Context, id uint, action lifecycle.Action) (*TransitionResult, error) {
	inst, err := s.institutions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := lifecycle.Institutions.Apply(action, inst.Status)
	if err != nil {
		return nil, err
	}

	if res.Removed {
		if err := s.institutions.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete institution: %w", err)
		}
		s.metrics.Transitioned(KindInstitution, string(action))
		audit(ctx, s.audit, "institution_delete", inst.Name,
			fmt.Sprintf("Deleted institution %s (license: %s, ID: %d)", inst.Name, inst.LicenseNumber, id))
		return &TransitionResult{Removed: true}, nil
	}

	if action == lifecycle.RenewLicense {
		base := inst.LicenseExpiry
		if now := today(s.now()); base.Before(now) {
			base = now
		}
		inst.LicenseExpiry = base.AddDate(licenseRenewalYears, 0, 0)
	}
	inst.Status = res.Status
	if err := s.institutions.Update(ctx, inst); err != nil {
		return nil, fmt.Errorf("failed to update institution: %w", err)
	}

	s.metrics.Transitioned(KindInstitution, string(action))
	audit(ctx, s.audit, "institution_"+string(action), inst.Name,
		fmt.Sprintf("%s applied to %s (license expiry %s)", action, inst.Name, formatDay(inst.LicenseExpiry)))

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransitionResult{Institution: detail}, nil
}

// InstitutionFormData converts an institution into edit-form values.
func InstitutionFormData(i *models.Institution) form.Data {
	return form.Data{
		Values: form.Values{
			"name":          i.Name,
			"type":          string(i.Type),
			"licenseNumber": i.LicenseNumber,
			"address":       i.Address,
			"phone":         i.Phone,
			"email":         i.Email,
			"contactPerson": i.ContactPerson,
			"licenseExpiry": formatDay(i.LicenseExpiry),
			"description":   i.Description,
		},
		Lists: map[string][]string{"services": append([]string{}, i.Services...)},
	}
}

func applyInstitutionValues(i *models.Institution, data form.Data) error {
	v := data.Values
	expiry, err := parseDay(v["licenseExpiry"])
	if err != nil {
		return invalid("licenseExpiry", "validation.invalidDate")
	}
	i.Name = strings.TrimSpace(v["name"])
	i.Type = models.InstitutionType(v["type"])
	i.LicenseNumber = strings.TrimSpace(v["licenseNumber"])
	i.Address = strings.TrimSpace(v["address"])
	i.Phone = strings.TrimSpace(v["phone"])
	i.Email = strings.TrimSpace(v["email"])
	i.ContactPerson = strings.TrimSpace(v["contactPerson"])
	i.LicenseExpiry = expiry
	i.Description = strings.TrimSpace(v["description"])

	services := make([]string, 0, len(data.Lists["services"]))
	for _, svc := range data.Lists["services"] {
		if svc = strings.TrimSpace(svc); svc != "" {
			services = append(services, svc)
		}
	}
	i.Services = services
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/listing"
	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

// CitizenListSpec searches name, national ID and email.
var CitizenListSpec = listing.Spec[models.Citizen]{
	SearchFields: []func(models.Citizen) string{
		func(c models.Citizen) string { return c.Name },
		func(c models.Citizen) string { return c.NationalID },
		func(c models.Citizen) string { return c.Email },
	},
	Filters: map[string]func(models.Citizen) string{
		"cardStatus":    func(c models.Citizen) string { return string(c.CardStatus) },
		"insuranceType": func(c models.Citizen) string { return string(c.InsuranceType) },
	},
}

type CitizenService struct {
	citizens repository.CitizenRepository
	audit    repository.AuditRepository
	pageSize int
	now      func() time.Time
}

func NewCitizenService(reg *repository.Registries, pageSize int) *CitizenService {
	return &CitizenService{
		citizens: reg.Citizens,
		audit:    reg.Audit,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// List returns one page of citizens matching q
func (s *CitizenService) List(ctx context.Context, q listing.Query) (listing.Page[models.Citizen], error) {
	all, err := s.citizens.List(ctx)
	if err != nil {
		return listing.Page[models.Citizen]{}, err
	}
	return listing.Apply(all, CitizenListSpec, q, s.pageSize)
}

func (s *CitizenService) Get(ctx context.Context, id uint) (*models.Citizen, error) {
	return s.citizens.Get(ctx, id)
}

// Search matches citizens whose national ID contains term or whose name
// contains it case-insensitively. Results are not paginated.
func (s *CitizenService) Search(ctx context.Context, term string) ([]models.Citizen, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Citizen{}, nil
	}
	all, err := s.citizens.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	out := make([]models.Citizen, 0)
	for _, c := range all {
		if strings.Contains(c.NationalID, term) || strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Create registers a citizen from submitted form data
func (s *CitizenService) Create(ctx context.Context, data form.Data) (*models.Citizen, error) {
	if err := validate(form.CitizenSchema(), data, s.now()); err != nil {
		return nil, err
	}
	citizen := &models.Citizen{CardStatus: models.CardStatusNone}
	if err := applyCitizenValues(citizen, data.Values); err != nil {
		return nil, err
	}

	if err := s.citizens.Create(ctx, citizen); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("nationalId", "citizens.nationalId.taken")
		}
		return nil, fmt.Errorf("failed to create citizen: %w", err)
	}

	audit(ctx, s.audit, "citizen_create", citizen.Name,
		fmt.Sprintf("Registered citizen %s (national ID %s)", citizen.Name, citizen.NationalID))
	return citizen, nil
}

// Update replaces a citizen's profile fields; card status and history are kept
func (s *CitizenService) Update(ctx context.Context, id uint, data form.Data) (*models.Citizen, error) {
	existing, err := s.citizens.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validate(form.CitizenSchema(), data, s.now()); err != nil {
		return nil, err
	}
	if err := applyCitizenValues(existing, data.Values); err != nil {
		return nil, err
	}

	if err := s.citizens.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("nationalId", "citizens.nationalId.taken")
		}
		return nil, fmt.Errorf("failed to update citizen: %w", err)
	}

	audit(ctx, s.audit, "citizen_update", existing.Name, fmt.Sprintf("Updated citizen %s (ID: %d)", existing.Name, id))
	return s.citizens.Get(ctx, id)
}

func (s *CitizenService) Delete(ctx context.Context, id uint) error {
	citizen, err := s.citizens.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.citizens.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete citizen: %w", err)
	}
	audit(ctx, s.audit, "citizen_delete", citizen.Name, fmt.Sprintf("Deleted citizen %s (ID: %d)", citizen.Name, id))
	return nil
}

// CitizenFormData converts a citizen into edit-form values.
func CitizenFormData(c *models.Citizen) form.Data {
	return form.Data{Values: form.Values{
		"nationalId":        c.NationalID,
		"name":              c.Name,
		"dateOfBirth":       formatDay(c.DateOfBirth),
		"gender":            c.Gender,
		"address":           c.Address,
		"phone":             c.Phone,
		"email":             c.Email,
		"emergencyContact":  c.EmergencyContact,
		"emergencyPhone":    c.EmergencyPhone,
		"bloodType":         c.BloodType,
		"insuranceType":     string(c.InsuranceType),
		"allergies":         c.Allergies,
		"chronicConditions": c.ChronicConditions,
	}}
}

func applyCitizenValues(c *models.Citizen, v form.Values) error {
	dob, err := parseDay(v["dateOfBirth"])
	if err != nil {
		return invalid("dateOfBirth", "validation.invalidDate")
	}
	c.NationalID = strings.TrimSpace(v["nationalId"])
	c.Name = strings.TrimSpace(v["name"])
	c.DateOfBirth = dob
	c.Gender = v["gender"]
	c.Address = strings.TrimSpace(v["address"])
	c.Phone = strings.TrimSpace(v["phone"])
	c.Email = strings.TrimSpace(v["email"])
	c.EmergencyContact = strings.TrimSpace(v["emergencyContact"])
	c.EmergencyPhone = strings.TrimSpace(v["emergencyPhone"])
	c.BloodType = v["bloodType"]
	c.InsuranceType = models.InsuranceType(v["insuranceType"])
	c.Allergies = strings.TrimSpace(v["allergies"])
	c.ChronicConditions = strings.TrimSpace(v["chronicConditions"])
	return nil
}

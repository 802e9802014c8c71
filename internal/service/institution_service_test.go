package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/lifecycle"
	"nfc-card-admin/internal/listing"
	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

type InstitutionServiceSuite struct {
	ServiceSuite
}

func TestInstitutionServiceSuite(t *testing.T) {
	suite.Run(t, new(InstitutionServiceSuite))
}

func institutionData(license string) form.Data {
	return form.Data{
		Values: form.Values{
			"name":          "Nile Diagnostics",
			"type":          string(models.InstitutionLaboratory),
			"licenseNumber": license,
			"address":       "3 Corniche, Aswan",
			"phone":         "+20 97 123 4567",
			"email":         "info@nilediag.example",
			"contactPerson": "Dr. Hana Saleh",
			"licenseExpiry": "2028-06-30",
		},
		Lists: map[string][]string{"services": {"Blood Test", "  ", "X-Ray"}},
	}
}

func (s *InstitutionServiceSuite) TestCreate() {
	inst, err := s.institutions.Create(s.ctx, institutionData("LIC-2026-010"))
	s.Require().NoError(err)
	s.Equal(models.InstitutionActive, inst.Status)
	s.Equal(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), inst.RegistrationDate)
	s.Equal([]string{"Blood Test", "X-Ray"}, []string(inst.Services))

	_, err = s.institutions.Create(s.ctx, institutionData("LIC-2026-010"))
	var verr *form.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("institutions.licenseTaken", verr.Fields["licenseNumber"].Key)
}

func (s *InstitutionServiceSuite) TestListSearchAndFilter() {
	page, err := s.institutions.List(s.ctx, listing.Query{Term: "cairo"})
	s.Require().NoError(err)
	s.Equal(1, page.Total)

	page, err = s.institutions.List(s.ctx, listing.Query{Filters: map[string]string{"status": "Active"}})
	s.Require().NoError(err)
	s.Equal(2, page.Total)
}

func (s *InstitutionServiceSuite) TestActiveInstitutionCannotBeDeleted() {
	detail, err := s.institutions.Get(s.ctx, 1)
	s.Require().NoError(err)
	actions := enabled(detail.Actions)
	s.True(actions[lifecycle.Suspend])
	_, offered := actions[lifecycle.Delete]
	s.False(offered)

	_, err = s.institutions.Transition(s.ctx, 1, lifecycle.Delete)
	s.ErrorIs(err, lifecycle.ErrInvalidTransition)
}

func (s *InstitutionServiceSuite) TestSuspendThenDelete() {
	res, err := s.institutions.Transition(s.ctx, 2, lifecycle.Suspend)
	s.Require().NoError(err)
	s.Equal(models.InstitutionSuspended, res.Institution.Status)

	res, err = s.institutions.Transition(s.ctx, 2, lifecycle.Delete)
	s.Require().NoError(err)
	s.True(res.Removed)

	_, err = s.institutions.Get(s.ctx, 2)
	s.ErrorIs(err, repository.ErrInstitutionNotFound)
}

func (s *InstitutionServiceSuite) TestRenewLicense() {
	res, err := s.institutions.Transition(s.ctx, 4, lifecycle.RenewLicense)
	s.Require().NoError(err)
	s.Equal(models.InstitutionActive, res.Institution.Status)
	s.Equal(time.Date(2028, 10, 16, 0, 0, 0, 0, time.UTC), res.Institution.LicenseExpiry)

	res, err = s.institutions.Transition(s.ctx, 1, lifecycle.RenewLicense)
	s.Require().NoError(err)
	s.Equal(time.Date(2029, 1, 14, 0, 0, 0, 0, time.UTC), res.Institution.LicenseExpiry)
}

func (s *InstitutionServiceSuite) TestUpdateKeepsStatus() {
	inst, err := s.institutions.Get(s.ctx, 5)
	s.Require().NoError(err)
	data := InstitutionFormData(&inst.Institution)
	data.Values["contactPerson"] = "Dr. Nour Adel"

	updated, err := s.institutions.Update(s.ctx, 5, data)
	s.Require().NoError(err)
	s.Equal("Dr. Nour Adel", updated.ContactPerson)
	s.Equal(models.InstitutionSuspended, updated.Status)
}

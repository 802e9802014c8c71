package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/listing"
	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

type CitizenServiceSuite struct {
	ServiceSuite
}

func TestCitizenServiceSuite(t *testing.T) {
	suite.Run(t, new(CitizenServiceSuite))
}

func citizenData(nationalID string) form.Data {
	return form.Data{Values: form.Values{
		"nationalId":       nationalID,
		"name":             "Omar Khaled",
		"dateOfBirth":      "1992-04-01",
		"gender":           "Male",
		"address":          "15 Nile St, Cairo",
		"phone":            "+20 100 123 4567",
		"email":            "omar@example.com",
		"emergencyContact": "Mona Khaled",
		"emergencyPhone":   "+20 100 765 4321",
		"bloodType":        "O+",
		"insuranceType":    "Basic",
	}}
}

func (s *CitizenServiceSuite) TestSearchByNationalID() {
	found, err := s.citizens.Search(s.ctx, "29012345678901")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Ahmed Mohamed", found[0].Name)
}

func (s *CitizenServiceSuite) TestSearchByNameIgnoresCase() {
	found, err := s.citizens.Search(s.ctx, "sara")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Sara Ahmed", found[0].Name)
}

func (s *CitizenServiceSuite) TestSearchEmptyTerm() {
	found, err := s.citizens.Search(s.ctx, "   ")
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *CitizenServiceSuite) TestListFiltersAndRejectsUnknownFilter() {
	page, err := s.citizens.List(s.ctx, listing.Query{Filters: map[string]string{"insuranceType": "Comprehensive"}})
	s.Require().NoError(err)
	s.Equal(3, page.Total)

	_, err = s.citizens.List(s.ctx, listing.Query{Filters: map[string]string{"color": "blue"}})
	s.ErrorIs(err, listing.ErrUnknownFilter)
}

func (s *CitizenServiceSuite) TestCreate() {
	c, err := s.citizens.Create(s.ctx, citizenData("29204011234567"))
	s.Require().NoError(err)
	s.NotZero(c.ID)
	s.Equal(models.CardStatusNone, c.CardStatus)

	logs, err := s.reg.Audit.Recent(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("citizen_create", logs[0].Action)
	s.Require().NotNil(logs[0].UserID)
	s.Equal(uint(1), *logs[0].UserID)
}

func (s *CitizenServiceSuite) TestShortNationalIDIsRejected() {
	_, err := s.citizens.Create(s.ctx, citizenData("2920401123456"))

	var verr *form.ValidationError
	s.Require().True(errors.As(err, &verr))
	v, ok := verr.Fields["nationalId"]
	s.Require().True(ok)
	s.Equal("citizens.nationalId.digits", v.Key)

	tr, err := i18n.New("en")
	s.Require().NoError(err)
	s.Contains(tr.Message(tr.Default(), v.Key, v.Params...), "must be 14 digits")
}

func (s *CitizenServiceSuite) TestDuplicateNationalID() {
	_, err := s.citizens.Create(s.ctx, citizenData("29012345678901"))

	var verr *form.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("citizens.nationalId.taken", verr.Fields["nationalId"].Key)
}

func (s *CitizenServiceSuite) TestUpdateKeepsCardStatusAndHistory() {
	ahmed, err := s.citizens.Get(s.ctx, 1)
	s.Require().NoError(err)
	data := CitizenFormData(ahmed)
	data.Values["address"] = "1 New Road, Giza"

	updated, err := s.citizens.Update(s.ctx, 1, data)
	s.Require().NoError(err)
	s.Equal("1 New Road, Giza", updated.Address)
	s.Equal(models.CardStatusActive, updated.CardStatus)
	s.Len(updated.CardHistory, len(ahmed.CardHistory))
}

func (s *CitizenServiceSuite) TestDelete() {
	s.Require().NoError(s.citizens.Delete(s.ctx, 2))
	_, err := s.citizens.Get(s.ctx, 2)
	s.ErrorIs(err, repository.ErrCitizenNotFound)
}

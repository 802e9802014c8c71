package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"nfc-card-admin/internal/models"
)

type MemoryRegistriesSuite struct {
	suite.Suite
	ctx context.Context
	reg *Registries
}

func TestMemoryRegistriesSuite(t *testing.T) {
	suite.Run(t, new(MemoryRegistriesSuite))
}

func (s *MemoryRegistriesSuite) SetupTest() {
	s.ctx = context.Background()
	s.reg = NewMemoryRegistries()
	seeded, err := SeedIfEmpty(s.ctx, s.reg)
	s.Require().NoError(err)
	s.Require().True(seeded)
}

func (s *MemoryRegistriesSuite) TestSeedIsIdempotent() {
	seeded, err := SeedIfEmpty(s.ctx, s.reg)
	s.Require().NoError(err)
	s.False(seeded)

	citizens, err := s.reg.Citizens.List(s.ctx)
	s.Require().NoError(err)
	s.Len(citizens, 5)
}

func (s *MemoryRegistriesSuite) TestInsertionOrderAndHistory() {
	citizens, err := s.reg.Citizens.List(s.ctx)
	s.Require().NoError(err)
	s.Equal("Ahmed Mohamed", citizens[0].Name)
	s.Equal("Khaled Mahmoud", citizens[4].Name)
	s.Nil(citizens[0].CardHistory, "list views do not carry history")

	ahmed, err := s.reg.Citizens.Get(s.ctx, citizens[0].ID)
	s.Require().NoError(err)
	s.Require().Len(ahmed.CardHistory, 3)
	s.Equal("Card Issued", ahmed.CardHistory[0].Action)

	s.Require().NoError(s.reg.Citizens.AppendHistory(s.ctx, ahmed.ID, models.CitizenCardEvent{Action: "Card Printed"}))
	again, err := s.reg.Citizens.Get(s.ctx, ahmed.ID)
	s.Require().NoError(err)
	s.Len(again.CardHistory, 4)
	s.Equal("Card Printed", again.CardHistory[3].Action)
}

func (s *MemoryRegistriesSuite) TestReturnedRecordsAreCopies() {
	card, err := s.reg.Cards.Get(s.ctx, 1)
	s.Require().NoError(err)
	card.UsageHistory[0].Action = "tampered"
	card.Status = models.CardStatusSuspended

	fresh, err := s.reg.Cards.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Card Issued", fresh.UsageHistory[0].Action)
	s.Equal(models.CardStatusActive, fresh.Status)
}

func (s *MemoryRegistriesSuite) TestUniqueness() {
	dup := models.Citizen{NationalID: "29012345678901", Name: "Someone Else"}
	s.ErrorIs(s.reg.Citizens.Create(s.ctx, &dup), ErrDuplicate)

	sara, err := s.reg.Citizens.FindByNationalID(s.ctx, "30112345678902")
	s.Require().NoError(err)
	sara.NationalID = "29012345678901"
	s.ErrorIs(s.reg.Citizens.Update(s.ctx, sara), ErrDuplicate)
}

func (s *MemoryRegistriesSuite) TestUpdateKeepsHistory() {
	card, err := s.reg.Cards.Get(s.ctx, 1)
	s.Require().NoError(err)
	card.UsageHistory = nil
	card.Status = models.CardStatusSuspended
	s.Require().NoError(s.reg.Cards.Update(s.ctx, card))

	fresh, err := s.reg.Cards.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(models.CardStatusSuspended, fresh.Status)
	s.Len(fresh.UsageHistory, 3)
}

func (s *MemoryRegistriesSuite) TestInstitutionSoftDelete() {
	s.Require().NoError(s.reg.Institutions.Delete(s.ctx, 4))
	_, err := s.reg.Institutions.Get(s.ctx, 4)
	s.ErrorIs(err, ErrInstitutionNotFound)
	s.ErrorIs(s.reg.Institutions.Delete(s.ctx, 4), ErrInstitutionNotFound)

	all, err := s.reg.Institutions.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 4)
}

func (s *MemoryRegistriesSuite) TestCardsByCitizenNewestFirst() {
	card := models.Card{CardNumber: "NFC-2024-006", CitizenID: 4, IssueDate: day("2024-01-01"), ExpiryDate: day("2028-12-31"), Status: models.CardStatusActive}
	s.Require().NoError(s.reg.Cards.Create(s.ctx, &card))

	cards, err := s.reg.Cards.ListByCitizen(s.ctx, 4)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Equal("NFC-2024-006", cards[0].CardNumber)
}

func (s *MemoryRegistriesSuite) TestAuditRecentNewestFirst() {
	for _, action := range []string{"a", "b", "c"} {
		s.Require().NoError(s.reg.Audit.CreateAuditLog(s.ctx, nil, action, "", ""))
	}
	logs, err := s.reg.Audit.Recent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(logs, 2)
	s.Equal("c", logs[0].Action)
	s.Equal("b", logs[1].Action)
}

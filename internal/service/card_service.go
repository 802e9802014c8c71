package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/lifecycle"
	"nfc-card-admin/internal/listing"
	"nfc-card-admin/internal/metrics"
	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

// CardListSpec searches card number, citizen name and national ID.
var CardListSpec = listing.Spec[models.Card]{
	SearchFields: []func(models.Card) string{
		func(c models.Card) string { return c.CardNumber },
		func(c models.Card) string { return c.CitizenName },
		func(c models.Card) string { return c.NationalID },
	},
	Filters: map[string]func(models.Card) string{
		"status":        func(c models.Card) string { return string(c.Status) },
		"insuranceType": func(c models.Card) string { return string(c.InsuranceType) },
	},
}

const issuingOffice = "Main Office"

// CardDetail is a card with the actions its status allows.
type CardDetail struct {
	models.Card
	Actions []lifecycle.Availability `json:"actions"`
}

// UsageInput describes one tap of a card at an institution.
type UsageInput struct {
	InstitutionID uint   `json:"institutionId" binding:"required"`
	Service       string `json:"service" binding:"required"`
	Details       string `json:"details"`
}

type CardService struct {
	cards        repository.CardRepository
	citizens     repository.CitizenRepository
	institutions repository.InstitutionRepository
	audit        repository.AuditRepository
	metrics      *metrics.Metrics
	pageSize     int
	now          func() time.Time
}

func NewCardService(reg *repository.Registries, m *metrics.Metrics, pageSize int) *CardService {
	return &CardService{
		cards:        reg.Cards,
		citizens:     reg.Citizens,
		institutions: reg.Institutions,
		audit:        reg.Audit,
		metrics:      m,
		pageSize:     pageSize,
		now:          time.Now,
	}
}

// resolveOwners overwrites the stored citizen copies with the live citizen
// record. Cards whose citizen is gone keep their stored copy.
func (s *CardService) resolveOwners(ctx context.Context, cards []models.Card) error {
	citizens, err := s.citizens.List(ctx)
	if err != nil {
		return err
	}
	byID := make(map[uint]models.Citizen, len(citizens))
	for _, c := range citizens {
		byID[c.ID] = c
	}
	for i := range cards {
		if owner, ok := byID[cards[i].CitizenID]; ok {
			cards[i].CitizenName = owner.Name
			cards[i].NationalID = owner.NationalID
		}
	}
	return nil
}

func (s *CardService) resolveOwner(ctx context.Context, card *models.Card) {
	if owner, err := s.citizens.Get(ctx, card.CitizenID); err == nil {
		card.CitizenName = owner.Name
		card.NationalID = owner.NationalID
	}
}

// List returns one page of cards matching q, with owner fields resolved
func (s *CardService) List(ctx context.Context, q listing.Query) (listing.Page[models.Card], error) {
	all, err := s.cards.List(ctx)
	if err != nil {
		return listing.Page[models.Card]{}, err
	}
	if err := s.resolveOwners(ctx, all); err != nil {
		return listing.Page[models.Card]{}, err
	}
	return listing.Apply(all, CardListSpec, q, s.pageSize)
}

// All returns every card with owner fields resolved.
func (s *CardService) All(ctx context.Context) ([]models.Card, error) {
	all, err := s.cards.List(ctx)
	if err != nil {
		return nil, err
	}
	return all, s.resolveOwners(ctx, all)
}

func (s *CardService) Get(ctx context.Context, id uint) (*CardDetail, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveOwner(ctx, card)
	return &CardDetail{Card: *card, Actions: lifecycle.Cards.Available(card.Status)}, nil
}

// Issue creates an active card for the selected citizen
func (s *CardService) Issue(ctx context.Context, data form.Data) (*models.Card, error) {
	now := s.now()
	if err := validate(form.CardIssueSchema(), data, now); err != nil {
		return nil, err
	}
	citizenID, err := parseUint(data.Values["citizenId"])
	if err != nil {
		return nil, invalid("citizenId", "validation.number")
	}
	years, err := strconv.Atoi(strings.TrimSpace(data.Values["validityYears"]))
	if err != nil {
		return nil, invalid("validityYears", "validation.number")
	}

	citizen, err := s.citizens.Get(ctx, citizenID)
	if err != nil {
		if errors.Is(err, repository.ErrCitizenNotFound) {
			return nil, invalid("citizenId", "cardManagement.noCitizenFound")
		}
		return nil, err
	}

	held, err := s.cards.ListByCitizen(ctx, citizen.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range held {
		if c.Status == models.CardStatusActive {
			return nil, invalid("citizenId", "cardManagement.alreadyHasCard")
		}
	}

	issued := today(now)
	card := &models.Card{
		CitizenID:     citizen.ID,
		CitizenName:   citizen.Name,
		NationalID:    citizen.NationalID,
		IssueDate:     issued,
		ExpiryDate:    expiryAfter(issued, years),
		Status:        models.CardStatusActive,
		InsuranceType: models.InsuranceType(data.Values["insuranceType"]),
	}
	if err := s.createWithNumber(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to issue card: %w", err)
	}

	if err := s.cards.AppendUsage(ctx, card.ID, models.CardUsageEvent{
		Date: issued, Action: "Card Issued", Location: issuingOffice, Details: "Initial card issuance",
	}); err != nil {
		return nil, fmt.Errorf("failed to record card usage: %w", err)
	}
	if err := s.appendCitizenHistory(ctx, citizen.ID, models.CitizenCardEvent{
		Date: issued, Action: "Card Issued", Details: fmt.Sprintf("Card %s issued", card.CardNumber),
	}); err != nil {
		return nil, err
	}
	citizen.CardStatus = models.CardStatusActive
	if err := s.citizens.Update(ctx, citizen); err != nil {
		return nil, fmt.Errorf("failed to update citizen card status: %w", err)
	}

	audit(ctx, s.audit, "card_issue", card.CardNumber,
		fmt.Sprintf("Issued card %s to %s", card.CardNumber, citizen.Name))
	return card, nil
}

// createWithNumber assigns the next NFC-YYYY-NNN number of the issue year,
// retrying when a concurrent issuance took it first.
func (s *CardService) createWithNumber(ctx context.Context, card *models.Card) error {
	existing, err := s.cards.List(ctx)
	if err != nil {
		return err
	}
	seq := 0
	for _, c := range existing {
		if n, ok := cardSequence(c.CardNumber); ok && n > seq {
			seq = n
		}
	}
	for attempt := 0; attempt < 5; attempt++ {
		seq++
		card.CardNumber = fmt.Sprintf("NFC-%d-%03d", card.IssueDate.Year(), seq)
		err = s.cards.Create(ctx, card)
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	return err
}

// cardSequence extracts NNN from NFC-YYYY-NNN.
func cardSequence(number string) (int, bool) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] != "NFC" {
		return 0, false
	}
	n, err := strconv.Atoi(parts[2])
	return n, err == nil
}

// Transition applies a lifecycle action and records it in the card's and the
// citizen's history.
func (s *CardService) Transition(ctx context.Context, id uint, action lifecycle.Action) (*CardDetail, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := lifecycle.Cards.Apply(action, card.Status)
	if err != nil {
		return nil, err
	}

	day := today(s.now())
	var event, details string
	switch action {
	case lifecycle.Suspend:
		event, details = "Card Suspended", "Suspended by operator"
	case lifecycle.Renew:
		card.ExpiryDate = expiryAfter(day, renewalYears)
		event, details = "Card Renewed", fmt.Sprintf("Valid until %s", formatDay(card.ExpiryDate))
	case lifecycle.Print:
		event, details = "Card Printed", "Sent to printer"
	}
	card.Status = res.Status

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	if err := s.cards.AppendUsage(ctx, card.ID, models.CardUsageEvent{
		Date: day, Action: event, Location: issuingOffice, Details: details,
	}); err != nil {
		return nil, fmt.Errorf("failed to record card usage: %w", err)
	}
	if err := s.appendCitizenHistory(ctx, card.CitizenID, models.CitizenCardEvent{
		Date: day, Action: event, Details: fmt.Sprintf("Card %s: %s", card.CardNumber, strings.ToLower(details)),
	}); err != nil {
		return nil, err
	}
	if err := s.syncCitizenStatus(ctx, card.CitizenID); err != nil {
		return nil, err
	}

	s.metrics.Transitioned(KindCard, string(action))
	audit(ctx, s.audit, "card_"+string(action), card.CardNumber, fmt.Sprintf("%s: %s", event, card.CardNumber))
	return s.Get(ctx, id)
}

// syncCitizenStatus copies the status of the citizen's newest card.
// appendCitizenHistory records event for the card's owner. Cards can outlive
// a deleted citizen, in which case there is no history to extend.
func (s *CardService) appendCitizenHistory(ctx context.Context, citizenID uint, event models.CitizenCardEvent) error {
	err := s.citizens.AppendHistory(ctx, citizenID, event)
	if err != nil && !errors.Is(err, repository.ErrCitizenNotFound) {
		return fmt.Errorf("failed to record citizen history: %w", err)
	}
	return nil
}

func (s *CardService) syncCitizenStatus(ctx context.Context, citizenID uint) error {
	citizen, err := s.citizens.Get(ctx, citizenID)
	if errors.Is(err, repository.ErrCitizenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	cards, err := s.cards.ListByCitizen(ctx, citizenID)
	if err != nil {
		return err
	}
	want := models.CardStatusNone
	if len(cards) > 0 {
		want = cards[0].Status
	}
	if citizen.CardStatus == want {
		return nil
	}
	citizen.CardStatus = want
	return s.citizens.Update(ctx, citizen)
}

// RecordUsage records an active card being used at an active institution
func (s *CardService) RecordUsage(ctx context.Context, id uint, in UsageInput) (*CardDetail, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if card.Status != models.CardStatusActive {
		return nil, ErrCardNotActive
	}
	inst, err := s.institutions.Get(ctx, in.InstitutionID)
	if err != nil {
		return nil, err
	}
	if inst.Status != models.InstitutionActive {
		return nil, ErrInstitutionNotActive
	}
	s.resolveOwner(ctx, card)

	day := today(s.now())
	details := in.Service
	if in.Details != "" {
		details = fmt.Sprintf("%s: %s", in.Service, in.Details)
	}
	card.LastUsed = &day
	if err := s.cards.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	if err := s.cards.AppendUsage(ctx, card.ID, models.CardUsageEvent{
		Date: day, Action: "Card Used", Location: inst.Name, Details: details,
	}); err != nil {
		return nil, fmt.Errorf("failed to record card usage: %w", err)
	}
	if err := s.institutions.AppendUsage(ctx, inst.ID, models.InstitutionUsageEvent{
		Date: day, CitizenName: card.CitizenName, Service: in.Service, CardNumber: card.CardNumber,
	}); err != nil {
		return nil, fmt.Errorf("failed to record institution usage: %w", err)
	}
	if err := s.appendCitizenHistory(ctx, card.CitizenID, models.CitizenCardEvent{
		Date: day, Action: "Card Used", Details: fmt.Sprintf("%s at %s", in.Service, inst.Name),
	}); err != nil {
		return nil, err
	}

	audit(ctx, s.audit, "card_usage", card.CardNumber, fmt.Sprintf("Card %s used at %s", card.CardNumber, inst.Name))
	return s.Get(ctx, id)
}

// IssueFormData pre-fills the issuance form from a selected citizen.
func IssueFormData(c models.Citizen) form.Values {
	return form.Values{
		"citizenId":     strconv.FormatUint(uint64(c.ID), 10),
		"nationalId":    c.NationalID,
		"citizenName":   c.Name,
		"insuranceType": string(c.InsuranceType),
	}
}

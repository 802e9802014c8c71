package service

import (
	"context"
	"strconv"
	"time"

	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

const (
	recentActivityLimit  = 10
	licenseAlertWindow   = 30
	alertSeverityWarning = "warning"
	alertSeverityError   = "error"
)

type DashboardStats struct {
	TotalCitizens      int `json:"totalCitizens"`
	CardsIssued        int `json:"cardsIssued"`
	PendingCards       int `json:"pendingCards"`
	ActiveInstitutions int `json:"activeInstitutions"`
}

type Activity struct {
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert is rendered by the client from Key and Params.
type Alert struct {
	Severity string   `json:"severity"`
	Key      string   `json:"key"`
	Params   []string `json:"params"`
	Message  string   `json:"message,omitempty"`
}

type Dashboard struct {
	Stats          DashboardStats `json:"stats"`
	RecentActivity []Activity     `json:"recentActivity"`
	Alerts         []Alert        `json:"alerts"`
}

type DashboardService struct {
	citizens     repository.CitizenRepository
	cards        repository.CardRepository
	institutions repository.InstitutionRepository
	audit        repository.AuditRepository
	now          func() time.Time
}

func NewDashboardService(reg *repository.Registries) *DashboardService {
	return &DashboardService{
		citizens:     reg.Citizens,
		cards:        reg.Cards,
		institutions: reg.Institutions,
		audit:        reg.Audit,
		now:          time.Now,
	}
}

// Summary aggregates counters, the activity feed and alerts
func (s *DashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	citizens, err := s.citizens.List(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.List(ctx)
	if err != nil {
		return nil, err
	}
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.audit.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Stats:          DashboardStats{TotalCitizens: len(citizens), CardsIssued: len(cards)},
		RecentActivity: make([]Activity, 0, len(logs)),
		Alerts:         []Alert{},
	}

	expired := 0
	for _, c := range cards {
		switch c.Status {
		case models.CardStatusPending:
			d.Stats.PendingCards++
		case models.CardStatusExpired:
			expired++
		}
	}

	day := today(s.now())
	horizon := day.AddDate(0, 0, licenseAlertWindow)
	expiring := 0
	for _, i := range institutions {
		if i.Status == models.InstitutionActive {
			d.Stats.ActiveInstitutions++
		}
		if !i.LicenseExpiry.Before(day) && !i.LicenseExpiry.After(horizon) {
			expiring++
		}
	}

	for _, l := range logs {
		d.RecentActivity = append(d.RecentActivity, Activity{
			Action: l.Action, Subject: l.Subject, Details: l.Details, Timestamp: l.CreatedAt,
		})
	}

	if d.Stats.PendingCards > 0 {
		d.Alerts = append(d.Alerts, Alert{
			Severity: alertSeverityWarning,
			Key:      "dashboard.alerts.pendingCards",
			Params:   []string{strconv.Itoa(d.Stats.PendingCards)},
		})
	}
	if expiring > 0 {
		d.Alerts = append(d.Alerts, Alert{
			Severity: alertSeverityError,
			Key:      "dashboard.alerts.expiringLicenses",
			Params:   []string{strconv.Itoa(expiring), strconv.Itoa(licenseAlertWindow)},
		})
	}
	if expired > 0 {
		d.Alerts = append(d.Alerts, Alert{
			Severity: alertSeverityWarning,
			Key:      "dashboard.alerts.expiredCards",
			Params:   []string{strconv.Itoa(expired)},
		})
	}
	return d, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

const (
	trendMonths          = 6
	expiringReportWindow = 90
)

// Count is one bar of a breakdown chart.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type CitizenReport struct {
	ByInsuranceType []Count `json:"byInsuranceType"`
	ByGender        []Count `json:"byGender"`
	ByCardStatus    []Count `json:"byCardStatus"`
	ByAgeGroup      []Count `json:"byAgeGroup"`
}

type CardReport struct {
	ByStatus               []Count `json:"byStatus"`
	ByInsuranceType        []Count `json:"byInsuranceType"`
	IssuanceTrend          []Count `json:"issuanceTrend"`
	UsageByInstitutionType []Count `json:"usageByInstitutionType"`
}

type ExpiringLicense struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	LicenseNumber string    `json:"licenseNumber"`
	LicenseExpiry time.Time `json:"licenseExpiry"`
}

type InstitutionReport struct {
	ByType       []Count           `json:"byType"`
	ByStatus     []Count           `json:"byStatus"`
	ExpiringSoon []ExpiringLicense `json:"expiringSoon"`
}

type ReportService struct {
	citizens     repository.CitizenRepository
	cards        repository.CardRepository
	institutions repository.InstitutionRepository
	now          func() time.Time
}

func NewReportService(reg *repository.Registries) *ReportService {
	return &ReportService{
		citizens:     reg.Citizens,
		cards:        reg.Cards,
		institutions: reg.Institutions,
		now:          time.Now,
	}
}

// tally counts values in the order of labels; unknown values are dropped.
func tally(labels []string, values []string) []Count {
	idx := make(map[string]int, len(labels))
	out := make([]Count, len(labels))
	for i, l := range labels {
		idx[l] = i
		out[i] = Count{Label: l}
	}
	for _, v := range values {
		if i, ok := idx[v]; ok {
			out[i].Count++
		}
	}
	return out
}

var ageGroups = []struct {
	label    string
	min, max int
}{
	{"0-18", 0, 18},
	{"19-30", 19, 30},
	{"31-45", 31, 45},
	{"46-60", 46, 60},
	{"61+", 61, 200},
}

func ageOn(dob, day time.Time) int {
	age := day.Year() - dob.Year()
	if day.Month() < dob.Month() || (day.Month() == dob.Month() && day.Day() < dob.Day()) {
		age--
	}
	return age
}

func ageGroup(age int) string {
	for _, g := range ageGroups {
		if age >= g.min && age <= g.max {
			return g.label
		}
	}
	return ""
}

func (s *ReportService) Citizens(ctx context.Context) (*CitizenReport, error) {
	citizens, err := s.citizens.List(ctx)
	if err != nil {
		return nil, err
	}
	day := today(s.now())

	var insurance, genders, statuses, ages []string
	for _, c := range citizens {
		insurance = append(insurance, string(c.InsuranceType))
		genders = append(genders, c.Gender)
		statuses = append(statuses, string(c.CardStatus))
		ages = append(ages, ageGroup(ageOn(c.DateOfBirth, day)))
	}

	groupLabels := make([]string, len(ageGroups))
	for i, g := range ageGroups {
		groupLabels[i] = g.label
	}
	cardStatuses := append([]string{string(models.CardStatusNone)}, models.Strings(models.CardStatuses)...)

	return &CitizenReport{
		ByInsuranceType: tally(models.Strings(models.InsuranceTypes), insurance),
		ByGender:        tally(models.Genders, genders),
		ByCardStatus:    tally(cardStatuses, statuses),
		ByAgeGroup:      tally(groupLabels, ages),
	}, nil
}

func (s *ReportService) Cards(ctx context.Context) (*CardReport, error) {
	cards, err := s.cards.List(ctx)
	if err != nil {
		return nil, err
	}
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, err
	}

	day := today(s.now())
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]string, trendMonths)
	for i := range months {
		months[i] = monthStart.AddDate(0, i-trendMonths+1, 0).Format("2006-01")
	}

	var statuses, insurance, issued []string
	for _, c := range cards {
		statuses = append(statuses, string(c.Status))
		insurance = append(insurance, string(c.InsuranceType))
		issued = append(issued, c.IssueDate.Format("2006-01"))
	}

	var usage []string
	for _, i := range institutions {
		detail, err := s.institutions.Get(ctx, i.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load usage of institution %d: %w", i.ID, err)
		}
		for range detail.CardUsageHistory {
			usage = append(usage, string(i.Type))
		}
	}

	return &CardReport{
		ByStatus:               tally(models.Strings(models.CardStatuses), statuses),
		ByInsuranceType:        tally(models.Strings(models.InsuranceTypes), insurance),
		IssuanceTrend:          tally(months, issued),
		UsageByInstitutionType: tally(models.Strings(models.InstitutionTypes), usage),
	}, nil
}

func (s *ReportService) Institutions(ctx context.Context) (*InstitutionReport, error) {
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, err
	}
	day := today(s.now())
	horizon := day.AddDate(0, 0, expiringReportWindow)

	report := &InstitutionReport{ExpiringSoon: []ExpiringLicense{}}
	var types, statuses []string
	for _, i := range institutions {
		types = append(types, string(i.Type))
		statuses = append(statuses, string(i.Status))
		if !i.LicenseExpiry.Before(day) && !i.LicenseExpiry.After(horizon) {
			report.ExpiringSoon = append(report.ExpiringSoon, ExpiringLicense{
				ID: i.ID, Name: i.Name, LicenseNumber: i.LicenseNumber, LicenseExpiry: i.LicenseExpiry,
			})
		}
	}
	report.ByType = tally(models.Strings(models.InstitutionTypes), types)
	report.ByStatus = tally(models.Strings(models.InstitutionStatuses), statuses)
	return report, nil
}

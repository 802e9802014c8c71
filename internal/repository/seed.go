package repository

import (
	"context"
	"fmt"
	"time"

	"nfc-card-admin/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

type citizenSeed struct {
	citizen models.Citizen
	history []models.CitizenCardEvent
}

func seedCitizens() []citizenSeed {
	return []citizenSeed{
		{
			citizen: models.Citizen{
				NationalID: "29012345678901", Name: "Ahmed Mohamed", DateOfBirth: day("1990-05-15"), Gender: "Male",
				Address: "Cairo, Egypt", Phone: "+20 123 456 7890", Email: "ahmed.mohamed@example.com",
				CardStatus: models.CardStatusActive, InsuranceType: models.InsuranceComprehensive,
				EmergencyContact: "Mona Mohamed", EmergencyPhone: "+20 123 456 7899", BloodType: "A+",
				Allergies: "None", ChronicConditions: "Diabetes", UpdatedAt: day("2023-10-12"),
			},
			history: []models.CitizenCardEvent{
				{Date: day("2023-01-15"), Action: "Card Issued", Details: "Initial card issuance"},
				{Date: day("2023-05-20"), Action: "Card Used", Details: "Emergency room visit at Cairo Hospital"},
				{Date: day("2023-08-10"), Action: "Card Used", Details: "Prescription refill at Central Pharmacy"},
			},
		},
		{
			citizen: models.Citizen{
				NationalID: "30112345678902", Name: "Sara Ahmed", DateOfBirth: day("2001-08-22"), Gender: "Female",
				Address: "Alexandria, Egypt", Phone: "+20 123 456 7891", Email: "sara.ahmed@example.com",
				CardStatus: models.CardStatusActive, InsuranceType: models.InsuranceBasic,
				EmergencyContact: "Omar Ahmed", EmergencyPhone: "+20 123 456 7898", BloodType: "O+",
				Allergies: "Penicillin", UpdatedAt: day("2023-11-05"),
			},
			history: []models.CitizenCardEvent{
				{Date: day("2023-02-20"), Action: "Card Issued", Details: "Initial card issuance"},
				{Date: day("2023-07-15"), Action: "Card Used", Details: "Cardiology checkup at Cairo Central Hospital"},
			},
		},
		{
			citizen: models.Citizen{
				NationalID: "28512345678903", Name: "Mahmoud Ali", DateOfBirth: day("1985-03-10"), Gender: "Male",
				Address: "Giza, Egypt", Phone: "+20 123 456 7892", Email: "mahmoud.ali@example.com",
				CardStatus: models.CardStatusPending, InsuranceType: models.InsurancePremium,
				EmergencyContact: "Hoda Ali", EmergencyPhone: "+20 123 456 7897", BloodType: "B+",
				ChronicConditions: "Hypertension", UpdatedAt: day("2023-09-18"),
			},
			history: []models.CitizenCardEvent{
				{Date: day("2023-03-10"), Action: "Card Requested", Details: "Awaiting approval"},
			},
		},
		{
			citizen: models.Citizen{
				NationalID: "29712345678904", Name: "Fatima Hussein", DateOfBirth: day("1997-11-28"), Gender: "Female",
				Address: "Luxor, Egypt", Phone: "+20 123 456 7893", Email: "fatima.hussein@example.com",
				CardStatus: models.CardStatusExpired, InsuranceType: models.InsuranceComprehensive,
				EmergencyContact: "Youssef Hussein", EmergencyPhone: "+20 123 456 7896", BloodType: "AB-",
				UpdatedAt: day("2023-10-30"),
			},
			history: []models.CitizenCardEvent{
				{Date: day("2022-05-18"), Action: "Card Issued", Details: "Initial card issuance"},
				{Date: day("2023-05-17"), Action: "Card Expired", Details: "Card reached its expiry date"},
			},
		},
		{
			citizen: models.Citizen{
				NationalID: "29412345678905", Name: "Khaled Mahmoud", DateOfBirth: day("1994-02-03"), Gender: "Male",
				Address: "Aswan, Egypt", Phone: "+20 123 456 7894", Email: "khaled.mahmoud@example.com",
				CardStatus: models.CardStatusSuspended, InsuranceType: models.InsuranceComprehensive,
				EmergencyContact: "Nadia Mahmoud", EmergencyPhone: "+20 123 456 7895", BloodType: "O-",
				UpdatedAt: day("2023-06-20"),
			},
			history: []models.CitizenCardEvent{
				{Date: day("2023-04-22"), Action: "Card Issued", Details: "Initial card issuance"},
				{Date: day("2023-06-20"), Action: "Card Suspended", Details: "Suspended pending review"},
			},
		},
	}
}

type cardSeed struct {
	card    models.Card
	citizen int
	usage   []models.CardUsageEvent
}

func seedCards() []cardSeed {
	return []cardSeed{
		{
			citizen: 0,
			card: models.Card{
				CardNumber: "NFC-2023-001", IssueDate: day("2023-01-15"), ExpiryDate: day("2028-01-14"),
				Status: models.CardStatusActive, InsuranceType: models.InsuranceComprehensive, LastUsed: dayPtr("2023-08-10"),
			},
			usage: []models.CardUsageEvent{
				{Date: day("2023-01-15"), Action: "Card Issued", Location: "Main Office", Details: "Initial card issuance"},
				{Date: day("2023-05-20"), Action: "Card Used", Location: "Cairo Hospital", Details: "Emergency room visit"},
				{Date: day("2023-08-10"), Action: "Card Used", Location: "Central Pharmacy", Details: "Prescription refill"},
			},
		},
		{
			citizen: 1,
			card: models.Card{
				CardNumber: "NFC-2023-002", IssueDate: day("2023-02-20"), ExpiryDate: day("2028-02-19"),
				Status: models.CardStatusActive, InsuranceType: models.InsuranceBasic, LastUsed: dayPtr("2023-07-15"),
			},
			usage: []models.CardUsageEvent{
				{Date: day("2023-02-20"), Action: "Card Issued", Location: "Main Office", Details: "Initial card issuance"},
				{Date: day("2023-07-15"), Action: "Card Used", Location: "Cairo Central Hospital", Details: "Cardiology checkup"},
			},
		},
		{
			citizen: 2,
			card: models.Card{
				CardNumber: "NFC-2023-003", IssueDate: day("2023-03-10"), ExpiryDate: day("2028-03-09"),
				Status: models.CardStatusPending, InsuranceType: models.InsurancePremium,
			},
		},
		{
			citizen: 3,
			card: models.Card{
				CardNumber: "NFC-2022-004", IssueDate: day("2022-05-18"), ExpiryDate: day("2023-05-17"),
				Status: models.CardStatusExpired, InsuranceType: models.InsuranceComprehensive, LastUsed: dayPtr("2022-12-30"),
			},
			usage: []models.CardUsageEvent{
				{Date: day("2022-05-18"), Action: "Card Issued", Location: "Main Office", Details: "Initial card issuance"},
				{Date: day("2022-12-30"), Action: "Card Used", Location: "Luxor Health Insurance", Details: "Claim submission"},
			},
		},
		{
			citizen: 4,
			card: models.Card{
				CardNumber: "NFC-2023-005", IssueDate: day("2023-04-22"), ExpiryDate: day("2028-04-21"),
				Status: models.CardStatusSuspended, InsuranceType: models.InsuranceComprehensive, LastUsed: dayPtr("2023-06-05"),
			},
			usage: []models.CardUsageEvent{
				{Date: day("2023-04-22"), Action: "Card Issued", Location: "Main Office", Details: "Initial card issuance"},
				{Date: day("2023-06-05"), Action: "Card Used", Location: "Aswan Medical Laboratory", Details: "Blood test"},
				{Date: day("2023-06-20"), Action: "Card Suspended", Location: "Main Office", Details: "Suspended pending review"},
			},
		},
	}
}

type institutionSeed struct {
	institution models.Institution
	usage       []models.InstitutionUsageEvent
}

func seedInstitutions() []institutionSeed {
	return []institutionSeed{
		{
			institution: models.Institution{
				Name: "Cairo Central Hospital", Type: models.InstitutionHospital, LicenseNumber: "LIC-2023-001",
				Address: "Downtown, Cairo", Phone: "+20 2 2755 0000", Email: "info@cairocentralhospital.com",
				Status: models.InstitutionActive, RegistrationDate: day("2023-01-15"), LicenseExpiry: day("2027-01-14"),
				ContactPerson: "Dr. Ahmed Mahmoud",
				Description:   "A leading healthcare provider in Cairo with state-of-the-art facilities.",
				Services:      []string{"Emergency Care", "Surgery", "Cardiology", "Pediatrics", "Obstetrics & Gynecology"},
			},
			usage: []models.InstitutionUsageEvent{
				{Date: day("2023-10-15"), CitizenName: "Ahmed Mohamed", Service: "Emergency Care", CardNumber: "NFC-2023-001"},
				{Date: day("2023-10-10"), CitizenName: "Sara Ahmed", Service: "Cardiology Checkup", CardNumber: "NFC-2023-002"},
				{Date: day("2023-10-05"), CitizenName: "Mahmoud Ali", Service: "Surgery", CardNumber: "NFC-2023-003"},
			},
		},
		{
			institution: models.Institution{
				Name: "Alexandria Medical Center", Type: models.InstitutionMedicalCenter, LicenseNumber: "LIC-2023-002",
				Address: "Corniche, Alexandria", Phone: "+20 3 4876 1234", Email: "contact@alexmedcenter.com",
				Status: models.InstitutionActive, RegistrationDate: day("2023-02-20"), LicenseExpiry: day("2027-02-19"),
				ContactPerson: "Dr. Hamada Ezzat",
				Description:   "Outpatient clinics and diagnostics on the Alexandria corniche.",
				Services:      []string{"General Practice", "Radiology", "Dermatology"},
			},
		},
		{
			institution: models.Institution{
				Name: "Giza Pharmacy Network", Type: models.InstitutionPharmacy, LicenseNumber: "LIC-2023-003",
				Address: "Haram Street, Giza", Phone: "+20 2 3749 8765", Email: "support@gizapharmacy.com",
				Status: models.InstitutionPending, RegistrationDate: day("2023-03-10"), LicenseExpiry: day("2027-03-09"),
				ContactPerson: "Dr. Aysha Salem",
				Services:      []string{"Prescription Dispensing", "Home Delivery"},
			},
		},
		{
			institution: models.Institution{
				Name: "Luxor Health Insurance", Type: models.InstitutionInsuranceProvider, LicenseNumber: "LIC-2022-004",
				Address: "Main Street, Luxor", Phone: "+20 95 2367 4321", Email: "info@luxorhealth.com",
				Status: models.InstitutionExpired, RegistrationDate: day("2022-05-18"), LicenseExpiry: day("2023-05-17"),
				ContactPerson: "Ms. Fatima Hassan",
				Services:      []string{"Claims Processing"},
			},
			usage: []models.InstitutionUsageEvent{
				{Date: day("2022-12-30"), CitizenName: "Fatima Hussein", Service: "Claim Submission", CardNumber: "NFC-2022-004"},
			},
		},
		{
			institution: models.Institution{
				Name: "Aswan Medical Laboratory", Type: models.InstitutionLaboratory, LicenseNumber: "LIC-2023-005",
				Address: "Nile Street, Aswan", Phone: "+20 97 3211 9876", Email: "lab@aswanmedical.com",
				Status: models.InstitutionSuspended, RegistrationDate: day("2023-04-22"), LicenseExpiry: day("2027-04-21"),
				ContactPerson: "Dr. Khaled Mahmoud",
				Services:      []string{"Blood Tests", "Pathology"},
			},
			usage: []models.InstitutionUsageEvent{
				{Date: day("2023-06-05"), CitizenName: "Khaled Mahmoud", Service: "Blood Test", CardNumber: "NFC-2023-005"},
			},
		},
	}
}

// Seed loads the demo registry contents.
func Seed(ctx context.Context, reg *Registries) error {
	citizenIDs := make([]uint, 0, 5)
	citizens := make([]models.Citizen, 0, 5)
	for _, s := range seedCitizens() {
		c := s.citizen
		if err := reg.Citizens.Create(ctx, &c); err != nil {
			return fmt.Errorf("failed to seed citizen %s: %w", c.NationalID, err)
		}
		for _, e := range s.history {
			if err := reg.Citizens.AppendHistory(ctx, c.ID, e); err != nil {
				return fmt.Errorf("failed to seed citizen history: %w", err)
			}
		}
		citizenIDs = append(citizenIDs, c.ID)
		citizens = append(citizens, c)
	}

	for _, s := range seedCards() {
		card := s.card
		owner := citizens[s.citizen]
		card.CitizenID = citizenIDs[s.citizen]
		card.CitizenName = owner.Name
		card.NationalID = owner.NationalID
		if err := reg.Cards.Create(ctx, &card); err != nil {
			return fmt.Errorf("failed to seed card %s: %w", card.CardNumber, err)
		}
		for _, e := range s.usage {
			if err := reg.Cards.AppendUsage(ctx, card.ID, e); err != nil {
				return fmt.Errorf("failed to seed card usage: %w", err)
			}
		}
	}

	for _, s := range seedInstitutions() {
		inst := s.institution
		if err := reg.Institutions.Create(ctx, &inst); err != nil {
			return fmt.Errorf("failed to seed institution %s: %w", inst.LicenseNumber, err)
		}
		for _, e := range s.usage {
			if err := reg.Institutions.AppendUsage(ctx, inst.ID, e); err != nil {
				return fmt.Errorf("failed to seed institution usage: %w", err)
			}
		}
	}
	return nil
}

// SeedIfEmpty seeds only a registry without citizens.
func SeedIfEmpty(ctx context.Context, reg *Registries) (bool, error) {
	existing, err := reg.Citizens.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	return true, Seed(ctx, reg)
}

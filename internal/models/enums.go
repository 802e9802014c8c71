package models

// CardStatus is the lifecycle state of an NFC card. A citizen without any
// card carries CardStatusNone.
type CardStatus string

const (
	CardStatusNone      CardStatus = "None"
	CardStatusActive    CardStatus = "Active"
	CardStatusPending   CardStatus = "Pending"
	CardStatusExpired   CardStatus = "Expired"
	CardStatusSuspended CardStatus = "Suspended"
)

// CardStatuses lists the statuses a Card record may hold.
var CardStatuses = []CardStatus{CardStatusActive, CardStatusPending, CardStatusExpired, CardStatusSuspended}

// Valid reports whether s is a status a Card may hold.
func (s CardStatus) Valid() bool {
	for _, v := range CardStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ValidForCitizen also accepts CardStatusNone.
func (s CardStatus) ValidForCitizen() bool {
	return s == CardStatusNone || s.Valid()
}

type InsuranceType string

const (
	InsuranceBasic         InsuranceType = "Basic"
	InsuranceComprehensive InsuranceType = "Comprehensive"
	InsurancePremium       InsuranceType = "Premium"
)

var InsuranceTypes = []InsuranceType{InsuranceBasic, InsuranceComprehensive, InsurancePremium}

func (t InsuranceType) Valid() bool {
	for _, v := range InsuranceTypes {
		if t == v {
			return true
		}
	}
	return false
}

type InstitutionType string

const (
	InstitutionHospital          InstitutionType = "Hospital"
	InstitutionMedicalCenter     InstitutionType = "Medical Center"
	InstitutionPharmacy          InstitutionType = "Pharmacy"
	InstitutionLaboratory        InstitutionType = "Laboratory"
	InstitutionInsuranceProvider InstitutionType = "Insurance Provider"
)

var InstitutionTypes = []InstitutionType{
	InstitutionHospital,
	InstitutionMedicalCenter,
	InstitutionPharmacy,
	InstitutionLaboratory,
	InstitutionInsuranceProvider,
}

func (t InstitutionType) Valid() bool {
	for _, v := range InstitutionTypes {
		if t == v {
			return true
		}
	}
	return false
}

type InstitutionStatus string

const (
	InstitutionActive    InstitutionStatus = "Active"
	InstitutionPending   InstitutionStatus = "Pending"
	InstitutionExpired   InstitutionStatus = "Expired"
	InstitutionSuspended InstitutionStatus = "Suspended"
)

var InstitutionStatuses = []InstitutionStatus{InstitutionActive, InstitutionPending, InstitutionExpired, InstitutionSuspended}

func (s InstitutionStatus) Valid() bool {
	for _, v := range InstitutionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Genders and BloodTypes back the select inputs of the citizen form.
var Genders = []string{"Male", "Female"}

var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Strings converts any string-backed enum slice into plain strings.
func Strings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

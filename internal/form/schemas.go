package form

import (
	"math"

	"nfc-card-admin/internal/models"
)

const (
	CitizenForm     = "citizen"
	CardIssueForm   = "card"
	InstitutionForm = "institution"
)

const (
	keyRequired     = "validation.required"
	keyInvalidEmail = "validation.invalidEmail"
	keyInvalidPhone = "validation.invalidPhone"
	keyInvalidDate  = "validation.invalidDate"
	keyNumber       = "validation.number"
	keyMin          = "validation.min"
	keyMax          = "validation.max"
	keyOneOf        = "validation.oneOf"
)

// CitizenSchema is the three-step citizen profile form.
func CitizenSchema() *Schema {
	return &Schema{
		Name:  CitizenForm,
		Steps: []string{"citizens.steps.personal", "citizens.steps.contact", "citizens.steps.medical"},
		Fields: []Field{
			{Name: "nationalId", Step: 0, Rules: []Rule{
				Required("citizens.nationalId.required"),
				Digits(14, "citizens.nationalId.digits"),
			}},
			{Name: "name", Step: 0, Rules: []Rule{
				Required("citizens.name.required"),
				MinLength(3, "citizens.name.min"),
			}},
			{Name: "dateOfBirth", Step: 0, Rules: []Rule{
				Required("citizens.dateOfBirth.required"),
				Date(keyInvalidDate),
				NotAfterToday("citizens.dateOfBirth.future"),
			}},
			{Name: "gender", Step: 0, Rules: []Rule{
				Required("citizens.gender.required"),
				OneOf(keyOneOf, models.Genders...),
			}},

			{Name: "address", Step: 1, Rules: []Rule{Required("citizens.address.required")}},
			{Name: "phone", Step: 1, Rules: []Rule{
				Required("citizens.phone.required"),
				Phone(keyInvalidPhone),
			}},
			{Name: "email", Step: 1, Rules: []Rule{
				Required("citizens.email.required"),
				Email(keyInvalidEmail),
			}},
			{Name: "emergencyContact", Step: 1, Rules: []Rule{Required("citizens.emergencyContact.required")}},
			{Name: "emergencyPhone", Step: 1, Rules: []Rule{
				Required("citizens.emergencyPhone.required"),
				Phone(keyInvalidPhone),
			}},

			{Name: "bloodType", Step: 2, Rules: []Rule{
				Required("citizens.bloodType.required"),
				OneOf(keyOneOf, models.BloodTypes...),
			}},
			{Name: "insuranceType", Step: 2, Rules: []Rule{
				Required("citizens.insuranceType.required"),
				OneOf(keyOneOf, models.Strings(models.InsuranceTypes)...),
			}},
			{Name: "allergies", Step: 2, Optional: true},
			{Name: "chronicConditions", Step: 2, Optional: true},
		},
		Defaults:    Values{"insuranceType": string(models.InsuranceBasic)},
		SuccessPath: "/citizens",
	}
}

// CardIssueSchema is the single-step card issuance form. Citizen fields are
// filled by selecting a citizen from the search results.
func CardIssueSchema() *Schema {
	return &Schema{
		Name:  CardIssueForm,
		Steps: []string{"cardManagement.issueNewCard"},
		Fields: []Field{
			{Name: "citizenId", Rules: []Rule{
				Required(keyRequired),
				IntRange(1, math.MaxInt32, keyNumber, keyMin, keyMax),
			}},
			{Name: "nationalId", Rules: []Rule{Required(keyRequired)}},
			{Name: "citizenName", Rules: []Rule{Required(keyRequired)}},
			{Name: "insuranceType", Rules: []Rule{
				Required(keyRequired),
				OneOf(keyOneOf, models.Strings(models.InsuranceTypes)...),
			}},
			{Name: "validityYears", Rules: []Rule{
				Required(keyRequired),
				IntRange(1, 10, keyNumber, keyMin, keyMax),
			}},
		},
		Defaults:    Values{"validityYears": "5"},
		SuccessPath: "/cards",
	}
}

// InstitutionSchema is the single-step institution form.
func InstitutionSchema() *Schema {
	return &Schema{
		Name:  InstitutionForm,
		Steps: []string{"institutions.details"},
		Fields: []Field{
			{Name: "name", Rules: []Rule{Required(keyRequired)}},
			{Name: "type", Rules: []Rule{
				Required(keyRequired),
				OneOf(keyOneOf, models.Strings(models.InstitutionTypes)...),
			}},
			{Name: "licenseNumber", Rules: []Rule{Required(keyRequired)}},
			{Name: "address", Rules: []Rule{Required(keyRequired)}},
			{Name: "phone", Rules: []Rule{Required(keyRequired), Phone(keyInvalidPhone)}},
			{Name: "email", Rules: []Rule{Required(keyRequired), Email(keyInvalidEmail)}},
			{Name: "contactPerson", Rules: []Rule{Required(keyRequired)}},
			{Name: "licenseExpiry", Rules: []Rule{Required(keyRequired), Date(keyInvalidDate)}},
			{Name: "description", Optional: true},
			{Name: "services", Optional: true, List: true},
		},
		SuccessPath: "/institutions",
	}
}

// SchemaFor returns the schema registered under name.
func SchemaFor(name string) (*Schema, bool) {
	switch name {
	case CitizenForm:
		return CitizenSchema(), true
	case CardIssueForm:
		return CardIssueSchema(), true
	case InstitutionForm:
		return InstitutionSchema(), true
	}
	return nil, false
}

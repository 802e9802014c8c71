package models

import (
	"time"

	"gorm.io/datatypes"
)

// Institution represents a partner institution (hospital, pharmacy, lab, ...)
type Institution struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	Name             string                      `gorm:"size:255;not null;index" json:"name"`
	Type             InstitutionType             `gorm:"size:30;not null" json:"type"`
	LicenseNumber    string                      `gorm:"size:50;not null;uniqueIndex" json:"licenseNumber"`
	Address          string                      `gorm:"type:text" json:"address"`
	Phone            string                      `gorm:"size:30" json:"phone"`
	Email            string                      `gorm:"size:255" json:"email"`
	Status           InstitutionStatus           `gorm:"size:20;not null" json:"status"`
	RegistrationDate time.Time                   `gorm:"type:date;not null" json:"registrationDate"`
	LicenseExpiry    time.Time                   `gorm:"type:date;not null" json:"licenseExpiry"`
	ContactPerson    string                      `gorm:"size:255" json:"contactPerson"`
	Description      string                      `gorm:"type:text" json:"description"`
	Services         datatypes.JSONSlice[string] `gorm:"type:json" json:"services"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
	IsActive         bool                        `gorm:"default:true" json:"-"`

	CardUsageHistory []InstitutionUsageEvent `gorm:"foreignKey:InstitutionID" json:"cardUsageHistory,omitempty"`
}

// TableName specifies the table name for Institution model
func (Institution) TableName() string {
	return "institutions"
}

// InstitutionUsageEvent records a card being used at an institution
type InstitutionUsageEvent struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	InstitutionID uint      `gorm:"not null;index" json:"-"`
	Date          time.Time `gorm:"type:date;not null" json:"date"`
	CitizenName   string    `gorm:"size:255" json:"citizenName"`
	Service       string    `gorm:"size:255" json:"service"`
	CardNumber    string    `gorm:"size:32" json:"cardNumber"`
}

// TableName specifies the table name for InstitutionUsageEvent model
func (InstitutionUsageEvent) TableName() string {
	return "institution_usage_events"
}

package models

import "time"

// Citizen represents the citizens table
type Citizen struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	NationalID        string        `gorm:"size:14;not null;uniqueIndex" json:"nationalId"`
	Name              string        `gorm:"size:255;not null;index" json:"name"`
	DateOfBirth       time.Time     `gorm:"type:date;not null" json:"dateOfBirth"`
	Gender            string        `gorm:"size:10;not null" json:"gender"`
	Address           string        `gorm:"type:text" json:"address"`
	Phone             string        `gorm:"size:30" json:"phone"`
	Email             string        `gorm:"size:255" json:"email"`
	CardStatus        CardStatus    `gorm:"size:20;default:'None'" json:"cardStatus"`
	InsuranceType     InsuranceType `gorm:"size:20;not null" json:"insuranceType"`
	EmergencyContact  string        `gorm:"size:255" json:"emergencyContact"`
	EmergencyPhone    string        `gorm:"size:30" json:"emergencyPhone"`
	BloodType         string        `gorm:"size:3" json:"bloodType"`
	Allergies         string        `gorm:"type:text" json:"allergies"`
	ChronicConditions string        `gorm:"type:text" json:"chronicConditions"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"lastUpdated"`

	CardHistory []CitizenCardEvent `gorm:"foreignKey:CitizenID" json:"cardHistory,omitempty"`
}

// TableName specifies the table name for Citizen model
func (Citizen) TableName() string {
	return "citizens"
}

// CitizenCardEvent is one entry of a citizen's card history
type CitizenCardEvent struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CitizenID uint      `gorm:"not null;index" json:"-"`
	Date      time.Time `gorm:"type:date;not null" json:"date"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
}

// TableName specifies the table name for CitizenCardEvent model
func (CitizenCardEvent) TableName() string {
	return "citizen_card_events"
}

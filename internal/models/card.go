package models

import "time"

// Card represents the cards table.
// CitizenName and NationalID are copies of the owning citizen's fields; readers
// resolve them against the citizen registry and the reconciliation worker
// rewrites stale copies.
type Card struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	CardNumber    string        `gorm:"size:32;not null;uniqueIndex" json:"cardNumber"`
	CitizenID     uint          `gorm:"not null;index" json:"citizenId"`
	CitizenName   string        `gorm:"size:255" json:"citizenName"`
	NationalID    string        `gorm:"size:14" json:"nationalId"`
	IssueDate     time.Time     `gorm:"type:date;not null" json:"issueDate"`
	ExpiryDate    time.Time     `gorm:"type:date;not null" json:"expiryDate"`
	Status        CardStatus    `gorm:"size:20;not null" json:"status"`
	InsuranceType InsuranceType `gorm:"size:20;not null" json:"insuranceType"`
	LastUsed      *time.Time    `gorm:"type:date" json:"lastUsed"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	UsageHistory []CardUsageEvent `gorm:"foreignKey:CardID" json:"usageHistory,omitempty"`
}

// TableName specifies the table name for Card model
func (Card) TableName() string {
	return "cards"
}

// CardUsageEvent is one entry of a card's usage history
type CardUsageEvent struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	CardID   uint      `gorm:"not null;index" json:"-"`
	Date     time.Time `gorm:"type:date;not null" json:"date"`
	Action   string    `gorm:"size:100;not null" json:"action"`
	Location string    `gorm:"size:255" json:"location"`
	Details  string    `gorm:"type:text" json:"details"`
}

// TableName specifies the table name for CardUsageEvent model
func (CardUsageEvent) TableName() string {
	return "card_usage_events"
}

package models

import "time"

// TerminalKey authenticates an NFC reader installed at an institution.
// Only the bcrypt hash of the key is stored.
type TerminalKey struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	InstitutionID uint       `gorm:"not null;index" json:"institutionId"`
	KeyHash       string     `gorm:"size:255;not null" json:"-"`
	Description   string     `gorm:"size:255" json:"description,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"isActive"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// TableName specifies the table name for TerminalKey model
func (TerminalKey) TableName() string {
	return "terminal_keys"
}

// TerminalKeyResponse is a terminal key as shown to administrators. Key is
// only populated in the response that created it.
type TerminalKeyResponse struct {
	TerminalKey
	Key string `json:"key,omitempty"`
}

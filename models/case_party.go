package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Party role constants
const (
	PartyRoleDemandante = "DEMANDANTE" // Plaintiff - initiates the legal action
	PartyRoleDemandado  = "DEMANDADO"  // Defendant - responds to the legal action
	PartyRoleOtro       = "OTRO"       // Any other procedural subject
)

// CaseParty represents a procedural subject (sujeto procesal) on a case, as
// reported by the judiciary source. The set is replaced on refresh whenever
// the source returns a non-empty party list.
type CaseParty struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Case relationship
	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Role string `gorm:"size:20;not null" json:"role"`
	Name string `gorm:"not null" json:"name"`

	DocumentNumber *string `json:"document_number,omitempty"`
}

// BeforeCreate hook to generate UUID
func (cp *CaseParty) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseParty model
func (CaseParty) TableName() string {
	return "case_parties"
}

// GetRoleDisplayName returns the display name for the party role
func (cp *CaseParty) GetRoleDisplayName() string {
	switch cp.Role {
	case PartyRoleDemandante:
		return "Demandante"
	case PartyRoleDemandado:
		return "Demandado"
	}
	return "Sujeto Procesal"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusOpen   = "OPEN"
	CaseStatusOnHold = "ON_HOLD"
	CaseStatusClosed = "CLOSED"
)

// Case represents a legal case tracked on behalf of a lawyer. The full CRUD
// lifecycle lives outside the monitoring core; this model carries what the
// pipeline needs: the filing number used against the judiciary sources, the
// despacho, and the assigned lawyer to notify.
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Case identification
	CaseNumber   string  `gorm:"not null;uniqueIndex" json:"case_number"`
	Title        *string `json:"title,omitempty"`
	FilingNumber *string `gorm:"size:100;uniqueIndex" json:"filing_number,omitempty"` // Radicado from the judiciary

	// Despacho (court office) handling the case, as reported by the source
	CourtOffice *string `json:"court_office,omitempty"`

	// Status and lifecycle
	Status   string     `gorm:"not null;default:OPEN;index" json:"status"`
	OpenedAt time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`

	// Assignment
	AssignedToID *string `gorm:"type:uuid" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	// Relationships
	Parties []CaseParty `gorm:"foreignKey:CaseID" json:"parties,omitempty"`
	Acts    []CaseAct   `gorm:"foreignKey:CaseID" json:"acts,omitempty"`
}

// BeforeCreate hook to generate UUID and set OpenedAt
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.OpenedAt.IsZero() {
		c.OpenedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsOpen checks if the case is open
func (c *Case) IsOpen() bool {
	return c.Status == CaseStatusOpen
}

// IsClosed checks if the case is closed
func (c *Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	return status == CaseStatusOpen || status == CaseStatusOnHold || status == CaseStatusClosed
}

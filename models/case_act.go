package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Act classification constants
const (
	ActClassificationPerentorio = "PERENTORIO" // Starts a binding countdown with legal consequences
	ActClassificationTramite    = "TRAMITE"    // Routine procedural step, no party-facing deadline
	ActClassificationPendiente  = "PENDIENTE"  // Unrecognized/ambiguous, needs manual review
)

// CaseAct represents a procedural act (actuacion) observed on a monitored case.
// Acts are upserted by (case_id, uniq_key) so repeated fetches never duplicate.
type CaseAct struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"type:uuid;not null;uniqueIndex:idx_case_act_uniq_key;index" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	// UniqKey is the external source's natural key, or a content hash when the
	// source provides none. Never mutated after insert.
	UniqKey string `gorm:"size:128;not null;uniqueIndex:idx_case_act_uniq_key" json:"uniq_key"`
	Source  string `gorm:"size:20" json:"source"`

	OccurredOn  time.Time `gorm:"index" json:"occurred_on"`
	Type        string    `json:"type"`
	Annotation  string    `gorm:"type:text" json:"annotation"`
	Description string    `gorm:"type:text" json:"description"`
	DocumentURL *string   `json:"document_url,omitempty"`

	// Classification (set at most once automatically, monotonic)
	Classification           *string    `gorm:"size:20" json:"classification,omitempty"`
	ClassificationConfidence *float64   `json:"classification_confidence,omitempty"`
	ClassificationReason     *string    `json:"classification_reason,omitempty"`
	DeadlineStart            *time.Time `json:"deadline_start,omitempty"`
	DeadlineEnd              *time.Time `gorm:"index" json:"deadline_end,omitempty"`
	ClassifiedAt             *time.Time `json:"classified_at,omitempty"`

	Notified       bool       `gorm:"not null;default:false" json:"notified"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *CaseAct) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseAct model
func (CaseAct) TableName() string {
	return "case_acts"
}

// IsClassified reports whether the act carries any classification
func (a *CaseAct) IsClassified() bool {
	return a.Classification != nil
}

// IsPerentorio reports whether the act imposes a binding deadline
func (a *CaseAct) IsPerentorio() bool {
	return a.Classification != nil && *a.Classification == ActClassificationPerentorio
}

// HasDeadlineWindow reports whether a deadline window was extracted
func (a *CaseAct) HasDeadlineWindow() bool {
	return a.DeadlineStart != nil && a.DeadlineEnd != nil
}

// IsValidActClassification checks if the classification value is valid
func IsValidActClassification(classification string) bool {
	return classification == ActClassificationPerentorio ||
		classification == ActClassificationTramite ||
		classification == ActClassificationPendiente
}

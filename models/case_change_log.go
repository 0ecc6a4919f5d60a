package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Change type constants
const (
	ChangeTypeNewAct       = "NEW_ACT"
	ChangeTypePartyChange  = "PARTY_CHANGE"
	ChangeTypeStatusChange = "STATUS_CHANGE"
	ChangeTypeNewDocument  = "NEW_DOCUMENT"
)

// CaseChangeLogEntry is the append-only audit trail of everything the diff
// engine detected on a monitored case. Entries are never updated or deleted
// by the monitoring pipeline.
type CaseChangeLogEntry struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Source     string `gorm:"size:20" json:"source"`
	ChangeType string `gorm:"size:20;not null;index" json:"change_type"`

	OldValue string `gorm:"type:text" json:"old_value"`
	NewValue string `gorm:"type:text" json:"new_value"`

	// ActID links NEW_ACT entries to the act row they describe
	ActID *string  `gorm:"type:uuid" json:"act_id,omitempty"`
	Act   *CaseAct `gorm:"foreignKey:ActID" json:"act,omitempty"`

	DetectedAt time.Time `gorm:"not null;index" json:"detected_at"`
}

// BeforeCreate hook to generate UUID and stamp detection time
func (e *CaseChangeLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.DetectedAt.IsZero() {
		e.DetectedAt = time.Now().UTC()
	}
	return nil
}

// TableName specifies the table name for CaseChangeLogEntry model
func (CaseChangeLogEntry) TableName() string {
	return "case_change_log_entries"
}

// IsValidChangeType checks if the change type is valid
func IsValidChangeType(changeType string) bool {
	switch changeType {
	case ChangeTypeNewAct, ChangeTypePartyChange, ChangeTypeStatusChange, ChangeTypeNewDocument:
		return true
	}
	return false
}

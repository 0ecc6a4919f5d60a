package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Monitoring status constants
const (
	MonitoringStatusActive  = "ACTIVE"
	MonitoringStatusPaused  = "PAUSED"
	MonitoringStatusStopped = "STOPPED"
)

// Judiciary source identifiers
const (
	SourceRamaJudicial = "ramajud"
	SourceTyba         = "tyba"
)

// MonitoredCase holds the check cadence and last known state for a case
// tracked against the external judiciary sources. One row per case.
type MonitoredCase struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Case relationship (unique - one monitoring row per case)
	CaseID string `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	// CheckFrequency is the minimum interval between checks, in seconds.
	// Tuned externally (e.g. a case nearing a deadline is checked more often).
	CheckFrequency int        `gorm:"not null;default:86400" json:"check_frequency"`
	LastCheck      *time.Time `json:"last_check,omitempty"`

	Status  string     `gorm:"not null;default:ACTIVE;index" json:"status"`
	Sources StringList `gorm:"type:text" json:"sources"`

	// Last known external state, used to short-circuit unchanged fetches
	LastDataHash string `json:"last_data_hash"`
	LastStatus   string `json:"last_status"`
}

// BeforeCreate hook to generate UUID
func (m *MonitoredCase) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for MonitoredCase model
func (MonitoredCase) TableName() string {
	return "monitored_cases"
}

// IsDue reports whether the case should be checked at the given time.
// A case that has never been checked is always due.
func (m *MonitoredCase) IsDue(now time.Time) bool {
	if m.Status != MonitoringStatusActive {
		return false
	}
	if m.LastCheck == nil {
		return true
	}
	return now.Sub(*m.LastCheck) >= time.Duration(m.CheckFrequency)*time.Second
}

// IsActive checks if monitoring is active for this case
func (m *MonitoredCase) IsActive() bool {
	return m.Status == MonitoringStatusActive
}

// IsValidMonitoringStatus checks if the status is valid
func IsValidMonitoringStatus(status string) bool {
	return status == MonitoringStatusActive || status == MonitoringStatusPaused || status == MonitoringStatusStopped
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationTypeJudicialUpdate   = "JUDICIAL_UPDATE"
	NotificationTypeCaseUpdate       = "CASE_UPDATE"
	NotificationTypeDeadlineReminder = "DEADLINE_REMINDER"
	NotificationTypeSystem           = "SYSTEM"
)

// Notification is an in-app alert produced by the dispatcher. Once created it
// is only mutated to set ReadAt/SentAt.
type Notification struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Targeting
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	// Context
	CaseID           *string             `gorm:"type:uuid" json:"case_id,omitempty"`
	Case             *Case               `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	ActID            *string             `gorm:"type:uuid" json:"act_id,omitempty"`
	ChangeLogEntryID *string             `gorm:"type:uuid" json:"change_log_entry_id,omitempty"`
	ChangeLogEntry   *CaseChangeLogEntry `gorm:"foreignKey:ChangeLogEntryID" json:"-"`

	// Content
	Type     string  `gorm:"not null" json:"type"`
	Priority int     `gorm:"not null;default:0;index" json:"priority"`
	Title    string  `gorm:"not null" json:"title"`
	Message  string  `gorm:"type:text" json:"message"`
	Metadata JSONMap `gorm:"type:text" json:"metadata,omitempty"`
	LinkURL  string  `json:"link_url,omitempty"` // e.g., "/cases/{case_id}"

	// Delivery tracking
	ReadAt *time.Time `json:"read_at,omitempty"`
	SentAt *time.Time `json:"sent_at,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

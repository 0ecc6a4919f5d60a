package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a lawyer (or staff member) who owns notification rules and receives
// alerts. Authentication and account management live outside this core.
type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Language string `gorm:"size:5;default:es" json:"language"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Rules []NotificationRule `gorm:"foreignKey:UserID" json:"rules,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

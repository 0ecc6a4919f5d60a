package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rule type constants
const (
	RuleTypeKeyword  = "KEYWORD"
	RuleTypeParty    = "PARTY"
	RuleTypeCourt    = "COURT"
	RuleTypeDeadline = "DEADLINE"
	RuleTypeActType  = "ACT_TYPE"
)

// Priority bounds for rule boosts and notification priorities
const (
	MinPriorityBoost = 0
	MaxPriorityBoost = 10
)

// NotificationRule is a user-owned condition evaluated against every detected
// change. RuleValue carries a JSON payload whose shape depends on RuleType;
// the rules package decodes it into a typed payload before matching.
type NotificationRule struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	RuleType  string `gorm:"size:20;not null" json:"rule_type"`
	RuleValue string `gorm:"type:text" json:"rule_value"`

	PriorityBoost int  `gorm:"not null;default:0" json:"priority_boost"`
	Enabled       bool `gorm:"not null;default:true" json:"enabled"`
}

// BeforeCreate hook to generate UUID
func (r *NotificationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for NotificationRule model
func (NotificationRule) TableName() string {
	return "notification_rules"
}

// IsValidRuleType checks if the rule type is valid
func IsValidRuleType(ruleType string) bool {
	switch ruleType {
	case RuleTypeKeyword, RuleTypeParty, RuleTypeCourt, RuleTypeDeadline, RuleTypeActType:
		return true
	}
	return false
}

// IsValidPriorityBoost checks if the boost is within bounds
func IsValidPriorityBoost(boost int) bool {
	return boost >= MinPriorityBoost && boost <= MaxPriorityBoost
}

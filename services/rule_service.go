package services

import (
	"errors"
	"fmt"

	"case_radar_go/models"
	"case_radar_go/services/rules"

	"gorm.io/gorm"
)

// RuleService manages a user's notification rules. Every mutation invalidates
// the rule engine's cached set for that user; toggling a rule takes effect on
// the next evaluation, never retroactively.
type RuleService struct {
	DB    *gorm.DB
	Cache *rules.Cache
}

func NewRuleService(db *gorm.DB, cache *rules.Cache) *RuleService {
	return &RuleService{DB: db, Cache: cache}
}

// ListRules returns all rules owned by the user
func (s *RuleService) ListRules(userID string) ([]models.NotificationRule, error) {
	var ruleList []models.NotificationRule
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&ruleList).Error
	return ruleList, err
}

// GetRule returns one rule, scoped to the owning user
func (s *RuleService) GetRule(ruleID, userID string) (*models.NotificationRule, error) {
	var rule models.NotificationRule
	err := s.DB.Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// CreateRule validates and persists a new rule
func (s *RuleService) CreateRule(rule *models.NotificationRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.DB.Create(rule).Error; err != nil {
		return err
	}
	s.Cache.Invalidate(rule.UserID)
	return nil
}

// UpdateRule validates and saves changes to an existing rule, scoped to the
// owning user
func (s *RuleService) UpdateRule(rule *models.NotificationRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	var existing models.NotificationRule
	if err := s.DB.Where("id = ? AND user_id = ?", rule.ID, rule.UserID).First(&existing).Error; err != nil {
		return err
	}

	existing.RuleType = rule.RuleType
	existing.RuleValue = rule.RuleValue
	existing.PriorityBoost = rule.PriorityBoost
	existing.Enabled = rule.Enabled
	if err := s.DB.Save(&existing).Error; err != nil {
		return err
	}
	s.Cache.Invalidate(rule.UserID)
	return nil
}

// SetEnabled toggles a rule on or off
func (s *RuleService) SetEnabled(ruleID, userID string, enabled bool) error {
	result := s.DB.Model(&models.NotificationRule{}).
		Where("id = ? AND user_id = ?", ruleID, userID).
		Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.Cache.Invalidate(userID)
	return nil
}

// DeleteRule removes a rule, scoped to the owning user
func (s *RuleService) DeleteRule(ruleID, userID string) error {
	result := s.DB.Where("id = ? AND user_id = ?", ruleID, userID).
		Delete(&models.NotificationRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.Cache.Invalidate(userID)
	return nil
}

func validateRule(rule *models.NotificationRule) error {
	if rule.UserID == "" {
		return errors.New("rule must have an owner")
	}
	if !models.IsValidRuleType(rule.RuleType) {
		return fmt.Errorf("invalid rule type: %s", rule.RuleType)
	}
	if !models.IsValidPriorityBoost(rule.PriorityBoost) {
		return fmt.Errorf("priority boost must be between %d and %d", models.MinPriorityBoost, models.MaxPriorityBoost)
	}
	return rules.ValidateRuleValue(rule.RuleType, rule.RuleValue)
}

package rules

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"case_radar_go/models"

	"gorm.io/gorm"
)

// Typed payloads per rule type. RuleValue arrives as JSON; decoding into these
// (instead of poking at a generic map) keeps malformed payloads contained to a
// single skipped rule.
type KeywordPayload struct {
	Keywords []string `json:"keywords"`
}

type PartyPayload struct {
	Names []string `json:"names"`
}

type CourtPayload struct {
	Offices []string `json:"offices"`
}

type DeadlinePayload struct {
	// Extra tokens to match besides the built-in deadline vocabulary
	Tokens []string `json:"tokens,omitempty"`
}

type ActTypePayload struct {
	Types []string `json:"types"`
}

// deadlineTokens are the built-in deadline-indicating words checked by
// DEADLINE rules, lowercased.
var deadlineTokens = []string{"término", "termino", "plazo", "traslado", "vence", "vencimiento"}

// ChangeContext bundles the change-log entry and (when the change is a new
// act) the act it describes, for rule evaluation.
type ChangeContext struct {
	Entry *models.CaseChangeLogEntry
	Act   *models.CaseAct
}

// Payload serializes the change for keyword-style matching
func (c *ChangeContext) Payload() string {
	var b strings.Builder
	if c.Entry != nil {
		b.WriteString(c.Entry.ChangeType)
		b.WriteString(" ")
		b.WriteString(c.Entry.OldValue)
		b.WriteString(" ")
		b.WriteString(c.Entry.NewValue)
	}
	if c.Act != nil {
		b.WriteString(" ")
		b.WriteString(c.Act.Type)
		b.WriteString(" ")
		b.WriteString(c.Act.Annotation)
		b.WriteString(" ")
		b.WriteString(c.Act.Description)
	}
	return b.String()
}

// Matches evaluates a single rule against a case and a detected change.
// A disabled rule never matches. A malformed payload returns an error; the
// caller skips that rule and keeps evaluating the rest.
func Matches(rule *models.NotificationRule, kase *models.Case, change *ChangeContext) (bool, error) {
	if !rule.Enabled {
		return false, nil
	}

	switch rule.RuleType {
	case models.RuleTypeKeyword:
		var payload KeywordPayload
		if err := decodePayload(rule, &payload); err != nil {
			return false, err
		}
		haystack := strings.ToLower(change.Payload())
		for _, kw := range payload.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(kw)) {
				return true, nil
			}
		}
		return false, nil

	case models.RuleTypeParty:
		var payload PartyPayload
		if err := decodePayload(rule, &payload); err != nil {
			return false, err
		}
		for _, configured := range payload.Names {
			if configured == "" {
				continue
			}
			needle := strings.ToLower(configured)
			for _, party := range kase.Parties {
				if strings.Contains(strings.ToLower(party.Name), needle) {
					return true, nil
				}
			}
		}
		return false, nil

	case models.RuleTypeCourt:
		var payload CourtPayload
		if err := decodePayload(rule, &payload); err != nil {
			return false, err
		}
		if kase.CourtOffice == nil {
			return false, nil
		}
		for _, office := range payload.Offices {
			if strings.EqualFold(office, *kase.CourtOffice) {
				return true, nil
			}
		}
		return false, nil

	case models.RuleTypeDeadline:
		var payload DeadlinePayload
		if err := decodePayload(rule, &payload); err != nil {
			return false, err
		}
		if change.Act != nil && change.Act.DeadlineEnd != nil {
			return true, nil
		}
		haystack := strings.ToLower(change.Payload())
		for _, token := range append(deadlineTokens, payload.Tokens...) {
			if token != "" && strings.Contains(haystack, strings.ToLower(token)) {
				return true, nil
			}
		}
		return false, nil

	case models.RuleTypeActType:
		var payload ActTypePayload
		if err := decodePayload(rule, &payload); err != nil {
			return false, err
		}
		if change.Act == nil {
			return false, nil
		}
		haystack := strings.ToLower(change.Act.Type + " " + change.Act.Annotation)
		for _, token := range payload.Types {
			if token != "" && strings.Contains(haystack, strings.ToLower(token)) {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("unknown rule type: %s", rule.RuleType)
	}
}

// decodePayload decodes the rule's JSON value into the typed payload for its
// rule type. An empty value decodes to the payload's zero value.
func decodePayload(rule *models.NotificationRule, out interface{}) error {
	if strings.TrimSpace(rule.RuleValue) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(rule.RuleValue), out); err != nil {
		return fmt.Errorf("malformed rule payload for rule %s: %w", rule.ID, err)
	}
	return nil
}

// ValidateRuleValue checks that a rule's JSON payload decodes for its type.
// Used by the rule management API before persisting.
func ValidateRuleValue(ruleType, ruleValue string) error {
	rule := &models.NotificationRule{RuleType: ruleType, RuleValue: ruleValue}
	switch ruleType {
	case models.RuleTypeKeyword:
		return decodePayload(rule, &KeywordPayload{})
	case models.RuleTypeParty:
		return decodePayload(rule, &PartyPayload{})
	case models.RuleTypeCourt:
		return decodePayload(rule, &CourtPayload{})
	case models.RuleTypeDeadline:
		return decodePayload(rule, &DeadlinePayload{})
	case models.RuleTypeActType:
		return decodePayload(rule, &ActTypePayload{})
	default:
		return fmt.Errorf("unknown rule type: %s", ruleType)
	}
}

// Engine evaluates user rules against detected changes. Rule sets are cached
// per user with a short TTL so a cycle touching many cases does not re-query
// the same user's rules over and over.
type Engine struct {
	db    *gorm.DB
	cache *Cache
}

// NewEngine creates an engine with the given rule-set cache
func NewEngine(db *gorm.DB, cache *Cache) *Engine {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	return &Engine{db: db, cache: cache}
}

// RulesForUser returns the user's enabled rules, from cache when fresh
func (e *Engine) RulesForUser(userID string) ([]models.NotificationRule, error) {
	if cached, ok := e.cache.Get(userID); ok {
		return cached, nil
	}

	var ruleList []models.NotificationRule
	err := e.db.Where("user_id = ? AND enabled = ?", userID, true).Find(&ruleList).Error
	if err != nil {
		return nil, err
	}

	e.cache.Set(userID, ruleList)
	return ruleList, nil
}

// Score returns the priority for a change: the maximum boost over all matching
// rules, or baseline when none match. A rule that fails to evaluate is skipped
// and never aborts the rest.
func (e *Engine) Score(kase *models.Case, change *ChangeContext, ruleList []models.NotificationRule, baseline int) int {
	score := baseline
	for i := range ruleList {
		rule := &ruleList[i]
		matched, err := Matches(rule, kase, change)
		if err != nil {
			log.Printf("[RULES] Skipping rule %s for user %s: %v", rule.ID, rule.UserID, err)
			continue
		}
		if matched && rule.PriorityBoost > score {
			score = rule.PriorityBoost
		}
	}
	return score
}

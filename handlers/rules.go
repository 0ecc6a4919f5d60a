package handlers

import (
	"errors"
	"net/http"

	"case_radar_go/middleware"
	"case_radar_go/models"
	"case_radar_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RuleHandlers exposes CRUD for the current user's notification rules. The
// shared cache keeps the rule engine's view consistent after mutations.
type RuleHandlers struct {
	Service *services.RuleService
}

func NewRuleHandlers(service *services.RuleService) *RuleHandlers {
	return &RuleHandlers{Service: service}
}

type ruleRequest struct {
	RuleType      string `json:"rule_type"`
	RuleValue     string `json:"rule_value"`
	PriorityBoost int    `json:"priority_boost"`
	Enabled       *bool  `json:"enabled"`
}

func (h *RuleHandlers) ListRules(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	ruleList, err := h.Service.ListRules(user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error loading rules"})
	}
	return c.JSON(http.StatusOK, ruleList)
}

func (h *RuleHandlers) GetRule(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	rule, err := h.Service.GetRule(c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Rule not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error loading rule"})
	}
	return c.JSON(http.StatusOK, rule)
}

func (h *RuleHandlers) CreateRule(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req ruleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	rule := models.NotificationRule{
		UserID:        user.ID,
		RuleType:      req.RuleType,
		RuleValue:     req.RuleValue,
		PriorityBoost: req.PriorityBoost,
		Enabled:       true,
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.Service.CreateRule(&rule); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rule)
}

func (h *RuleHandlers) UpdateRule(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req ruleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	rule := models.NotificationRule{
		ID:            c.Param("id"),
		UserID:        user.ID,
		RuleType:      req.RuleType,
		RuleValue:     req.RuleValue,
		PriorityBoost: req.PriorityBoost,
		Enabled:       true,
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.Service.UpdateRule(&rule); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Rule not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RuleHandlers) ToggleRule(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := h.Service.SetEnabled(c.Param("id"), user.ID, req.Enabled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Rule not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error updating rule"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RuleHandlers) DeleteRule(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	if err := h.Service.DeleteRule(c.Param("id"), user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Rule not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error deleting rule"})
	}
	return c.NoContent(http.StatusNoContent)
}

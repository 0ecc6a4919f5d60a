package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"case_radar_go/middleware"
	"case_radar_go/models"
	"case_radar_go/services"
	"case_radar_go/services/rules"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRuleHandlerTest(t *testing.T) (*RuleHandlers, *models.User, *echo.Echo) {
	dsn := "file:rule_handler_test_" + uuid.New().String() + "?mode=memory&cache=shared"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}, &models.NotificationRule{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	user := &models.User{Name: "Ana", Email: "ana@example.com", IsActive: true}
	if err := database.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	h := NewRuleHandlers(services.NewRuleService(database, rules.NewCache(rules.DefaultTTL)))
	return h, user, echo.New()
}

func newRuleContext(e *echo.Echo, user *models.User, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyUser, user)
	return c, rec
}

func TestRuleHandlersCreate(t *testing.T) {
	t.Run("Valid rule is created", func(t *testing.T) {
		h, user, e := setupRuleHandlerTest(t)
		c, rec := newRuleContext(e, user, http.MethodPost,
			`{"rule_type":"KEYWORD","rule_value":"{\"keywords\":[\"tutela\"]}","priority_boost":5}`)

		assert.NoError(t, h.CreateRule(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created models.NotificationRule
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, user.ID, created.UserID)
		assert.True(t, created.Enabled)
	})

	t.Run("Invalid rule type is rejected", func(t *testing.T) {
		h, user, e := setupRuleHandlerTest(t)
		c, rec := newRuleContext(e, user, http.MethodPost,
			`{"rule_type":"BOGUS","priority_boost":5}`)

		assert.NoError(t, h.CreateRule(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Malformed payload is rejected", func(t *testing.T) {
		h, user, e := setupRuleHandlerTest(t)
		c, rec := newRuleContext(e, user, http.MethodPost,
			`{"rule_type":"KEYWORD","rule_value":"{broken","priority_boost":5}`)

		assert.NoError(t, h.CreateRule(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRuleHandlersListAndToggle(t *testing.T) {
	h, user, e := setupRuleHandlerTest(t)

	rule := &models.NotificationRule{
		UserID:        user.ID,
		RuleType:      models.RuleTypeDeadline,
		PriorityBoost: 9,
		Enabled:       true,
	}
	assert.NoError(t, h.Service.CreateRule(rule))

	t.Run("List returns the user's rules", func(t *testing.T) {
		c, rec := newRuleContext(e, user, http.MethodGet, "")

		assert.NoError(t, h.ListRules(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var listed []models.NotificationRule
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		assert.Len(t, listed, 1)
	})

	t.Run("Toggle disables the rule", func(t *testing.T) {
		c, rec := newRuleContext(e, user, http.MethodPut, `{"enabled":false}`)
		c.SetParamNames("id")
		c.SetParamValues(rule.ID)

		assert.NoError(t, h.ToggleRule(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		reloaded, err := h.Service.GetRule(rule.ID, user.ID)
		assert.NoError(t, err)
		assert.False(t, reloaded.Enabled)
	})

	t.Run("Toggle on an unknown rule is not found", func(t *testing.T) {
		c, rec := newRuleContext(e, user, http.MethodPut, `{"enabled":false}`)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		assert.NoError(t, h.ToggleRule(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Delete removes the rule", func(t *testing.T) {
		c, rec := newRuleContext(e, user, http.MethodDelete, "")
		c.SetParamNames("id")
		c.SetParamValues(rule.ID)

		assert.NoError(t, h.DeleteRule(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"case_radar_go/db"
	"case_radar_go/middleware"
	"case_radar_go/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupNotificationHandlerTest(t *testing.T) (*models.User, *echo.Echo) {
	dsn := "file:notification_handler_test_" + uuid.New().String() + "?mode=memory&cache=shared"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}, &models.Notification{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	previous := db.DB
	db.DB = database
	t.Cleanup(func() { db.DB = previous })

	user := &models.User{Name: "Ana", Email: "ana@example.com", IsActive: true}
	if err := database.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user, echo.New()
}

func newNotificationContext(e *echo.Echo, user *models.User, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyUser, user)
	return c, rec
}

func TestGetUnreadNotificationsHandler(t *testing.T) {
	user, e := setupNotificationHandlerTest(t)

	now := time.Now()
	read := &models.Notification{UserID: user.ID, Type: models.NotificationTypeSystem, Title: "leída", ReadAt: &now}
	unread := &models.Notification{UserID: user.ID, Type: models.NotificationTypeJudicialUpdate, Priority: 9, Title: "pendiente"}
	assert.NoError(t, db.DB.Create(read).Error)
	assert.NoError(t, db.DB.Create(unread).Error)

	t.Run("Returns only unread notifications", func(t *testing.T) {
		c, rec := newNotificationContext(e, user, "/api/notifications/unread")

		assert.NoError(t, GetUnreadNotificationsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var listed []models.Notification
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		if assert.Len(t, listed, 1) {
			assert.Equal(t, "pendiente", listed[0].Title)
		}
	})

	t.Run("Honors the limit query param", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			assert.NoError(t, db.DB.Create(&models.Notification{
				UserID: user.ID, Type: models.NotificationTypeSystem, Title: "extra",
			}).Error)
		}

		c, rec := newNotificationContext(e, user, "/api/notifications/unread?limit=2")

		assert.NoError(t, GetUnreadNotificationsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var listed []models.Notification
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		assert.Len(t, listed, 2)
	})
}

func TestGetUnreadCountHandler(t *testing.T) {
	user, e := setupNotificationHandlerTest(t)

	assert.NoError(t, db.DB.Create(&models.Notification{
		UserID: user.ID, Type: models.NotificationTypeJudicialUpdate, Title: "pendiente",
	}).Error)

	c, rec := newNotificationContext(e, user, "/api/notifications/count")

	assert.NoError(t, GetUnreadCountHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body["unread"])
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"case_radar_go/db"
	"case_radar_go/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	dsn := "file:auth_test_" + uuid.New().String() + "?mode=memory&cache=shared"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return database
}

func TestRequireUser(t *testing.T) {
	database := setupAuthTestDB(t)
	previous := db.DB
	db.DB = database
	defer func() { db.DB = previous }()

	active := &models.User{Name: "Ana", Email: "ana@example.com", IsActive: true}
	assert.NoError(t, database.Create(active).Error)
	inactive := &models.User{Name: "Ben", Email: "ben@example.com", IsActive: false}
	assert.NoError(t, database.Create(inactive).Error)

	e := echo.New()
	handler := RequireUser()(func(c echo.Context) error {
		user := GetCurrentUser(c)
		return c.String(http.StatusOK, user.Email)
	})

	doRequest := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if userID != "" {
			req.Header.Set(UserIDHeader, userID)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		_ = handler(c)
		return rec
	}

	t.Run("Active user passes", func(t *testing.T) {
		rec := doRequest(active.ID)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ana@example.com", rec.Body.String())
	})

	t.Run("Missing header is unauthorized", func(t *testing.T) {
		rec := doRequest("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Unknown user is unauthorized", func(t *testing.T) {
		rec := doRequest("nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Inactive user is unauthorized", func(t *testing.T) {
		rec := doRequest(inactive.ID)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

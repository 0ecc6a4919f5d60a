package middleware

import (
	"net/http"

	"case_radar_go/db"
	"case_radar_go/models"

	"github.com/labstack/echo/v4"
)

const (
	// UserIDHeader carries the authenticated user id, set by the upstream
	// auth layer. Authentication itself lives outside this service.
	UserIDHeader = "X-User-ID"

	ContextKeyUser = "current_user"
)

// RequireUser resolves the authenticated user from the request and stores it
// in the echo context. Requests without a resolvable active user are rejected.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(UserIDHeader)
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing user identity"})
			}

			var user models.User
			if err := db.DB.First(&user, "id = ? AND is_active = ?", userID, true).Error; err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
			}

			c.Set(ContextKeyUser, &user)
			return next(c)
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

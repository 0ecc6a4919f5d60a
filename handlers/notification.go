package handlers

import (
	"net/http"
	"strconv"

	"case_radar_go/db"
	"case_radar_go/middleware"
	"case_radar_go/services"

	"github.com/labstack/echo/v4"
)

// GetNotificationsHandler lists the current user's notifications ordered by
// priority, then recency
func GetNotificationsHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	service := services.NewNotificationService(db.DB)
	notifications, err := service.GetNotifications(user.ID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error loading notifications"})
	}

	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadNotificationsHandler lists the user's unread notifications (the
// short list a notification bell shows)
func GetUnreadNotificationsHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	limit := 5
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	service := services.NewNotificationService(db.DB)
	notifications, err := service.GetUnreadNotifications(user.ID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error loading notifications"})
	}

	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCountHandler returns the user's unread notification count
func GetUnreadCountHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	service := services.NewNotificationService(db.DB)
	count, err := service.GetUnreadCount(user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error counting notifications"})
	}

	return c.JSON(http.StatusOK, map[string]int64{"unread": count})
}

// MarkNotificationReadHandler marks one of the user's notifications as read
func MarkNotificationReadHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	notificationID := c.Param("id")

	service := services.NewNotificationService(db.DB)
	if err := service.MarkAsRead(notificationID, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error marking as read"})
	}

	return c.NoContent(http.StatusNoContent)
}

// MarkAllNotificationsReadHandler marks all the user's notifications as read
func MarkAllNotificationsReadHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	service := services.NewNotificationService(db.DB)
	if err := service.MarkAllAsRead(user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error marking all as read"})
	}

	return c.NoContent(http.StatusNoContent)
}

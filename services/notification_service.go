package services

import (
	"time"

	"case_radar_go/models"

	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// GetNotifications lists a user's notifications, most urgent and newest first
func (s *NotificationService) GetNotifications(userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []models.Notification
	err := s.DB.Where("user_id = ?", userID).
		Order("priority DESC, created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// GetUnreadNotifications lists a user's unread notifications
func (s *NotificationService) GetUnreadNotifications(userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 5
	}
	var notifications []models.Notification
	err := s.DB.Where("user_id = ? AND read_at IS NULL", userID).
		Order("priority DESC, created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) MarkAsRead(notificationID, userID string) error {
	now := time.Now()
	// Ensure the notification belongs to the user
	return s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", now).Error
}

func (s *NotificationService) MarkAllAsRead(userID string) error {
	now := time.Now()
	return s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
}

func (s *NotificationService) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) CreateNotification(notification *models.Notification) error {
	return s.DB.Create(notification).Error
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const pushTimeout = 10 * time.Second

type NotificationService struct {
	db   *gorm.DB
	push Pusher
	log  logrus.FieldLogger
}

// NewNotificationService wires persistence and push. push may be nil.
func NewNotificationService(db *gorm.DB, push Pusher, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{db: db, push: push, log: log}
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

// Notify stores a notification for userID and pushes it to their device in
// the background when a token is registered.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) (*models.Notification, error) {
	notif := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}

	var pushData map[string]string
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err == nil {
			meta := string(data)
			notif.Metadata = &meta
		}
		pushData = make(map[string]string, len(metadata)+1)
		for k, v := range metadata {
			pushData[k] = fmt.Sprintf("%v", v)
		}
		pushData["type"] = notifType
	}

	db := s.db.WithContext(ctx)
	if err := db.Create(&notif).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if s.push != nil {
		var user models.User
		if err := db.Select("fcm_token").Where("id = ?", userID).First(&user).Error; err == nil && user.FCMToken != "" {
			go s.send(user.FCMToken, userID, title, body, pushData)
		}
	}
	return &notif, nil
}

func (s *NotificationService) send(token string, userID uuid.UUID, title, body string, data map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := s.push.Send(ctx, token, title, body, data); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("FCM: failed to send push")
	}
}

// NotifyMany sends the same notification to each of userIDs except exclude.
// Individual failures are logged and skipped.
func (s *NotificationService) NotifyMany(ctx context.Context, userIDs []uuid.UUID, exclude uuid.UUID, notifType, title, body string, metadata map[string]interface{}) {
	for _, id := range userIDs {
		if id == exclude {
			continue
		}
		if _, err := s.Notify(ctx, id, notifType, title, body, metadata); err != nil {
			s.log.WithError(err).WithField("user_id", id).Warn("failed to create notification")
		}
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page Page) (*NotificationPage, error) {
	db := s.db.WithContext(ctx)
	out := &NotificationPage{Notifications: []models.Notification{}, Page: page.Page, Limit: page.Limit}

	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&out.Notifications).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&out.Total).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if err := db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&out.Unread).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.KeyNotificationMissing)
	}
	return nil
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, apperr.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

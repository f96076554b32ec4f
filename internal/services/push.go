package services

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Pusher delivers a push message to one device.
type Pusher interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// PushService sends push notifications via Firebase Cloud Messaging
type PushService struct {
	client *messaging.Client
}

// NewPushService initializes Firebase messaging. Without a service account,
// or if Firebase cannot be initialized, it returns a disabled service whose
// Send is a no-op.
func NewPushService(ctx context.Context, serviceAccountPath string, log logrus.FieldLogger) *PushService {
	if serviceAccountPath == "" {
		log.Info("FCM: no service account configured, push notifications disabled")
		return &PushService{}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.WithError(err).Warn("FCM: failed to initialize Firebase app")
		return &PushService{}
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.WithError(err).Warn("FCM: failed to get messaging client")
		return &PushService{}
	}

	log.Info("FCM: push notifications enabled")
	return &PushService{client: client}
}

func (p *PushService) Enabled() bool {
	return p != nil && p.client != nil
}

func (p *PushService) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	if !p.Enabled() || deviceToken == "" {
		return nil
	}

	msg := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{Priority: "high"},
	}
	if data != nil {
		msg.Data = data
	}

	_, err := p.client.Send(ctx, msg)
	return err
}

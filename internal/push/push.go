package push

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/lealre/cinematch-backend/internal/logx"
)

var ErrEmptyToken = errors.New("push token is empty")

// Sender delivers a single notification to one device.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender builds a Firebase Cloud Messaging sender from a service
// account file.
func NewFCMSender(ctx context.Context, credentialsPath string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return ErrEmptyToken
	}
	_, err := s.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	return err
}

// LogSender only logs notifications. Used when no Firebase credentials are
// configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return ErrEmptyToken
	}
	logx.FromContext(ctx).WithFields(logrus.Fields{
		"push_title": title,
		"push_data":  data,
	}).Info("push notification (not delivered, no sender configured)")
	return nil
}

// SendAll sends the same notification to every token and returns how many
// deliveries failed. Failures are logged, never returned.
func SendAll(ctx context.Context, sender Sender, tokens []string, title, body string, data map[string]string) int {
	failed := 0
	for _, token := range tokens {
		if err := sender.Send(ctx, token, title, body, data); err != nil {
			failed++
			logx.FromContext(ctx).WithError(err).Warn("failed to send push notification")
		}
	}
	return failed
}

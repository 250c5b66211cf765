package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Sender delivers a push notification to one user. Delivery is best-effort:
// callers use BestEffort and never let a failed push block the request that
// triggered it.
type Sender interface {
	Send(ctx context.Context, userID uint, userRole, title, body string, data map[string]string) error
}

// LogSender is the development sender: it only logs the notification.
type LogSender struct{}

func (LogSender) Send(_ context.Context, userID uint, userRole, title, body string, data map[string]string) error {
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"user_role": userRole,
		"title":     title,
		"body":      body,
		"data":      data,
	}).Info("Push notification")
	return nil
}

// BestEffort sends and swallows the error, logging it instead.
func BestEffort(ctx context.Context, s Sender, userID uint, userRole, title, body string, data map[string]string) {
	if s == nil {
		return
	}
	if err := s.Send(ctx, userID, userRole, title, body, data); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Push notification failed")
	}
}

package service

import (
	"context"

	"go.uber.org/zap"

	"student-activity-api/internal/domain"
)

// NotificationDispatcher is the external delivery collaborator. Dispatch is
// called fire-and-forget; a failed delivery never fails the triggering
// operation.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, notification domain.Notification)
}

// LogNotifier is the default dispatcher; it records the payload and leaves
// delivery to whatever tails the logs.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Dispatch(_ context.Context, notification domain.Notification) {
	zap.L().Info("notification dispatched",
		zap.Uint("to_user_id", notification.ToUserID),
		zap.String("title", notification.Title),
		zap.String("message", notification.Message),
	)
}

package services

import (
	"context"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/pkg/errors"
)

type NotificationService interface {
	List(ctx context.Context, actorID uint, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, actorID uint) error
}

type notificationService struct {
	store repositories.Store
}

func NewNotificationService(store repositories.Store) NotificationService {
	return &notificationService{store: store}
}

func (s *notificationService) List(ctx context.Context, actorID uint, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.store.WithContext(ctx).Notifications().ListByUser(actorID, unreadOnly)
	return notifications, errors.Wrap(err, "list notifications")
}

// MarkRead reports another user's notification as not found.
func (s *notificationService) MarkRead(ctx context.Context, notificationID, actorID uint) error {
	if err := s.store.WithContext(ctx).Notifications().MarkRead(notificationID, actorID); err != nil {
		return notFound(err, "notification")
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"html"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Notifier delivers one notification. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// StoreNotifier persists notifications for the in-app inbox.
type StoreNotifier struct {
	store repositories.Store
}

func NewStoreNotifier(store repositories.Store) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (s *StoreNotifier) Notify(ctx context.Context, n models.Notification) error {
	return s.store.WithContext(ctx).Notifications().Create(&n)
}

// Mailer is satisfied by config.Mailer.
type Mailer interface {
	SendMail(to []string, subject, html string) error
}

// MailNotifier mirrors notifications to the recipient's email address.
type MailNotifier struct {
	mailer Mailer
	users  repositories.Store
}

func NewMailNotifier(mailer Mailer, store repositories.Store) *MailNotifier {
	return &MailNotifier{mailer: mailer, users: store}
}

func (m *MailNotifier) Notify(ctx context.Context, n models.Notification) error {
	user, err := m.users.WithContext(ctx).Users().GetByID(n.UserID)
	if err != nil {
		return errors.Wrapf(err, "load recipient %d", n.UserID)
	}
	if user.Email == "" {
		return nil
	}
	body := fmt.Sprintf("<p>Hello %s,</p><p>%s</p>", html.EscapeString(user.FullName()), html.EscapeString(n.Message))
	return m.mailer.SendMail([]string{user.Email}, n.Title, body)
}

// Emitter fans domain events out to every notifier once the triggering
// transaction has committed. Failures are logged and dropped.
type Emitter struct {
	notifiers []Notifier
}

func NewEmitter(notifiers ...Notifier) *Emitter {
	return &Emitter{notifiers: notifiers}
}

func (e *Emitter) Emit(ctx context.Context, events ...models.Notification) {
	if e == nil {
		return
	}
	for _, ev := range events {
		for _, n := range e.notifiers {
			if err := n.Notify(ctx, ev); err != nil {
				log.Warn().Err(err).
					Uint("user_id", ev.UserID).
					Str("title", ev.Title).
					Str("related_type", ev.RelatedType).
					Msg("notification delivery failed")
			}
		}
	}
}

// event builds a notification addressed to userID about relatedID.
func event(userID uint, title, message string, severity models.NotificationSeverity, relatedID uint, relatedType string) models.Notification {
	n := models.Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        severity,
		RelatedType: relatedType,
	}
	if relatedID != 0 {
		n.RelatedID = &relatedID
	}
	return n
}

// eventsForRole addresses the same notice to every user holding role.
func eventsForRole(store repositories.Store, role models.UserRole, title, message string, severity models.NotificationSeverity, relatedID uint, relatedType string) ([]models.Notification, error) {
	users, err := store.Users().ListByRole(role)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s users", role)
	}
	events := make([]models.Notification, 0, len(users))
	for _, u := range users {
		events = append(events, event(u.ID, title, message, severity, relatedID, relatedType))
	}
	return events, nil
}

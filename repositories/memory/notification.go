package memory

import (
	"sort"

	"capstone-tracker/models"

	"gorm.io/gorm"
)

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	return r.s.write(func(d *dataset) error {
		notification.ID = d.id()
		stamp(&notification.CreatedAt, &notification.UpdatedAt)
		d.notifications[notification.ID] = *notification
		return nil
	})
}

func (r *notificationRepository) ListByUser(userID uint, unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.s.read(func(d *dataset) error {
		for _, n := range d.notifications {
			if n.UserID == userID && (!unreadOnly || !n.IsRead) {
				notifications = append(notifications, n)
			}
		}
		return nil
	})
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].ID > notifications[j].ID })
	return notifications, err
}

func (r *notificationRepository) MarkRead(id, userID uint) error {
	return r.s.write(func(d *dataset) error {
		n, ok := d.notifications[id]
		if !ok || n.UserID != userID {
			return gorm.ErrRecordNotFound
		}
		n.IsRead = true
		d.notifications[id] = n
		return nil
	})
}

package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core/notification"
)

type notificationRepository struct {
	db *table[notification.Notification]
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if !repo.db.insert(notif.ID, notif) {
		return notification.Notification{}, errors.Errorf("duplicate notification id %q", notif.ID)
	}
	return notif, nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id string) (notification.Notification, error) {
	if notif, ok := repo.db.get(id); ok {
		return notif, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) QueryNotificationsByUser(_ context.Context, userID string) ([]notification.Notification, error) {
	return repo.db.filter(func(n notification.Notification) bool { return n.UserID == userID }), nil
}

func (repo *notificationRepository) MarkNotificationRead(_ context.Context, id string) (notification.Notification, error) {
	return repo.db.update(id, notification.ErrNotFound, func(n *notification.Notification) error {
		n.IsRead = true
		return nil
	})
}

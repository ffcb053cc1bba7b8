package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studymatch/core/notification"
)

const notificationColumns = `id, user_id, type, title, message, link, is_read, created_at`

type notificationRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	Type      string      `db:"type"`
	Title     string      `db:"title"`
	Message   string      `db:"message"`
	Link      null.String `db:"link"`
	IsRead    bool        `db:"is_read"`
	CreatedAt time.Time   `db:"created_at"`
}

func (row notificationRow) toNotification() notification.Notification {
	return notification.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		Link:      row.Link.String,
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

type notificationRepository struct {
	repo
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{repo{db: db}}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (:id, :user_id, :type, :title, :message, :link, :is_read, :created_at)`,
		notificationRow{
			ID:        notif.ID,
			UserID:    notif.UserID,
			Type:      notif.Type,
			Title:     notif.Title,
			Message:   notif.Message,
			Link:      optString(notif.Link),
			IsRead:    notif.IsRead,
			CreatedAt: notif.CreatedAt,
		})
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (r *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var row notificationRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "selecting notification")
	}
	return row.toNotification(), nil
}

func (r *notificationRepository) QueryNotificationsByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.toNotification())
	}
	return notifs, nil
}

func (r *notificationRepository) MarkNotificationRead(ctx context.Context, id string) (notification.Notification, error) {
	var row notificationRow
	err := r.db.GetContext(ctx, &row, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1
		RETURNING `+notificationColumns, id)
	if err != nil {
		if isNoRows(err) {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	return row.toNotification(), nil
}

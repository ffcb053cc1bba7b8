package notification

import (
	"context"
	"fmt"
	"net/mail"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/user"
)

var ErrNotFound = core.NewNotFoundError("notification")

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		QueryNotificationsByUser(ctx context.Context, userID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) (Notification, error)
	}

	// Service is the notification emitter used by every state-changing operation.
	Service struct {
		repo    Repository
		users   *user.Service
		mailSvc core.EmailService // optional
		logger  core.Logger
	}
)

func NewService(repo Repository, users *user.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, users: users, mailSvc: mailSvc, logger: logger}
}

// Notify records an unread notification for `nn.UserID`.
func (svc *Service) Notify(ctx context.Context, nn NewNotification) (Notification, error) {
	if !IsValidType(nn.Type) {
		return Notification{}, core.NewFieldError("type", fmt.Sprintf("unknown notification type %q", nn.Type))
	}
	notif, err := svc.repo.CreateNotification(ctx, Notification{
		ID:        uuid.New().String(),
		UserID:    nn.UserID,
		Type:      nn.Type,
		Title:     nn.Title,
		Message:   nn.Message,
		Link:      nn.Link,
		CreatedAt: core.NowFunc().UTC(),
	})
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}
	svc.logger.Debug("notification created", "user_id", notif.UserID, "type", notif.Type)

	if svc.mailSvc != nil && mailed[notif.Type] {
		svc.mail(ctx, notif)
	}
	return notif, nil
}

func (svc *Service) mail(ctx context.Context, notif Notification) {
	usr, err := svc.users.GetByID(ctx, notif.UserID)
	if err != nil {
		svc.logger.Warn("notification email skipped", errors.Wrap(err, "finding user by ID"))
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      notif.Title,
		TemplateName: "notification",
		TemplateData: struct {
			Name    string
			Title   string
			Message string
			Link    string
		}{usr.Name, notif.Title, notif.Message, notif.Link},
	})
}

// ListForUser returns the actor's notifications, newest first.
func (svc *Service) ListForUser(ctx context.Context, actor core.Actor) ([]Notification, error) {
	notifs, err := svc.repo.QueryNotificationsByUser(ctx, actor.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	sort.SliceStable(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (svc *Service) UnreadCount(ctx context.Context, actor core.Actor) (int, error) {
	notifs, err := svc.repo.QueryNotificationsByUser(ctx, actor.UserID)
	if err != nil {
		return 0, errors.Wrap(err, "querying notifications")
	}
	var n int
	for _, notif := range notifs {
		if !notif.IsRead {
			n++
		}
	}
	return n, nil
}

// MarkRead flags one of the actor's notifications as read. Marking twice is a no-op.
// Notifications owned by somebody else are reported as not found.
func (svc *Service) MarkRead(ctx context.Context, actor core.Actor, id string) (Notification, error) {
	notif, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if notif.UserID != actor.UserID {
		return Notification{}, ErrNotFound
	}
	if notif.IsRead {
		return notif, nil
	}
	return svc.repo.MarkNotificationRead(ctx, id)
}

// MarkAllRead flags every unread notification of the actor as read and returns how many changed.
func (svc *Service) MarkAllRead(ctx context.Context, actor core.Actor) (int, error) {
	notifs, err := svc.repo.QueryNotificationsByUser(ctx, actor.UserID)
	if err != nil {
		return 0, errors.Wrap(err, "querying notifications")
	}
	var n int
	for _, notif := range notifs {
		if notif.IsRead {
			continue
		}
		if _, err = svc.repo.MarkNotificationRead(ctx, notif.ID); err != nil {
			return n, errors.Wrap(err, "marking notification read")
		}
		n++
	}
	return n, nil
}

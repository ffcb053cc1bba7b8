package message

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/user"
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryMessagesByUser returns the messages sent or received by the user.
		QueryMessagesByUser(ctx context.Context, userID string) ([]Message, error)
		UpdateMessage(ctx context.Context, msg Message) (Message, error)
	}

	Service struct {
		repo     Repository
		users    *user.Service
		notifs   *notification.Service
		validate *core.Validator
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	users *user.Service,
	notifs *notification.Service,
	validate *core.Validator,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, users: users, notifs: notifs, validate: validate, logger: logger}
}

// Send delivers a message from the actor and notifies the receiver.
func (svc *Service) Send(ctx context.Context, actor core.Actor, nm NewMessage) (Message, error) {
	nm.clean()
	if err := svc.validate.Struct(nm); err != nil {
		return Message{}, err
	}
	if nm.ReceiverID == actor.UserID {
		return Message{}, core.NewFieldError("receiver_id", "you cannot message yourself")
	}
	if _, err := svc.users.CheckExist(ctx, "receiver_id", nm.ReceiverID); err != nil {
		return Message{}, err
	}

	msg, err := svc.repo.CreateMessage(ctx, Message{
		ID:         uuid.New().String(),
		SenderID:   actor.UserID,
		ReceiverID: nm.ReceiverID,
		SessionID:  nm.SessionID,
		Content:    nm.Content,
		CreatedAt:  actor.Now(),
	})
	if err != nil {
		return Message{}, errors.Wrap(err, "creating message")
	}

	_, err = svc.notifs.Notify(ctx, notification.NewNotification{
		UserID:  msg.ReceiverID,
		Type:    notification.TypeNewMessage,
		Title:   "New Message",
		Message: "You have a new message",
		Link:    "/messages",
	})
	return msg, errors.Wrap(err, "notifying receiver")
}

// Conversation returns the messages exchanged between the actor and `otherID`, oldest first.
func (svc *Service) Conversation(ctx context.Context, actor core.Actor, otherID string) ([]Message, error) {
	all, err := svc.repo.QueryMessagesByUser(ctx, actor.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	msgs := make([]Message, 0, len(all))
	for _, m := range all {
		if m.Involves(actor.UserID, otherID) {
			msgs = append(msgs, m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

// MarkConversationRead marks as read the messages the actor received from `otherID`.
// Messages sent by the actor are left untouched. It returns how many messages changed.
func (svc *Service) MarkConversationRead(ctx context.Context, actor core.Actor, otherID string) (int, error) {
	msgs, err := svc.Conversation(ctx, actor, otherID)
	if err != nil {
		return 0, err
	}
	var n int
	for _, m := range msgs {
		if m.IsRead || m.SenderID != otherID || m.ReceiverID != actor.UserID {
			continue
		}
		m.IsRead = true
		if _, err = svc.repo.UpdateMessage(ctx, m); err != nil {
			return n, errors.Wrap(err, "updating message")
		}
		n++
	}
	return n, nil
}

// ListForUser summarises the actor's conversations, most recently active first.
func (svc *Service) ListForUser(ctx context.Context, actor core.Actor) ([]Conversation, error) {
	all, err := svc.repo.QueryMessagesByUser(ctx, actor.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}

	byUser := make(map[string]*Conversation)
	order := make([]string, 0)
	for _, m := range all {
		other := m.ReceiverID
		if other == actor.UserID {
			other = m.SenderID
		}
		conv, ok := byUser[other]
		if !ok {
			conv = &Conversation{UserID: other, LastMessage: m}
			byUser[other] = conv
			order = append(order, other)
		}
		if !m.CreatedAt.Before(conv.LastMessage.CreatedAt) {
			conv.LastMessage = m
		}
		if !m.IsRead && m.ReceiverID == actor.UserID {
			conv.UnreadCount++
		}
	}

	convs := make([]Conversation, 0, len(order))
	for _, id := range order {
		convs = append(convs, *byUser[id])
	}
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].LastMessage.CreatedAt.After(convs[j].LastMessage.CreatedAt)
	})
	return convs, nil
}

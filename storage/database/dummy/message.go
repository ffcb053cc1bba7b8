package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/message"
)

var errMessageNotFound = core.NewNotFoundError("message")

type messageRepository struct {
	db *table[message.Message]
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db.message}
}

func (repo *messageRepository) CreateMessage(_ context.Context, msg message.Message) (message.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if !repo.db.insert(msg.ID, msg) {
		return message.Message{}, errors.Errorf("duplicate message id %q", msg.ID)
	}
	return msg, nil
}

func (repo *messageRepository) QueryMessagesByUser(_ context.Context, userID string) ([]message.Message, error) {
	return repo.db.filter(func(m message.Message) bool {
		return m.SenderID == userID || m.ReceiverID == userID
	}), nil
}

func (repo *messageRepository) UpdateMessage(_ context.Context, msg message.Message) (message.Message, error) {
	return repo.db.update(msg.ID, errMessageNotFound, func(m *message.Message) error {
		if m.IsRead && !msg.IsRead {
			msg.IsRead = true // read messages stay read
		}
		*m = msg
		return nil
	})
}

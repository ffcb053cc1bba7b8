package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/message"
)

var errMessageNotFound = core.NewNotFoundError("message")

type messageRow struct {
	ID         string      `db:"id"`
	SenderID   string      `db:"sender_id"`
	ReceiverID string      `db:"receiver_id"`
	SessionID  null.String `db:"session_id"`
	Content    string      `db:"content"`
	IsRead     bool        `db:"is_read"`
	CreatedAt  time.Time   `db:"created_at"`
}

type messageRepository struct {
	repo
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) message.Repository {
	return &messageRepository{repo{db: db}}
}

func (r *messageRepository) CreateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, session_id, content, is_read, created_at)
		VALUES (:id, :sender_id, :receiver_id, :session_id, :content, :is_read, :created_at)`,
		messageRow{
			ID:         msg.ID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			SessionID:  optString(msg.SessionID),
			Content:    msg.Content,
			IsRead:     msg.IsRead,
			CreatedAt:  msg.CreatedAt,
		})
	if err != nil {
		return message.Message{}, errors.Wrap(err, "inserting message")
	}
	return msg, nil
}

func (r *messageRepository) QueryMessagesByUser(ctx context.Context, userID string) ([]message.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, sender_id, receiver_id, session_id, content, is_read, created_at
		FROM messages WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting messages")
	}
	msgs := make([]message.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, message.Message{
			ID:         row.ID,
			SenderID:   row.SenderID,
			ReceiverID: row.ReceiverID,
			SessionID:  row.SessionID.String,
			Content:    row.Content,
			IsRead:     row.IsRead,
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	return msgs, nil
}

// UpdateMessage only ever flips is_read to true.
func (r *messageRepository) UpdateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = is_read OR $2 WHERE id = $1`, msg.ID, msg.IsRead)
	if err != nil {
		return message.Message{}, errors.Wrap(err, "updating message")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return message.Message{}, errMessageNotFound
	}
	return msg, nil
}

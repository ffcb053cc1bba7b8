package message

import (
	"time"

	"github.com/trezcool/studymatch/core"
)

// Message is a direct message between two users, optionally about a session.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	SessionID  string    `json:"session_id,omitempty"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// Involves reports whether the message was exchanged between a and b, in either direction.
func (m Message) Involves(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// NewMessage contains information needed to send a Message.
type NewMessage struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	SessionID  string `json:"session_id"`
	Content    string `json:"content" validate:"notblank,max=5000"`
}

func (nm *NewMessage) clean() {
	nm.ReceiverID = core.CleanString(nm.ReceiverID)
	nm.SessionID = core.CleanString(nm.SessionID)
	nm.Content = core.CleanString(nm.Content)
}

// Conversation summarises the exchange with one other user.
type Conversation struct {
	UserID      string  `json:"user_id"`
	LastMessage Message `json:"last_message"`
	UnreadCount int     `json:"unread_count"`
}

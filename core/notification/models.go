package notification

import "time"

// Notification types
const (
	TypeSessionRequest   = "session_request"
	TypeSessionConfirmed = "session_confirmed"
	TypeSessionCancelled = "session_cancelled"
	TypeSessionReminder  = "session_reminder"
	TypeNewMessage       = "new_message"
	TypeNewReview        = "new_review"
	TypePointsEarned     = "points_earned"
	TypeMatchFound       = "match_found"
)

var (
	AllTypes = []string{
		TypeSessionRequest, TypeSessionConfirmed, TypeSessionCancelled, TypeSessionReminder,
		TypeNewMessage, TypeNewReview, TypePointsEarned, TypeMatchFound,
	}

	// mailed types are also sent by email when a mailer is configured.
	mailed = map[string]bool{
		TypeSessionRequest:   true,
		TypeSessionConfirmed: true,
		TypeSessionCancelled: true,
		TypeSessionReminder:  true,
	}
)

func IsValidType(typ string) bool {
	for _, t := range AllTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// Notification is a user-scoped event record. IsRead only ever goes from false to true.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewNotification contains information needed to notify a user.
type NewNotification struct {
	UserID  string
	Type    string
	Title   string
	Message string
	Link    string
}

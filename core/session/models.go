package session

import (
	"time"

	"github.com/trezcool/studymatch/core"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Modes
const (
	ModeInPerson = "in-person"
	ModeVideo    = "video"
)

// Roles of a participant
const (
	RoleTutor   = "tutor"
	RoleLearner = "learner"
)

// transitions lists the statuses reachable from each status. Completed and cancelled are terminal.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Session is a scheduled tutor/learner meeting around one subject.
type Session struct {
	ID            string     `json:"id"`
	TutorID       string     `json:"tutor_id"`
	LearnerID     string     `json:"learner_id"`
	SubjectID     string     `json:"subject_id"`
	ScheduledAt   time.Time  `json:"scheduled_at"` // UTC
	Duration      int        `json:"duration"`     // minutes
	Mode          string     `json:"mode"`
	Location      string     `json:"location,omitempty"`
	MeetingLink   string     `json:"meeting_link,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Status        string     `json:"status"`
	Amount        float64    `json:"amount"`
	PointsAwarded int        `json:"points_awarded"`
	RemindedAt    *time.Time `json:"reminded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"` // UTC
	UpdatedAt     time.Time  `json:"updated_at"` // UTC
}

func (s Session) IsParticipant(userID string) bool {
	return userID != "" && (userID == s.TutorID || userID == s.LearnerID)
}

// RoleOf returns the participant role of `userID`, or "" for outsiders.
func (s Session) RoleOf(userID string) string {
	switch userID {
	case "":
		return ""
	case s.TutorID:
		return RoleTutor
	case s.LearnerID:
		return RoleLearner
	}
	return ""
}

// OtherParty returns the id of the participant that is not `userID`.
func (s Session) OtherParty(userID string) string {
	if userID == s.TutorID {
		return s.LearnerID
	}
	return s.TutorID
}

// NewSession contains information needed to request a Session.
type NewSession struct {
	TutorID     string `json:"tutor_id" validate:"required"`
	LearnerID   string `json:"learner_id"` // defaults to the requesting user
	SubjectID   string `json:"subject_id" validate:"required"`
	ScheduledAt string `json:"scheduled_at" validate:"required"` // RFC 3339
	Duration    int    `json:"duration" validate:"min=15,max=480"`
	Mode        string `json:"mode" validate:"required,oneof=in-person video"`
	Location    string `json:"location" validate:"max=255"`
	MeetingLink string `json:"meeting_link" validate:"max=2048"`
	Notes       string `json:"notes" validate:"max=2000"`
}

func (ns *NewSession) clean() {
	ns.TutorID = core.CleanString(ns.TutorID)
	ns.LearnerID = core.CleanString(ns.LearnerID)
	ns.SubjectID = core.CleanString(ns.SubjectID)
	ns.ScheduledAt = core.CleanString(ns.ScheduledAt)
	ns.Location = core.CleanString(ns.Location)
	ns.MeetingLink = core.CleanString(ns.MeetingLink)
	ns.Notes = core.CleanString(ns.Notes)
}

// List tabs
const (
	TabAll      = "all"
	TabUpcoming = "upcoming"
	TabPending  = "pending"
	TabHistory  = "history"
)

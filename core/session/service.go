package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/points"
	"github.com/trezcool/studymatch/core/subject"
	"github.com/trezcool/studymatch/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("session")
	// ErrConflict is returned by Repository.UpdateSession when the stored status changed underneath.
	ErrConflict = errors.New("session status changed concurrently")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSessionByID(ctx context.Context, id string) (Session, error)
		// QuerySessionsByUser returns the sessions where the user is tutor or learner.
		QuerySessionsByUser(ctx context.Context, userID string) ([]Session, error)
		QuerySessionsByStatus(ctx context.Context, status string) ([]Session, error)
		// UpdateSession saves `sess` only if the stored status still equals `fromStatus`, otherwise it fails with ErrConflict.
		UpdateSession(ctx context.Context, sess Session, fromStatus string) (Session, error)
	}

	// Service runs the session lifecycle: pending -> confirmed -> completed, with cancellation from pending or confirmed.
	Service struct {
		repo     Repository
		users    *user.Service
		subjects *subject.Service
		notifs   *notification.Service
		ledger   *points.Ledger
		validate *core.Validator
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	users *user.Service,
	subjects *subject.Service,
	notifs *notification.Service,
	ledger *points.Ledger,
	validate *core.Validator,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		subjects: subjects,
		notifs:   notifs,
		ledger:   ledger,
		validate: validate,
		logger:   logger,
	}
}

// Request books a pending session with a tutor. The learner defaults to the actor.
func (svc *Service) Request(ctx context.Context, actor core.Actor, ns NewSession) (Session, error) {
	ns.clean()
	if ns.LearnerID == "" {
		ns.LearnerID = actor.UserID
	}
	if err := svc.validate.Struct(ns); err != nil {
		return Session{}, err
	}
	if ns.LearnerID != actor.UserID {
		return Session{}, core.NewFieldError("learner_id", "sessions can only be requested by the learner")
	}
	if ns.TutorID == ns.LearnerID {
		return Session{}, core.NewFieldError("tutor_id", "you cannot book a session with yourself")
	}

	tutor, err := svc.users.CheckExist(ctx, "tutor_id", ns.TutorID)
	if err != nil {
		return Session{}, err
	}
	if _, err = svc.users.CheckExist(ctx, "learner_id", ns.LearnerID); err != nil {
		return Session{}, err
	}
	if err = svc.subjects.CheckExist(ctx, "subject_id", ns.SubjectID); err != nil {
		return Session{}, err
	}
	scheduledAt, err := time.Parse(time.RFC3339, ns.ScheduledAt)
	if err != nil {
		return Session{}, core.NewFieldError("scheduled_at", "must be an RFC 3339 date-time, e.g. 2006-01-02T15:04:05Z")
	}

	now := actor.Now()
	sess, err := svc.repo.CreateSession(ctx, Session{
		ID:          uuid.New().String(),
		TutorID:     ns.TutorID,
		LearnerID:   ns.LearnerID,
		SubjectID:   ns.SubjectID,
		ScheduledAt: scheduledAt.UTC(),
		Duration:    ns.Duration,
		Mode:        ns.Mode,
		Location:    ns.Location,
		MeetingLink: ns.MeetingLink,
		Notes:       ns.Notes,
		Status:      StatusPending,
		Amount:      sessionAmount(tutor.MinRate, ns.Duration),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Session{}, errors.Wrap(err, "creating session")
	}
	svc.logger.Info("session requested", "session_id", sess.ID, "tutor_id", sess.TutorID, "learner_id", sess.LearnerID)

	_, err = svc.notifs.Notify(ctx, notification.NewNotification{
		UserID:  sess.TutorID,
		Type:    notification.TypeSessionRequest,
		Title:   "New Session Request",
		Message: "You have a new tutoring request",
		Link:    "/sessions",
	})
	return sess, errors.Wrap(err, "notifying tutor")
}

// sessionAmount is the tutor's hourly rate prorated to the duration.
func sessionAmount(minRate float64, duration int) float64 {
	return minRate * float64(duration) / 60
}

// GetByID returns a session the actor takes part in.
func (svc *Service) GetByID(ctx context.Context, actor core.Actor, id string) (Session, error) {
	sess, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if !sess.IsParticipant(actor.UserID) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// transition checks and applies the status change then saves it atomically.
func (svc *Service) transition(ctx context.Context, actor core.Actor, id, to string, check func(Session) string, mutate func(*Session)) (Session, error) {
	sess, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	from := sess.Status
	if !canTransition(from, to) {
		return Session{}, core.NewInvalidStateTransitionError("session", id, from, to, "session is "+from)
	}
	if reason := check(sess); reason != "" {
		return Session{}, core.NewInvalidStateTransitionError("session", id, from, to, reason)
	}

	sess.Status = to
	sess.UpdatedAt = actor.Now()
	if mutate != nil {
		mutate(&sess)
	}
	saved, err := svc.repo.UpdateSession(ctx, sess, from)
	if err != nil {
		if errors.Cause(err) == ErrConflict {
			current, gErr := svc.repo.GetSessionByID(ctx, id)
			if gErr != nil {
				return Session{}, errors.Wrap(gErr, "reloading session")
			}
			return Session{}, core.NewInvalidStateTransitionError("session", id, current.Status, to, "session is "+current.Status)
		}
		return Session{}, errors.Wrap(err, "updating session")
	}
	svc.logger.Info("session "+to, "session_id", id, "from", from, "actor", actor.UserID)
	return saved, nil
}

// Accept confirms a pending session. Only the tutor may accept.
func (svc *Service) Accept(ctx context.Context, actor core.Actor, id string) (Session, error) {
	sess, err := svc.transition(ctx, actor, id, StatusConfirmed, func(s Session) string {
		if s.RoleOf(actor.UserID) != RoleTutor {
			return "only the tutor can accept a session"
		}
		return ""
	}, nil)
	if err != nil {
		return Session{}, err
	}

	_, err = svc.notifs.Notify(ctx, notification.NewNotification{
		UserID:  sess.LearnerID,
		Type:    notification.TypeSessionConfirmed,
		Title:   "Session Confirmed",
		Message: "Your tutoring session has been confirmed",
		Link:    "/sessions",
	})
	return sess, errors.Wrap(err, "notifying learner")
}

// DeclineOrCancel cancels a pending or confirmed session. Either participant may cancel.
func (svc *Service) DeclineOrCancel(ctx context.Context, actor core.Actor, id string) (Session, error) {
	sess, err := svc.transition(ctx, actor, id, StatusCancelled, func(s Session) string {
		if !s.IsParticipant(actor.UserID) {
			return "only participants can cancel a session"
		}
		return ""
	}, nil)
	if err != nil {
		return Session{}, err
	}

	_, err = svc.notifs.Notify(ctx, notification.NewNotification{
		UserID:  sess.OtherParty(actor.UserID),
		Type:    notification.TypeSessionCancelled,
		Title:   "Session Cancelled",
		Message: "A tutoring session has been cancelled",
		Link:    "/sessions",
	})
	return sess, errors.Wrap(err, "notifying other party")
}

// Complete marks a confirmed session whose start time has passed as completed,
// and credits the acting participant only: 50 points for the tutor, 30 for the learner.
func (svc *Service) Complete(ctx context.Context, actor core.Actor, id string) (Session, error) {
	now := actor.Now()
	var award int
	var reason string
	sess, err := svc.transition(ctx, actor, id, StatusCompleted, func(s Session) string {
		switch s.RoleOf(actor.UserID) {
		case RoleTutor:
			award, reason = points.TutorSessionAward, points.TutorSessionReason
		case RoleLearner:
			award, reason = points.LearnerSessionAward, points.LearnerSessionReason
		default:
			return "only participants can complete a session"
		}
		if !s.ScheduledAt.Before(now) {
			return "session has not started yet"
		}
		return ""
	}, func(s *Session) {
		s.PointsAwarded = award
	})
	if err != nil {
		return Session{}, err
	}

	// the session stays completed when the credit fails: the error is logged for a manual fix
	if _, err = svc.ledger.Award(ctx, actor.UserID, award, reason); err != nil {
		svc.logger.Error("awarding completion points", err, "session_id", sess.ID, "user_id", actor.UserID, "amount", award)
		return sess, errors.Wrap(err, "awarding completion points")
	}
	return sess, nil
}

// ListForUser returns the actor's sessions for one of the list tabs:
//
//	upcoming: confirmed sessions in the future, soonest first
//	pending: awaiting the tutor, soonest first
//	history: completed or cancelled, most recent first
//	all: every session, most recent first
func (svc *Service) ListForUser(ctx context.Context, actor core.Actor, tab string) ([]Session, error) {
	all, err := svc.repo.QuerySessionsByUser(ctx, actor.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}

	now := actor.Now()
	var keep func(Session) bool
	ascending := true
	switch tab {
	case TabUpcoming:
		keep = func(s Session) bool { return s.Status == StatusConfirmed && s.ScheduledAt.After(now) }
	case TabPending:
		keep = func(s Session) bool { return s.Status == StatusPending }
	case TabHistory:
		keep = func(s Session) bool { return IsTerminal(s.Status) }
		ascending = false
	case TabAll, "":
		keep = func(Session) bool { return true }
		ascending = false
	default:
		return nil, core.NewFieldError("tab", fmt.Sprintf("unknown tab %q", tab))
	}

	sessions := make([]Session, 0, len(all))
	for _, s := range all {
		if keep(s) {
			sessions = append(sessions, s)
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if ascending {
			return sessions[i].ScheduledAt.Before(sessions[j].ScheduledAt)
		}
		return sessions[i].ScheduledAt.After(sessions[j].ScheduledAt)
	})
	return sessions, nil
}

// SendReminders notifies both participants of confirmed sessions starting within `window` from `now`.
// Each session is reminded at most once. It returns how many sessions were reminded.
func (svc *Service) SendReminders(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	confirmed, err := svc.repo.QuerySessionsByStatus(ctx, StatusConfirmed)
	if err != nil {
		return 0, errors.Wrap(err, "querying confirmed sessions")
	}

	now = now.UTC()
	deadline := now.Add(window)
	var n int
	for _, sess := range confirmed {
		if sess.RemindedAt != nil || !sess.ScheduledAt.After(now) || sess.ScheduledAt.After(deadline) {
			continue
		}
		remindedAt := now
		sess.RemindedAt = &remindedAt
		sess.UpdatedAt = now
		if _, err = svc.repo.UpdateSession(ctx, sess, StatusConfirmed); err != nil {
			if errors.Cause(err) == ErrConflict {
				continue // cancelled meanwhile
			}
			return n, errors.Wrap(err, "updating session")
		}

		msg := fmt.Sprintf("Your session starts at %s UTC", sess.ScheduledAt.Format("Mon Jan 2 15:04"))
		for _, userID := range []string{sess.TutorID, sess.LearnerID} {
			_, err = svc.notifs.Notify(ctx, notification.NewNotification{
				UserID:  userID,
				Type:    notification.TypeSessionReminder,
				Title:   "Session Reminder",
				Message: msg,
				Link:    "/sessions",
			})
			if err != nil {
				return n, errors.Wrap(err, "notifying reminder")
			}
		}
		n++
	}
	return n, nil
}

package review

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/points"
	"github.com/trezcool/studymatch/core/session"
	"github.com/trezcool/studymatch/core/user"
)

type (
	Repository interface {
		CreateReview(ctx context.Context, rev Review) (Review, error)
		QueryReviewsByReviewee(ctx context.Context, revieweeID string) ([]Review, error)
	}

	// Service records reviews and keeps every user's rating equal to the mean of the reviews they received.
	Service struct {
		repo     Repository
		users    *user.Service
		sessions session.Repository
		notifs   *notification.Service
		ledger   *points.Ledger
		validate *core.Validator
		logger   core.Logger
		locks    core.KeyedMutex // by reviewee
	}
)

func NewService(
	repo Repository,
	users *user.Service,
	sessions session.Repository,
	notifs *notification.Service,
	ledger *points.Ledger,
	validate *core.Validator,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		sessions: sessions,
		notifs:   notifs,
		ledger:   ledger,
		validate: validate,
		logger:   logger,
	}
}

// Record stores a review from the actor, then in order: recomputes the reviewee's rating from all their reviews,
// notifies the reviewee and credits the reviewer.
// Recording the same review twice creates two reviews.
func (svc *Service) Record(ctx context.Context, actor core.Actor, nr NewReview) (Review, error) {
	nr.clean()
	if err := svc.validate.Struct(nr); err != nil {
		return Review{}, err
	}
	if _, err := svc.users.CheckExist(ctx, "reviewer_id", actor.UserID); err != nil {
		return Review{}, err
	}
	if _, err := svc.users.CheckExist(ctx, "reviewee_id", nr.RevieweeID); err != nil {
		return Review{}, err
	}
	sess, err := svc.sessions.GetSessionByID(ctx, nr.SessionID)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return Review{}, core.NewFieldError("session_id", "unknown session "+nr.SessionID)
		}
		return Review{}, errors.Wrap(err, "finding session by ID")
	}
	if sess.Status != session.StatusCompleted {
		return Review{}, core.NewFieldError("session_id", "only completed sessions can be reviewed")
	}

	rev, err := svc.record(ctx, actor, nr)
	if err != nil {
		return Review{}, err
	}

	_, err = svc.notifs.Notify(ctx, notification.NewNotification{
		UserID:  rev.RevieweeID,
		Type:    notification.TypeNewReview,
		Title:   "New Review",
		Message: fmt.Sprintf("You received a %d-star review", rev.Rating),
		Link:    "/profile",
	})
	if err != nil {
		return rev, errors.Wrap(err, "notifying reviewee")
	}

	if _, err = svc.ledger.Award(ctx, actor.UserID, points.ReviewAward, points.ReviewReason); err != nil {
		return rev, errors.Wrap(err, "awarding review points")
	}
	return rev, nil
}

// record persists the review and refreshes the reviewee's aggregate under the reviewee lock.
func (svc *Service) record(ctx context.Context, actor core.Actor, nr NewReview) (Review, error) {
	unlock := svc.locks.Lock(nr.RevieweeID)
	defer unlock()

	rev, err := svc.repo.CreateReview(ctx, Review{
		ID:         uuid.New().String(),
		SessionID:  nr.SessionID,
		ReviewerID: actor.UserID,
		RevieweeID: nr.RevieweeID,
		Rating:     nr.Rating,
		Comment:    nr.Comment,
		CreatedAt:  actor.Now(),
	})
	if err != nil {
		return Review{}, errors.Wrap(err, "creating review")
	}

	// full rescan: no running average
	reviews, err := svc.repo.QueryReviewsByReviewee(ctx, rev.RevieweeID)
	if err != nil {
		return rev, errors.Wrap(err, "querying reviews")
	}
	// the review stays stored on failure; the next review's rescan repairs the aggregate
	rating, total := Mean(reviews)
	if _, err = svc.users.SetRating(ctx, rev.RevieweeID, rating, total); err != nil {
		svc.logger.Error("setting rating", err, "review_id", rev.ID, "reviewee_id", rev.RevieweeID)
		return rev, errors.Wrap(err, "setting rating")
	}
	svc.logger.Info("review recorded", "review_id", rev.ID, "reviewee_id", rev.RevieweeID, "rating", rating, "total", total)
	return rev, nil
}

// ListForUser returns the reviews a user received, most recent first.
func (svc *Service) ListForUser(ctx context.Context, revieweeID string) ([]Review, error) {
	if _, err := svc.users.GetByID(ctx, revieweeID); err != nil {
		return nil, err
	}
	reviews, err := svc.repo.QueryReviewsByReviewee(ctx, revieweeID)
	if err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

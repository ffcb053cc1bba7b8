package points

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/user"
)

// Award amounts and reasons
const (
	TutorSessionAward    = 50
	TutorSessionReason   = "completing a tutoring session"
	LearnerSessionAward  = 30
	LearnerSessionReason = "completing a learning session"
	ReviewAward          = 10
	ReviewReason         = "leaving a review"

	Milestone = 1000
)

var ErrRewardNotFound = core.NewNotFoundError("reward")

// ToNextMilestone returns how many points are missing to reach the next multiple of Milestone.
func ToNextMilestone(points int) int {
	return Milestone - points%Milestone
}

// Ledger credits and debits user points. Every credit emits a points_earned notification.
type Ledger struct {
	users  *user.Service
	notifs *notification.Service
	logger core.Logger
}

func NewLedger(users *user.Service, notifs *notification.Service, logger core.Logger) *Ledger {
	return &Ledger{users: users, notifs: notifs, logger: logger}
}

// Award adds `amount` points to the user's balance. There is no cap.
// Once the points are credited, a failure to notify the user is logged and not returned.
func (l *Ledger) Award(ctx context.Context, userID string, amount int, reason string) (user.User, error) {
	if amount < 0 {
		return user.User{}, core.NewFieldError("amount", "cannot award a negative amount")
	}
	usr, err := l.users.AddPoints(ctx, userID, amount)
	if err != nil {
		return user.User{}, errors.Wrap(err, "adding points")
	}
	l.logger.Info("points awarded", "user_id", userID, "amount", amount, "reason", reason)

	_, err = l.notifs.Notify(ctx, notification.NewNotification{
		UserID:  userID,
		Type:    notification.TypePointsEarned,
		Title:   "Points Earned!",
		Message: fmt.Sprintf("You earned %d points for %s", amount, reason),
		Link:    "/rewards",
	})
	if err != nil {
		l.logger.Error("notifying points earned", err, "user_id", userID, "amount", amount)
	}
	return usr, nil
}

// Balance is the actor's points summary.
type Balance struct {
	Points          int `json:"points"`
	ToNextMilestone int `json:"to_next_milestone"`
}

func (l *Ledger) Balance(ctx context.Context, actor core.Actor) (Balance, error) {
	usr, err := l.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return Balance{}, errors.Wrap(err, "finding user by ID")
	}
	return Balance{Points: usr.Points, ToNextMilestone: ToNextMilestone(usr.Points)}, nil
}

// Redeem spends the actor's points on a reward. The balance never goes negative.
func (l *Ledger) Redeem(ctx context.Context, actor core.Actor, rewardID string) (user.User, Reward, error) {
	reward, ok := findReward(rewardID)
	if !ok {
		return user.User{}, Reward{}, ErrRewardNotFound
	}
	usr, err := l.users.AddPoints(ctx, actor.UserID, -reward.Cost)
	if err != nil {
		if errors.Cause(err) == user.ErrInsufficientPoints {
			return user.User{}, Reward{}, core.NewFieldError(
				"points", fmt.Sprintf("%d points are required to redeem %s", reward.Cost, reward.Name),
			)
		}
		return user.User{}, Reward{}, errors.Wrap(err, "spending points")
	}
	l.logger.Info("reward redeemed", "user_id", actor.UserID, "reward_id", reward.ID, "cost", reward.Cost)
	return usr, reward, nil
}

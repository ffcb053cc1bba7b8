package match

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/user"
)

const ModeAll = "all"

// Service feeds the scorers with the users from the data store. It never mutates users.
type Service struct {
	users  *user.Service
	notifs *notification.Service
	logger core.Logger
}

func NewService(users *user.Service, notifs *notification.Service, logger core.Logger) *Service {
	return &Service{users: users, notifs: notifs, logger: logger}
}

func (svc *Service) load(ctx context.Context, userID string) (user.User, []user.User, error) {
	me, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, nil, errors.Wrap(err, "finding user by ID")
	}
	all, err := svc.users.QueryAll(ctx)
	if err != nil {
		return user.User{}, nil, errors.Wrap(err, "querying users")
	}
	return me, all, nil
}

// Suggestions returns the actor's top study partners.
func (svc *Service) Suggestions(ctx context.Context, actor core.Actor) ([]Match, error) {
	me, all, err := svc.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return Suggest(me, all), nil
}

// Browse returns the filtered discovery list for the actor.
func (svc *Service) Browse(ctx context.Context, actor core.Actor, filter Filter) ([]Match, error) {
	switch filter.Mode {
	case "", ModeAll, user.ModeInPerson, user.ModeVideo:
	default:
		return nil, core.NewFieldError("mode", fmt.Sprintf("unknown mode %q", filter.Mode))
	}
	if filter.MaxRate != nil && *filter.MaxRate < 0 {
		return nil, core.NewFieldError("max_rate", "must be greater or equal to 0")
	}

	me, all, err := svc.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return Browse(me, all, filter), nil
}

// AnnounceMatches tells the user how many study partners are suggested for them, if any.
func (svc *Service) AnnounceMatches(ctx context.Context, userID string) (int, error) {
	me, all, err := svc.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	matches := Suggest(me, all)
	if len(matches) == 0 {
		return 0, nil
	}

	_, err = svc.notifs.Notify(ctx, notification.NewNotification{
		UserID:  userID,
		Type:    notification.TypeMatchFound,
		Title:   "New Matches Found",
		Message: fmt.Sprintf("We found %d study partners for you", len(matches)),
		Link:    "/dashboard",
	})
	return len(matches), errors.Wrap(err, "notifying matches")
}

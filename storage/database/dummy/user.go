package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core/user"
)

type userRepository struct {
	db *table[user.User]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.rows {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	if !repo.db.insert(usr.ID, usr) {
		return user.User{}, errors.Errorf("duplicate user id %q", usr.ID)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	if usr, ok := repo.db.get(id); ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	users := repo.db.filter(func(u user.User) bool { return u.Email == email })
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (repo *userRepository) QueryAllUsers(context.Context) ([]user.User, error) {
	return repo.db.filter(nil), nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	return repo.db.update(usr.ID, user.ErrNotFound, func(u *user.User) error {
		// derived fields are owned by AddUserPoints & SetUserRating
		usr.Points, usr.Rating, usr.TotalReviews = u.Points, u.Rating, u.TotalReviews
		usr.Email, usr.JoinedAt = u.Email, u.JoinedAt
		*u = usr
		return nil
	})
}

func (repo *userRepository) AddUserPoints(_ context.Context, id string, delta int) (user.User, error) {
	return repo.db.update(id, user.ErrNotFound, func(u *user.User) error {
		if u.Points+delta < 0 {
			return user.ErrInsufficientPoints
		}
		u.Points += delta
		return nil
	})
}

func (repo *userRepository) SetUserRating(_ context.Context, id string, rating float64, totalReviews int) (user.User, error) {
	return repo.db.update(id, user.ErrNotFound, func(u *user.User) error {
		u.Rating, u.TotalReviews = rating, totalReviews
		return nil
	})
}

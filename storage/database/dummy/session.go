package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core/session"
)

type sessionRepository struct {
	db *table[session.Session]
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if !repo.db.insert(sess.ID, sess) {
		return session.Session{}, errors.Errorf("duplicate session id %q", sess.ID)
	}
	return sess, nil
}

func (repo *sessionRepository) GetSessionByID(_ context.Context, id string) (session.Session, error) {
	if sess, ok := repo.db.get(id); ok {
		return sess, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) QuerySessionsByUser(_ context.Context, userID string) ([]session.Session, error) {
	return repo.db.filter(func(s session.Session) bool { return s.IsParticipant(userID) }), nil
}

func (repo *sessionRepository) QuerySessionsByStatus(_ context.Context, status string) ([]session.Session, error) {
	return repo.db.filter(func(s session.Session) bool { return s.Status == status }), nil
}

func (repo *sessionRepository) UpdateSession(_ context.Context, sess session.Session, fromStatus string) (session.Session, error) {
	return repo.db.update(sess.ID, session.ErrNotFound, func(s *session.Session) error {
		if s.Status != fromStatus {
			return session.ErrConflict
		}
		*s = sess
		return nil
	})
}

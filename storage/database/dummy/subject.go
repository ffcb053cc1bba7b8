package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core/subject"
)

type subjectRepository struct {
	db *table[subject.Subject]
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) CreateSubject(_ context.Context, subj subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if !repo.db.insert(subj.ID, subj) {
		return subject.Subject{}, errors.Errorf("duplicate subject id %q", subj.ID)
	}
	return subj, nil
}

func (repo *subjectRepository) GetSubjectByID(_ context.Context, id string) (subject.Subject, error) {
	if subj, ok := repo.db.get(id); ok {
		return subj, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) QueryAllSubjects(context.Context) ([]subject.Subject, error) {
	return repo.db.filter(nil), nil
}

package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studymatch/core/subject"
)

type subjectRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"name"`
	Category   string      `db:"category"`
	Department null.String `db:"department"`
}

func (row subjectRow) toSubject() subject.Subject {
	return subject.Subject{ID: row.ID, Name: row.Name, Category: row.Category, Department: row.Department.String}
}

type subjectRepository struct {
	repo
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{repo{db: db}}
}

func (r *subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO subjects (id, name, category, department) VALUES (:id, :name, :category, :department)`,
		subjectRow{
			ID:         subj.ID,
			Name:       subj.Name,
			Category:   subj.Category,
			Department: null.NewString(subj.Department, subj.Department != ""),
		})
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (r *subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	var row subjectRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, name, category, department FROM subjects WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "selecting subject")
	}
	return row.toSubject(), nil
}

func (r *subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	var rows []subjectRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, category, department FROM subjects ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toSubject())
	}
	return subjects, nil
}

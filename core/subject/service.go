package subject

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
)

var ErrNotFound = core.NewNotFoundError("subject")

type (
	Repository interface {
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
	}

	// Service exposes the subject catalog. The catalog is read-only to the rest of the core.
	Service struct {
		repo     Repository
		validate *core.Validator
	}
)

func NewService(repo Repository, validate *core.Validator) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	ns.clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Subject{}, err
	}
	return svc.repo.CreateSubject(ctx, Subject{
		ID:         uuid.New().String(),
		Name:       ns.Name,
		Category:   ns.Category,
		Department: ns.Department,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

// CheckExist returns a ValidationError on `field` for the first unknown subject id.
func (svc *Service) CheckExist(ctx context.Context, field string, ids ...string) error {
	for _, id := range ids {
		if _, err := svc.repo.GetSubjectByID(ctx, id); err != nil {
			if errors.Cause(err) == ErrNotFound {
				return core.NewFieldError(field, "unknown subject "+id)
			}
			return errors.Wrap(err, "finding subject by ID")
		}
	}
	return nil
}

// Seed adds the catalog subjects missing by name and reports how many were created.
func (svc *Service) Seed(ctx context.Context, catalog []NewSubject) (int, error) {
	existing, err := svc.repo.QueryAllSubjects(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying subjects")
	}
	names := make(map[string]bool, len(existing))
	for _, s := range existing {
		names[s.Name] = true
	}

	var n int
	for _, ns := range catalog {
		if names[core.CleanString(ns.Name)] {
			continue
		}
		if _, err := svc.Create(ctx, ns); err != nil {
			return n, errors.Wrap(err, "creating subject "+ns.Name)
		}
		n++
	}
	return n, nil
}

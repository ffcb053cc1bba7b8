package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core/review"
)

type reviewRepository struct {
	db *table[review.Review]
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db.review}
}

func (repo *reviewRepository) CreateReview(_ context.Context, rev review.Review) (review.Review, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if !repo.db.insert(rev.ID, rev) {
		return review.Review{}, errors.Errorf("duplicate review id %q", rev.ID)
	}
	return rev, nil
}

func (repo *reviewRepository) QueryReviewsByReviewee(_ context.Context, revieweeID string) ([]review.Review, error) {
	return repo.db.filter(func(r review.Review) bool { return r.RevieweeID == revieweeID }), nil
}

package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studymatch/core/review"
)

type reviewRow struct {
	ID         string      `db:"id"`
	SessionID  string      `db:"session_id"`
	ReviewerID string      `db:"reviewer_id"`
	RevieweeID string      `db:"reviewee_id"`
	Rating     int         `db:"rating"`
	Comment    null.String `db:"comment"`
	CreatedAt  time.Time   `db:"created_at"`
}

type reviewRepository struct {
	repo
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *sqlx.DB) review.Repository {
	return &reviewRepository{repo{db: db}}
}

func (r *reviewRepository) CreateReview(ctx context.Context, rev review.Review) (review.Review, error) {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO reviews (id, session_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES (:id, :session_id, :reviewer_id, :reviewee_id, :rating, :comment, :created_at)`,
		reviewRow{
			ID:         rev.ID,
			SessionID:  rev.SessionID,
			ReviewerID: rev.ReviewerID,
			RevieweeID: rev.RevieweeID,
			Rating:     rev.Rating,
			Comment:    optString(rev.Comment),
			CreatedAt:  rev.CreatedAt,
		})
	if err != nil {
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	return rev, nil
}

func (r *reviewRepository) QueryReviewsByReviewee(ctx context.Context, revieweeID string) ([]review.Review, error) {
	var rows []reviewRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, reviewer_id, reviewee_id, rating, comment, created_at
		FROM reviews WHERE reviewee_id = $1
		ORDER BY created_at, id`, revieweeID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting reviews")
	}
	reviews := make([]review.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, review.Review{
			ID:         row.ID,
			SessionID:  row.SessionID,
			ReviewerID: row.ReviewerID,
			RevieweeID: row.RevieweeID,
			Rating:     row.Rating,
			Comment:    row.Comment.String,
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	return reviews, nil
}

package review

import (
	"time"

	"github.com/trezcool/studymatch/core"
)

// Review is a one-way 1-5 rating left by a reviewer for a reviewee about a completed session.
type Review struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewReview contains information needed to record a Review. The reviewer is the acting user.
type NewReview struct {
	SessionID  string `json:"session_id" validate:"required"`
	RevieweeID string `json:"reviewee_id" validate:"required"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

func (nr *NewReview) clean() {
	nr.SessionID = core.CleanString(nr.SessionID)
	nr.RevieweeID = core.CleanString(nr.RevieweeID)
	nr.Comment = core.CleanString(nr.Comment)
}

// Mean returns the arithmetic mean of the review ratings and their count.
func Mean(reviews []Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}

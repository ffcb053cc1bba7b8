package review_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/points"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/session"
	testutil "github.com/trezcool/studymatch/tests"
)

func TestService_Record(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()

	tutor := testutil.CreateUser(t, s.UserRepo, "Tutor", "tutor@uni.edu")
	learner := testutil.CreateUser(t, s.UserRepo, "Learner", "learner@uni.edu")
	past := time.Now().Add(-time.Hour)
	completed := testutil.CreateSession(t, s.SessionRepo, tutor.ID, learner.ID, "s1", session.StatusCompleted, past)
	confirmed := testutil.CreateSession(t, s.SessionRepo, tutor.ID, learner.ID, "s1", session.StatusConfirmed, past)

	tests := []struct {
		name    string
		actor   string
		nr      review.NewReview
		wantErr bool
	}{
		{name: "rating too low", actor: learner.ID, nr: review.NewReview{SessionID: completed.ID, RevieweeID: tutor.ID, Rating: 0}, wantErr: true},
		{name: "rating too high", actor: learner.ID, nr: review.NewReview{SessionID: completed.ID, RevieweeID: tutor.ID, Rating: 6}, wantErr: true},
		{name: "unknown reviewer", actor: "nobody", nr: review.NewReview{SessionID: completed.ID, RevieweeID: tutor.ID, Rating: 5}, wantErr: true},
		{name: "unknown reviewee", actor: learner.ID, nr: review.NewReview{SessionID: completed.ID, RevieweeID: "nobody", Rating: 5}, wantErr: true},
		{name: "unknown session", actor: learner.ID, nr: review.NewReview{SessionID: "nope", RevieweeID: tutor.ID, Rating: 5}, wantErr: true},
		{name: "session not completed", actor: learner.ID, nr: review.NewReview{SessionID: confirmed.ID, RevieweeID: tutor.ID, Rating: 5}, wantErr: true},
		{name: "valid", actor: learner.ID, nr: review.NewReview{SessionID: completed.ID, RevieweeID: tutor.ID, Rating: 4, Comment: " great "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev, err := s.Reviews.Record(ctx, core.NewActor(tt.actor), tt.nr)
			if tt.wantErr {
				assert.True(t, core.IsValidationError(err), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, learner.ID, rev.ReviewerID)
			assert.Equal(t, "great", rev.Comment)

			reviewee, err := s.UserRepo.GetUserByID(ctx, tutor.ID)
			require.NoError(t, err)
			assert.Equal(t, 4.0, reviewee.Rating)
			assert.Equal(t, 1, reviewee.TotalReviews)

			reviewer, err := s.UserRepo.GetUserByID(ctx, learner.ID)
			require.NoError(t, err)
			assert.Equal(t, learner.Points+points.ReviewAward, reviewer.Points)

			assert.Equal(t, 1, testutil.CountNotifications(t, s.NotificationRepo, tutor.ID, notification.TypeNewReview))
			assert.Equal(t, 1, testutil.CountNotifications(t, s.NotificationRepo, learner.ID, notification.TypePointsEarned))
		})
	}
}

// Recording the same review twice is not deduplicated.
func TestService_Record_Duplicate(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()

	tutor := testutil.CreateUser(t, s.UserRepo, "Tutor", "tutor@uni.edu")
	learner := testutil.CreateUser(t, s.UserRepo, "Learner", "learner@uni.edu")
	sess := testutil.CreateSession(t, s.SessionRepo, tutor.ID, learner.ID, "s1", session.StatusCompleted, time.Now().Add(-time.Hour))
	nr := review.NewReview{SessionID: sess.ID, RevieweeID: tutor.ID, Rating: 5}

	first, err := s.Reviews.Record(ctx, core.NewActor(learner.ID), nr)
	require.NoError(t, err)
	second, err := s.Reviews.Record(ctx, core.NewActor(learner.ID), nr)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	reviews, err := s.Reviews.ListForUser(ctx, tutor.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	reviewee, err := s.UserRepo.GetUserByID(ctx, tutor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reviewee.TotalReviews-tutor.TotalReviews)
	assert.Equal(t, 5.0, reviewee.Rating)
}

// The rating always equals the mean of the reviews received, even under concurrent reviews.
func TestService_Record_NextReviewRepairsRating(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	tutor := testutil.CreateUser(t, s.UserRepo, "Tutor", "tutor@uni.edu")
	learner := testutil.CreateUser(t, s.UserRepo, "Learner", "learner@uni.edu")
	sess := testutil.CreateSession(t, s.SessionRepo, tutor.ID, learner.ID, "s1", session.StatusCompleted, time.Now().Add(-time.Hour))
	restore := testutil.FailRatings(s)

	_, err := s.Reviews.Record(ctx, core.NewActor(learner.ID), review.NewReview{SessionID: sess.ID, RevieweeID: tutor.ID, Rating: 4})
	require.Error(t, err)
	stale, err := s.UserRepo.GetUserByID(ctx, tutor.ID)
	require.NoError(t, err)
	assert.Zero(t, stale.TotalReviews)

	restore()
	_, err = s.Reviews.Record(ctx, core.NewActor(learner.ID), review.NewReview{SessionID: sess.ID, RevieweeID: tutor.ID, Rating: 2})
	require.NoError(t, err)

	reviewee, err := s.UserRepo.GetUserByID(ctx, tutor.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, reviewee.Rating)
	assert.Equal(t, 2, reviewee.TotalReviews)
}

func TestService_Record_RatingIsMean(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()

	tutor := testutil.CreateUser(t, s.UserRepo, "Tutor", "tutor@uni.edu")
	learner := testutil.CreateUser(t, s.UserRepo, "Learner", "learner@uni.edu")
	sess := testutil.CreateSession(t, s.SessionRepo, tutor.ID, learner.ID, "s1", session.StatusCompleted, time.Now().Add(-time.Hour))

	ratings := []int{5, 1, 4, 4, 3, 2, 5, 5}
	var wg sync.WaitGroup
	for _, r := range ratings {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, err := s.Reviews.Record(ctx, core.NewActor(learner.ID), review.NewReview{SessionID: sess.ID, RevieweeID: tutor.ID, Rating: rating})
			assert.NoError(t, err)
		}(r)
	}
	wg.Wait()

	reviews, err := s.ReviewRepo.QueryReviewsByReviewee(ctx, tutor.ID)
	require.NoError(t, err)
	mean, total := review.Mean(reviews)

	reviewee, err := s.UserRepo.GetUserByID(ctx, tutor.ID)
	require.NoError(t, err)
	assert.Equal(t, len(ratings), total)
	assert.Equal(t, total, reviewee.TotalReviews)
	assert.InDelta(t, mean, reviewee.Rating, 1e-9)
	assert.InDelta(t, 29.0/8, reviewee.Rating, 1e-9)

	// every review credited the reviewer exactly once
	reviewer, err := s.UserRepo.GetUserByID(ctx, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, learner.Points+len(ratings)*points.ReviewAward, reviewer.Points)
}

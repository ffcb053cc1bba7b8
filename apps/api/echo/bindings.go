package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/match"
	"github.com/trezcool/studymatch/core/points"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/user"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}

	// SessionReviewRequest is the body of a review on the session of the URL.
	SessionReviewRequest struct {
		RevieweeID string `json:"reviewee_id"`
		Rating     int    `json:"rating"`
		Comment    string `json:"comment"`
	}

	RedeemResponse struct {
		Reward points.Reward `json:"reward"`
		Points int           `json:"points"`
	}

	// ProfileResponse is a public profile with the reviews received.
	ProfileResponse struct {
		user.User
		Reviews []review.Review `json:"reviews"`
	}
)

// bindFilter reads the discovery filter from the query string:
// `search`, `department`, `subject`, `mode` and `max_rate`.
func bindFilter(ctx echo.Context) (match.Filter, error) {
	filter := match.Filter{
		Search:     strings.TrimSpace(ctx.QueryParam("search")),
		Department: strings.TrimSpace(ctx.QueryParam("department")),
		SubjectID:  strings.TrimSpace(ctx.QueryParam("subject")),
		Mode:       strings.TrimSpace(ctx.QueryParam("mode")),
	}
	if raw := strings.TrimSpace(ctx.QueryParam("max_rate")); raw != "" {
		maxRate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return match.Filter{}, core.NewFieldError("max_rate", "must be a number")
		}
		filter.MaxRate = &maxRate
	}
	return filter, nil
}

package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/session"
)

type sessionApi struct {
	svc     *session.Service
	reviews *review.Service
	metrics *metrics
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *session.Service, reviews *review.Service, m *metrics) {
	api := sessionApi{svc: svc, reviews: reviews, metrics: m}

	sg := g.Group("/sessions", jwt)
	sg.POST("", api.request)
	sg.GET("", api.query)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/accept", api.accept)
	dg.POST("/cancel", api.cancel)
	dg.POST("/complete", api.complete)
	dg.POST("/reviews", api.review)
}

// Handlers

func (api *sessionApi) request(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	var data session.NewSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}

	sess, err := api.svc.Request(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "requesting session")
	}
	api.metrics.sessions.WithLabelValues(sess.Status).Inc()
	return ctx.JSON(http.StatusCreated, sess)
}

// query lists the sessions of the authenticated user; `tab` is one of all, upcoming, pending or history.
func (api *sessionApi) query(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	sessions, err := api.svc.ListForUser(ctx.Request().Context(), actor, ctx.QueryParam("tab"))
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.GetByID(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding session by ID")
	}
	return ctx.JSON(http.StatusOK, sess)
}

type transitionFunc func(ctx context.Context, actor core.Actor, id string) (session.Session, error)

func (api *sessionApi) transition(ctx echo.Context, fn transitionFunc) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	sess, err := fn(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "moving session to a new status")
	}
	api.metrics.sessions.WithLabelValues(sess.Status).Inc()
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) accept(ctx echo.Context) error {
	return api.transition(ctx, api.svc.Accept)
}

func (api *sessionApi) cancel(ctx echo.Context) error {
	return api.transition(ctx, api.svc.DeclineOrCancel)
}

func (api *sessionApi) complete(ctx echo.Context) error {
	return api.transition(ctx, api.svc.Complete)
}

func (api *sessionApi) review(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	var data SessionReviewRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionReviewRequest")
	}

	rev, err := api.reviews.Record(ctx.Request().Context(), actor, review.NewReview{
		SessionID:  ctx.Param("id"),
		RevieweeID: data.RevieweeID,
		Rating:     data.Rating,
		Comment:    data.Comment,
	})
	if err != nil {
		return errors.Wrap(err, "recording review")
	}
	return ctx.JSON(http.StatusCreated, rev)
}

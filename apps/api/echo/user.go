package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/match"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/user"
)

type userApi struct {
	conf    *core.Config
	logger  core.Logger
	svc     *user.Service
	reviews *review.Service
	matches *match.Service
	metrics *metrics
}

func registerUserAPI(g *echo.Group, jwt, limit echo.MiddlewareFunc, deps ServerDeps, m *metrics) {
	api := userApi{
		conf:    deps.Conf,
		logger:  deps.Logger,
		svc:     deps.Users,
		reviews: deps.Reviews,
		matches: deps.Matches,
		metrics: m,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register, limit)
	ug.POST("/login", api.login, limit)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.PATCH("/me", api.updateMe)
	ag.GET("/:id", api.retrieve)
	ag.GET("/:id/reviews", api.queryReviews)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.svc.Register(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	api.metrics.usersRegistered.Inc()

	if _, err = api.matches.AnnounceMatches(reqCtx, usr.ID); err != nil {
		api.logger.Error("announcing matches", err, usr)
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := ctx.Validate(&data); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), api.conf, data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), actor.UserID)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateMe(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	var data user.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}

	usr, err := api.svc.UpdateProfile(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	usr, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	reviews, err := api.reviews.ListForUser(reqCtx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	if reviews == nil {
		reviews = []review.Review{}
	}
	return ctx.JSON(http.StatusOK, ProfileResponse{User: usr, Reviews: reviews})
}

func (api *userApi) queryReviews(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	if _, err := api.svc.GetByID(reqCtx, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	reviews, err := api.reviews.ListForUser(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	if reviews == nil {
		reviews = []review.Review{}
	}
	return ctx.JSON(http.StatusOK, reviews)
}

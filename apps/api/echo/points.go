package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core/points"
)

type pointsApi struct {
	ledger  *points.Ledger
	metrics *metrics
}

func registerPointsAPI(g *echo.Group, jwt echo.MiddlewareFunc, ledger *points.Ledger, m *metrics) {
	api := pointsApi{ledger: ledger, metrics: m}

	g.GET("/points", api.balance, jwt)

	rg := g.Group("/rewards", jwt)
	rg.GET("", api.rewards)
	rg.POST("/:id/redeem", api.redeem)
}

func (api *pointsApi) balance(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	bal, err := api.ledger.Balance(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "getting points balance")
	}
	return ctx.JSON(http.StatusOK, bal)
}

// rewards lists the reward catalog, optionally restricted to `category`.
func (api *pointsApi) rewards(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, points.Rewards(ctx.QueryParam("category")))
}

func (api *pointsApi) redeem(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	usr, reward, err := api.ledger.Redeem(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "redeeming reward")
	}
	api.metrics.rewardsRedeemed.WithLabelValues(reward.Category).Inc()
	return ctx.JSON(http.StatusOK, RedeemResponse{Reward: reward, Points: usr.Points})
}

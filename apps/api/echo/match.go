package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core/match"
)

type matchApi struct {
	svc *match.Service
}

func registerMatchAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *match.Service) {
	api := matchApi{svc: svc}

	g.GET("/matches", api.suggestions, jwt)
	g.GET("/discover", api.discover, jwt)
}

// suggestions returns the ten best study partners for the authenticated user.
func (api *matchApi) suggestions(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	matches, err := api.svc.Suggestions(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "suggesting matches")
	}
	return ctx.JSON(http.StatusOK, matches)
}

func (api *matchApi) discover(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}
	matches, err := api.svc.Browse(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "browsing users")
	}
	return ctx.JSON(http.StatusOK, matches)
}

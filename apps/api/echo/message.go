package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core/message"
)

type messageApi struct {
	svc     *message.Service
	metrics *metrics
}

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *message.Service, m *metrics) {
	api := messageApi{svc: svc, metrics: m}

	mg := g.Group("/messages", jwt)
	mg.GET("", api.conversations)
	mg.POST("", api.send)
	mg.GET("/:userId", api.conversation)
	mg.POST("/:userId/read", api.markRead)
}

func (api *messageApi) send(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	var data message.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}

	msg, err := api.svc.Send(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	api.metrics.messagesSent.Inc()
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) conversations(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	convs, err := api.svc.ListForUser(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing conversations")
	}
	if convs == nil {
		convs = []message.Conversation{}
	}
	return ctx.JSON(http.StatusOK, convs)
}

func (api *messageApi) conversation(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	msgs, err := api.svc.Conversation(ctx.Request().Context(), actor, ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "querying conversation")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) markRead(ctx echo.Context) error {
	actor, err := getActor(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.MarkConversationRead(ctx.Request().Context(), actor, ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "marking conversation read")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

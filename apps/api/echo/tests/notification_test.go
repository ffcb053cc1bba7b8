package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/studymatch/apps/api/echo"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/tests"
)

func Test_notificationApi(t *testing.T) {
	svcs, app := setup(t)
	ada := testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test")
	bob := testutil.CreateUser(t, svcs.UserRepo, "Bob", "bob@uni.test")
	adaTok := getToken(t, svcs, ada)

	notify := func(userID, typ string) notification.Notification {
		notif, err := svcs.Notifications.Notify(context.Background(), notification.NewNotification{
			UserID: userID, Type: typ, Title: "Title", Message: "Message",
		})
		require.NoError(t, err)
		return notif
	}
	first := notify(ada.ID, notification.TypeNewReview)
	notify(ada.ID, notification.TypeMatchFound)
	bobs := notify(bob.ID, notification.TypeNewMessage)

	unread := func(t *testing.T) int {
		rec := do(app, http.MethodGet, "/v1/notifications/unread-count", adaTok)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp CountResponse
		decode(t, rec, &resp)
		return resp.Count
	}

	rec := do(app, http.MethodGet, "/v1/notifications", adaTok)
	require.Equal(t, http.StatusOK, rec.Code)
	var notifs []notification.Notification
	decode(t, rec, &notifs)
	assert.Len(t, notifs, 2)
	assert.Equal(t, 2, unread(t))

	runHTTPTests(t, app, []httpTest{
		{name: "not mine", method: http.MethodPost, path: "/v1/notifications/" + bobs.ID + "/read", token: adaTok, wantCode: http.StatusNotFound},
		{name: "unknown", method: http.MethodPost, path: "/v1/notifications/nope/read", token: adaTok, wantCode: http.StatusNotFound},
		{name: "mark read", method: http.MethodPost, path: "/v1/notifications/" + first.ID + "/read", token: adaTok, wantCode: http.StatusOK},
		{name: "mark read twice", method: http.MethodPost, path: "/v1/notifications/" + first.ID + "/read", token: adaTok, wantCode: http.StatusOK},
	})
	assert.Equal(t, 1, unread(t))

	rec = do(app, http.MethodPost, "/v1/notifications/read-all", adaTok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
	assert.Equal(t, 0, unread(t))
}

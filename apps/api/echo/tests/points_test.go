package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/studymatch/apps/api/echo"
	"github.com/trezcool/studymatch/core/points"
	"github.com/trezcool/studymatch/tests"
)

func Test_pointsApi(t *testing.T) {
	svcs, app := setup(t)
	usr := testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test", testutil.WithPoints(120))
	token := getToken(t, svcs, usr)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/points", wantCode: http.StatusUnauthorized},
		{name: "balance", path: "/v1/points", token: token, wantCode: http.StatusOK, wantData: []byte(`{"points":120,"to_next_milestone":880}`)},
		{name: "unknown reward", method: http.MethodPost, path: "/v1/rewards/r99/redeem", token: token, wantCode: http.StatusNotFound},
		{
			name: "insufficient points", method: http.MethodPost, path: "/v1/rewards/r7/redeem", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"points":"200 points are required to redeem 10% Book Discount"}`),
		},
	})

	t.Run("rewards", func(t *testing.T) {
		rec := do(app, http.MethodGet, "/v1/rewards", token)
		require.Equal(t, http.StatusOK, rec.Code)
		var rewards []points.Reward
		decode(t, rec, &rewards)
		assert.Len(t, rewards, 13)

		rec = do(app, http.MethodGet, "/v1/rewards?category="+points.CategoryLibrary, token)
		decode(t, rec, &rewards)
		assert.Len(t, rewards, 3)
	})

	t.Run("redeem", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/v1/rewards/r1/redeem", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp RedeemResponse
		decode(t, rec, &resp)
		assert.Equal(t, "r1", resp.Reward.ID)
		assert.Equal(t, 70, resp.Points)

		got, err := svcs.Users.GetByID(ctxBG, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, 70, got.Points)
	})
}
